package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"jingjuan_backend/internals/cache"
	"jingjuan_backend/internals/configs"
	database "jingjuan_backend/internals/databases"
	scriptureService "jingjuan_backend/internals/features/scripture/service"
	"jingjuan_backend/internals/features/volumes/catalog"
	"jingjuan_backend/internals/features/volumes/model"
	"jingjuan_backend/internals/features/volumes/notify"
	"jingjuan_backend/internals/features/volumes/repository"
	"jingjuan_backend/internals/features/volumes/scheduler"
	volumeService "jingjuan_backend/internals/features/volumes/service"
	helper "jingjuan_backend/internals/helpers"
	"jingjuan_backend/internals/helpers/dbtime"
	middlewares "jingjuan_backend/internals/middlewares"
	routes "jingjuan_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.FiberErrorHandler,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          configs.TrustedProxies, // IP klien (rate limit klaim) hanya dari proxy ini
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// guard di atas timeout upstream kitab (20s)
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	loc := dbtime.AppLocation(configs.AppTimezone)
	def := catalog.DefinitionFromEnv()

	// 🔌 store klaim: Postgres langsung > Supabase REST > tidak ada
	store, probe := buildClaimStore()

	// 💾 cache lokal (SQLite), hanya fallback
	var snapshots volumeService.SnapshotStore
	localDB, err := database.OpenLocalCache(configs.LocalCachePath)
	if err != nil {
		log.Printf("⚠️ cache lokal tidak bisa dibuka (%s): %v", configs.LocalCachePath, err)
	} else {
		snapRepo := repository.NewSnapshotRepository(localDB, configs.LocalCacheKey)
		snapshots = snapRepo
		log.Printf("✅ cache lokal %s (key=%s)", configs.LocalCachePath, snapRepo.Key())
	}

	var notifier volumeService.Notifier
	if configs.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(configs.NotifyWebhookURL, configs.NotifyWebhookSecret, loc)
	}

	volumes := volumeService.NewVolumeService(volumeService.Options{
		Store:         store,
		Snapshots:     snapshots,
		Notifier:      notifier,
		ClaimsCache:   cache.New[string, []model.ClaimModel](time.Minute, 16, nil),
		Catalog:       def,
		Location:      loc,
		RemoteTimeout: configs.RemoteTimeout,
	})

	var fetcher scriptureService.Fetcher
	if configs.ScriptureSourceURL != "" {
		fetcher = scriptureService.NewHTTPFetcher(configs.ScriptureSourceURL, configs.UpstreamTimeout)
	}
	scripture := scriptureService.NewScriptureService(scriptureService.Options{
		Fetcher:      fetcher,
		Catalog:      def,
		Cache:        cache.New[int, string](time.Hour, 200, nil),
		FetchTimeout: configs.UpstreamTimeout,
	})

	// ⏱ scheduler snapshot (sekalian jaga remote tetap hangat)
	cron, err := scheduler.StartSnapshotScheduler(volumes, configs.SnapshotCron, 2*configs.RemoteTimeout)
	if err != nil {
		log.Printf("⚠️ SNAPSHOT_CRON %q tidak valid, scheduler mati: %v", configs.SnapshotCron, err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, routes.Deps{
		Volumes:    volumes,
		Scripture:  scripture,
		AdminCode:  configs.AdminAccessCode,
		PDFFont:    configs.PDFFontPath,
		StoreProbe: probe,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop cron, tunggu notifikasi, tutup DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if cron != nil {
		<-cron.Stop().Done()
	}
	volumes.WaitNotifications()
	if localDB != nil {
		_ = localDB.Close()
	}
	database.Close()
}

// buildClaimStore memilih store klaim dari env. Interface dikembalikan nil (bukan typed nil)
// kalau tidak ada yang terkonfigurasi.
func buildClaimStore() (volumeService.ClaimStore, func() error) {
	if configs.HasPostgres() {
		database.ConnectDB()
		database.TunePool()
		database.WarmUpQueries()
		if database.DB != nil {
			repo := repository.NewClaimRepository(database.DB)
			if err := repo.Migrate(); err != nil {
				log.Printf("⚠️ AutoMigrate volume_claims gagal: %v", err)
			}
			log.Println("✅ store klaim: postgres")
			return repo, func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return repo.Ping(ctx)
			}
		}
	}

	if configs.SupabaseURL != "" && configs.SupabaseKey != "" {
		repo := repository.NewSupabaseClaimRepository(configs.SupabaseURL, configs.SupabaseKey, configs.SupabaseTable, configs.RemoteTimeout)
		log.Println("✅ store klaim: supabase rest")
		probe := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := repo.ExistsByVolumeID(ctx, "__health__")
			return err
		}
		return repo, probe
	}

	log.Println("⚠️ store klaim tidak dikonfigurasi: daftar dari cache lokal, klaim ditolak.")
	return nil, nil
}
