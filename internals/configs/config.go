package configs

import (
	"context"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// Fallback kode admin kalau ADMIN_ACCESS_CODE kosong (jangan dipakai di production)
const DefaultAdminAccessCode = "admin"

// Default: hanya reverse proxy di host yang sama boleh set X-Forwarded-For
const DefaultTrustedProxies = "127.0.0.1,::1"

var (
	AdminAccessCode     string
	NotifyWebhookURL    string
	NotifyWebhookSecret string
	SupabaseURL         string
	SupabaseKey         string
	SupabaseTable       string
	LocalCachePath      string
	LocalCacheKey       string
	ScriptureSourceURL  string
	PDFFontPath         string
	SnapshotCron        string
	AppTimezone         string
	RemoteTimeout       time.Duration
	UpstreamTimeout     time.Duration
	TrustedProxies      []string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	AdminAccessCode = GetEnv("ADMIN_ACCESS_CODE")
	NotifyWebhookURL = GetEnv("NOTIFY_WEBHOOK_URL")
	NotifyWebhookSecret = GetEnv("NOTIFY_WEBHOOK_SECRET")
	SupabaseURL = strings.TrimRight(GetEnv("SUPABASE_URL"), "/")
	SupabaseKey = GetEnv("SUPABASE_KEY")
	SupabaseTable = GetEnv("SUPABASE_TABLE", "volume_claims")
	LocalCachePath = GetEnv("LOCAL_CACHE_PATH", "data/local_cache.db")
	LocalCacheKey = GetEnv("LOCAL_CACHE_KEY", "volumes_v3")
	ScriptureSourceURL = GetEnv("SCRIPTURE_SOURCE_URL")
	PDFFontPath = GetEnv("PDF_FONT_PATH")
	SnapshotCron = GetEnv("SNAPSHOT_CRON", "*/10 * * * *")
	AppTimezone = GetEnv("APP_TIMEZONE", "Asia/Shanghai")
	RemoteTimeout = time.Duration(GetEnvInt("REMOTE_TIMEOUT_SECONDS", 10)) * time.Second
	UpstreamTimeout = time.Duration(GetEnvInt("UPSTREAM_TIMEOUT_SECONDS", 20)) * time.Second
	TrustedProxies = ParseTrustedProxies(GetEnv("TRUSTED_PROXIES", DefaultTrustedProxies))

	if AdminAccessCode == "" {
		AdminAccessCode = DefaultAdminAccessCode
		log.Println("❌ [WARN] ADMIN_ACCESS_CODE belum diset! Memakai kode default, WAJIB diganti di production.")
	} else {
		log.Println("✅ ADMIN_ACCESS_CODE berhasil dimuat.")
	}

	if NotifyWebhookURL == "" {
		log.Println("⚠️ NOTIFY_WEBHOOK_URL kosong, notifikasi klaim dinonaktifkan.")
	}

	if ScriptureSourceURL == "" {
		log.Println("⚠️ SCRIPTURE_SOURCE_URL kosong, endpoint /api/scripture akan gagal.")
	}

	if !HasPostgres() && SupabaseURL == "" {
		log.Println("⚠️ DB_HOST dan SUPABASE_URL kosong, klaim hanya dibaca dari cache lokal.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || value == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		log.Printf("[WARN] %s=%q tidak valid, pakai default %d", key, v, def)
		return def
	}
	return i
}

// ParseTrustedProxies memecah daftar IP/CIDR dipisah koma. Entri yang tidak valid dibuang.
func ParseTrustedProxies(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if _, ipnet, err := net.ParseCIDR(p); err == nil {
			if ones, _ := ipnet.Mask.Size(); ones == 0 {
				log.Printf("⚠️ TRUSTED_PROXIES berisi %s, X-Forwarded-For dari siapa saja akan dipercaya", p)
			}
			out = append(out, p)
			continue
		}
		if net.ParseIP(p) != nil {
			out = append(out, p)
			continue
		}
		log.Printf("[WARN] TRUSTED_PROXIES: %q bukan IP/CIDR, diabaikan", p)
	}
	return out
}

// HasPostgres: true kalau kredensial Postgres lengkap
func HasPostgres() bool {
	return GetEnv("DB_HOST") != "" && GetEnv("DB_USER") != "" && GetEnv("DB_NAME") != ""
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	if err != nil {
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	} else if elapsed > l.SlowThreshold {
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	} else if l.LogLevel >= gormLogger.Info {
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
