package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"jingjuan_backend/internals/cache"
	"jingjuan_backend/internals/features/volumes/catalog"
	"jingjuan_backend/internals/features/volumes/dto"
	"jingjuan_backend/internals/features/volumes/model"
	"jingjuan_backend/internals/features/volumes/repository"
	"jingjuan_backend/internals/helpers/dbtime"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const (
	// ClaimsCacheKey: key cache respons GET /api/claims
	ClaimsCacheKey = "claims:all"

	SourceRemote  = "remote"
	SourceLocal   = "local"
	SourceCatalog = "catalog"

	defaultRemoteTimeout = 10 * time.Second
	defaultNotifyTimeout = 10 * time.Second
)

// ClaimStore: store klaim remote (sumber kebenaran).
type ClaimStore interface {
	Name() string
	ListClaims(ctx context.Context) ([]model.ClaimModel, error)
	ExistsByVolumeID(ctx context.Context, volumeID string) (bool, error)
	Create(ctx context.Context, claim *model.ClaimModel) error
}

// SnapshotStore: cache lokal reconciled view, hanya fallback.
type SnapshotStore interface {
	Load(ctx context.Context) ([]dto.VolumeView, error)
	Save(ctx context.Context, views []dto.VolumeView) error
}

// Notifier: kirim notifikasi klaim baru (best effort).
type Notifier interface {
	NotifyClaim(ctx context.Context, claim model.ClaimModel) error
}

type Options struct {
	Store         ClaimStore
	Snapshots     SnapshotStore
	Notifier      Notifier
	ClaimsCache   *cache.TTL[string, []model.ClaimModel]
	Catalog       catalog.Definition
	Location      *time.Location
	Clock         cache.Clock
	RemoteTimeout time.Duration
	NotifyTimeout time.Duration
}

type VolumeService struct {
	store         ClaimStore
	snapshots     SnapshotStore
	notifier      Notifier
	claimsCache   *cache.TTL[string, []model.ClaimModel]
	def           catalog.Definition
	loc           *time.Location
	now           cache.Clock
	remoteTimeout time.Duration
	notifyTimeout time.Duration
	validate      *validator.Validate
	notifyWG      sync.WaitGroup
}

func NewVolumeService(opts Options) *VolumeService {
	s := &VolumeService{
		store:         opts.Store,
		snapshots:     opts.Snapshots,
		notifier:      opts.Notifier,
		claimsCache:   opts.ClaimsCache,
		def:           opts.Catalog,
		loc:           opts.Location,
		now:           opts.Clock,
		remoteTimeout: opts.RemoteTimeout,
		notifyTimeout: opts.NotifyTimeout,
		validate:      newValidator(),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.remoteTimeout <= 0 {
		s.remoteTimeout = defaultRemoteTimeout
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	if s.claimsCache == nil {
		s.claimsCache = cache.New[string, []model.ClaimModel](time.Minute, 16, s.now)
	}
	return s
}

func (s *VolumeService) HasStore() bool { return s.store != nil }

func (s *VolumeService) Location() *time.Location { return s.loc }

func (s *VolumeService) Catalog() []catalog.Volume { return catalog.Generate(s.def) }

/* =========================================================
   LIST VOLUMES (reconciled view)
========================================================= */

type ListResult struct {
	Volumes  []dto.VolumeView `json:"volumes"`
	Source   string           `json:"source"`
	Modified bool             `json:"modified"`
}

// ListVolumes: katalog fresh + overlay klaim remote + status dihitung ulang.
// Remote gagal/timeout → overlay snapshot lokal → kalau tidak ada, katalog polos.
// Tidak pernah menulis ke store remote.
func (s *VolumeService) ListVolumes(ctx context.Context) ListResult {
	now := s.now()
	views := s.catalogViews()

	if s.store != nil {
		claims, err := s.fetchRemote(ctx)
		if err == nil {
			modified := overlayRemote(views, claims, now)
			if modified {
				s.saveSnapshot(ctx, views)
			}
			return ListResult{Volumes: views, Source: SourceRemote, Modified: modified}
		}
		log.Printf("[WARN] ambil klaim dari %s gagal, pakai cache lokal: %v", s.store.Name(), err)
	}

	return s.fallbackView(ctx, views, now)
}

func (s *VolumeService) catalogViews() []dto.VolumeView {
	vols := catalog.Generate(s.def)
	views := make([]dto.VolumeView, 0, len(vols))
	for _, v := range vols {
		views = append(views, dto.FromCatalog(v))
	}
	return views
}

func (s *VolumeService) fetchRemote(ctx context.Context) ([]model.ClaimModel, error) {
	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	return s.store.ListClaims(rctx)
}

// overlayRemote: mutasi views in-place, return true kalau ada status turunan
// yang beda dengan status tersimpan (mis. deadline sudah lewat).
func overlayRemote(views []dto.VolumeView, claims []model.ClaimModel, now time.Time) bool {
	byID := make(map[string]model.ClaimModel, len(claims))
	for _, c := range claims {
		key := catalog.NormalizeID(c.ClaimVolumeID)
		if _, dup := byID[key]; dup {
			continue // klaim pertama yang menang
		}
		byID[key] = c
	}

	modified := false
	for i := range views {
		c, ok := byID[catalog.NormalizeID(views[i].ID.String())]
		if ok {
			views[i].OverlayClaim(c)
		}
		views[i].Status = DeriveStatus(views[i], now)
		if ok && views[i].Status != storedStatus(c) {
			modified = true
		}
	}
	return modified
}

func (s *VolumeService) fallbackView(ctx context.Context, views []dto.VolumeView, now time.Time) ListResult {
	source := SourceCatalog
	if s.snapshots != nil {
		cached, err := s.snapshots.Load(ctx)
		switch {
		case err == nil:
			overlayCached(views, cached)
			source = SourceLocal
		case errors.Is(err, repository.ErrSnapshotNotFound):
			log.Println("[SNAPSHOT] cache lokal kosong, kirim katalog polos")
		default:
			log.Printf("[SNAPSHOT] cache lokal tidak terbaca: %v", err)
		}
	}

	for i := range views {
		views[i].Status = DeriveStatus(views[i], now)
	}
	return ListResult{Volumes: views, Source: source}
}

func overlayCached(views []dto.VolumeView, cached []dto.VolumeView) {
	byID := make(map[string]dto.VolumeView, len(cached))
	for _, c := range cached {
		if c.Status == model.StatusUnclaimed || c.Status == "" {
			continue
		}
		byID[catalog.NormalizeID(c.ID.String())] = c
	}
	for i := range views {
		if c, ok := byID[catalog.NormalizeID(views[i].ID.String())]; ok {
			views[i].OverlayCached(c)
		}
	}
}

func (s *VolumeService) saveSnapshot(ctx context.Context, views []dto.VolumeView) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, views); err != nil {
		log.Printf("[SNAPSHOT] gagal simpan cache lokal: %v", err)
	}
}

// RefreshSnapshot: dipanggil cron, simpan reconciled view terbaru ke cache lokal.
func (s *VolumeService) RefreshSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	res := s.ListVolumes(ctx)
	if res.Source != SourceRemote {
		return fmt.Errorf("%w: snapshot not refreshed (source=%s)", ErrUnavailable, res.Source)
	}
	if !res.Modified {
		// Modified sudah disimpan oleh ListVolumes
		if err := s.snapshots.Save(ctx, res.Volumes); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	return nil
}

/* =========================================================
   CLAIM VOLUME
========================================================= */

// ClientMeta: info request yang ikut disimpan di claim_meta.
type ClientMeta struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// ClaimVolume: satu klaim per volume. Pre-check hanya optimasi; unique constraint
// di store yang menentukan Conflict.
func (s *VolumeService) ClaimVolume(ctx context.Context, req dto.CreateClaimRequest, meta ClientMeta) (*model.ClaimModel, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, toValidationError(err)
	}

	vol, ok := catalog.Find(catalog.Generate(s.def), req.VolumeID.String())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.VolumeID)
	}

	if s.store == nil {
		return nil, fmt.Errorf("%w: no claim store configured", ErrUnavailable)
	}

	claimedAt := s.now().In(s.loc)
	readingURL := req.ReadingURL
	if readingURL == "" {
		readingURL = vol.ReadingURL
	}
	claim := model.ClaimModel{
		ClaimVolumeID:             vol.ID,
		ClaimVolumeTitle:          vol.Title,
		ClaimerName:               req.Name,
		ClaimerPhone:              req.Phone,
		ClaimPlannedDays:          req.PlannedDays,
		ClaimReadingURL:           readingURL,
		ClaimRemarks:              req.Remarks,
		ClaimStatus:               model.StatusClaimed,
		ClaimClaimedAt:            claimedAt,
		ClaimExpectedCompletionAt: dbtime.AddCalendarDays(claimedAt, req.PlannedDays, s.loc),
	}
	if raw, err := json.Marshal(meta); err == nil {
		claim.ClaimMeta = datatypes.JSON(raw)
	}

	exists, err := s.store.ExistsByVolumeID(ctx, vol.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrConflict, vol.ID)
	}

	if err := s.store.Create(ctx, &claim); err != nil {
		if errors.Is(err, repository.ErrDuplicateClaim) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, vol.ID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// listing berikutnya harus langsung lihat klaim ini
	s.claimsCache.Invalidate(ClaimsCacheKey)
	log.Printf("[CLAIM] volume=%s claimer=%s planned_days=%d", claim.ClaimVolumeID, claim.ClaimerName, claim.ClaimPlannedDays)

	s.rememberClaim(ctx, claim)
	s.dispatchNotification(claim)

	return &claim, nil
}

// rememberClaim: dual-write best effort ke cache lokal. Remote tetap sumber kebenaran.
func (s *VolumeService) rememberClaim(ctx context.Context, claim model.ClaimModel) {
	if s.snapshots == nil {
		return
	}
	views := s.catalogViews()
	if cached, err := s.snapshots.Load(ctx); err == nil {
		overlayCached(views, cached)
	}
	key := catalog.NormalizeID(claim.ClaimVolumeID)
	now := s.now()
	for i := range views {
		if catalog.NormalizeID(views[i].ID.String()) == key {
			views[i].OverlayClaim(claim)
		}
		views[i].Status = DeriveStatus(views[i], now)
	}
	s.saveSnapshot(ctx, views)
}

func (s *VolumeService) dispatchNotification(claim model.ClaimModel) {
	if s.notifier == nil {
		return
	}
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[NOTIFY] panic: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyClaim(ctx, claim); err != nil {
			log.Printf("[NOTIFY] gagal kirim notifikasi volume=%s: %v", claim.ClaimVolumeID, err)
		}
	}()
}

// WaitNotifications menunggu notifikasi yang sedang jalan (shutdown / test).
func (s *VolumeService) WaitNotifications() {
	s.notifyWG.Wait()
}

/* =========================================================
   LIST CLAIMS (read path + cache)
========================================================= */

type ClaimsResult struct {
	Claims []model.ClaimModel
	Cached bool
}

// ListClaims: record klaim mentah untuk GET /api/claims / admin.
// Cache ~1 menit; fresh=true bypass cache. Gagal → error + data basi (kalau ada).
func (s *VolumeService) ListClaims(ctx context.Context, fresh bool) (ClaimsResult, error) {
	if !fresh {
		if list, ok := s.claimsCache.Get(ClaimsCacheKey); ok {
			return ClaimsResult{Claims: list, Cached: true}, nil
		}
	}

	if s.store == nil {
		stale, _ := s.claimsCache.GetStale(ClaimsCacheKey)
		return ClaimsResult{Claims: stale, Cached: true}, fmt.Errorf("%w: no claim store configured", ErrUnavailable)
	}

	// klaim yang commit selama fetch akan bump generation; hasil lama tidak disimpan
	gen := s.claimsCache.Generation()
	list, err := s.fetchRemote(ctx)
	if err != nil {
		stale, _ := s.claimsCache.GetStale(ClaimsCacheKey)
		return ClaimsResult{Claims: stale, Cached: true}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.claimsCache.SetIfGeneration(ClaimsCacheKey, list, gen)
	return ClaimsResult{Claims: list}, nil
}
