package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	database "jingjuan_backend/internals/databases"
	"jingjuan_backend/internals/features/volumes/dto"
	"jingjuan_backend/internals/features/volumes/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func tempGormRepo(t *testing.T) *ClaimRepository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "claims.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := NewClaimRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repo
}

func sampleClaim(volumeID string) *model.ClaimModel {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.ClaimModel{
		ClaimVolumeID:             volumeID,
		ClaimerName:               "张三",
		ClaimerPhone:              "13800000000",
		ClaimPlannedDays:          7,
		ClaimStatus:               model.StatusClaimed,
		ClaimClaimedAt:            now,
		ClaimExpectedCompletionAt: now.AddDate(0, 0, 7),
	}
}

func TestClaimRepositoryCreateAndList(t *testing.T) {
	repo := tempGormRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleClaim("V1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, sampleClaim("V2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.ListClaims(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 claims, got %d", len(list))
	}

	ok, err := repo.ExistsByVolumeID(ctx, "V1")
	if err != nil || !ok {
		t.Fatalf("ExistsByVolumeID(V1) = %v, %v", ok, err)
	}
	ok, err = repo.ExistsByVolumeID(ctx, "V3")
	if err != nil || ok {
		t.Fatalf("ExistsByVolumeID(V3) = %v, %v", ok, err)
	}
}

func TestClaimRepositoryUniqueViolation(t *testing.T) {
	repo := tempGormRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleClaim("V1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.Create(ctx, sampleClaim("V1"))
	if !errors.Is(err, ErrDuplicateClaim) {
		t.Fatalf("second create: want ErrDuplicateClaim, got %v", err)
	}
}

func TestIsUniqueViolationFallback(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{errors.New(`ERROR: duplicate key value violates unique constraint "uq" (SQLSTATE 23505)`), true},
		{errors.New("UNIQUE constraint failed: volume_claims.claim_volume_id"), true},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Errorf("isUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestDecodeClaimsPayloadShapes(t *testing.T) {
	bare := `[{"claim_volume_id":"V1","claimer_name":"张三","claim_planned_days":7,
		"claim_claimed_at":"2024-03-01T09:00:00+08:00","claim_expected_completion_at":"2024-03-08T09:00:00+08:00"}]`
	wrapped := `{"data":[{"claim_volume_id":1,"claimer_name":"李四","claim_claimed_at":"2024-03-01 09:00:00"}]}`
	single := `{"claim_volume_id":"V5","claimer_name":"王五"}`

	got, err := DecodeClaimsPayload([]byte(bare))
	if err != nil || len(got) != 1 || got[0].ClaimVolumeID != "V1" {
		t.Fatalf("bare: %+v, %v", got, err)
	}
	if got[0].ClaimExpectedCompletionAt.Sub(got[0].ClaimClaimedAt) != 7*24*time.Hour {
		t.Errorf("bare: timestamps not parsed: %+v", got[0])
	}

	got, err = DecodeClaimsPayload([]byte(wrapped))
	if err != nil || len(got) != 1 || got[0].ClaimVolumeID != "1" || got[0].ClaimerName != "李四" {
		t.Fatalf("wrapped: %+v, %v", got, err)
	}
	if got[0].ClaimClaimedAt.IsZero() {
		t.Error("wrapped: timestamp without zone should parse")
	}

	got, err = DecodeClaimsPayload([]byte(single))
	if err != nil || len(got) != 1 || got[0].ClaimVolumeID != "V5" {
		t.Fatalf("single: %+v, %v", got, err)
	}

	if got, err := DecodeClaimsPayload([]byte("  ")); err != nil || len(got) != 0 {
		t.Fatalf("empty: %+v, %v", got, err)
	}
	if _, err := DecodeClaimsPayload([]byte("<html>bad gateway</html>")); err == nil {
		t.Fatal("html payload should fail")
	}
}

func TestSnapshotRepositoryRoundTrip(t *testing.T) {
	conn, err := database.OpenLocalCache(filepath.Join(t.TempDir(), "cache", "local.db"))
	if err != nil {
		t.Fatalf("open local cache: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	ctx := context.Background()

	repo := NewSnapshotRepository(conn, "volumes_v3")
	if _, err := repo.Load(ctx); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("empty load: want ErrSnapshotNotFound, got %v", err)
	}

	claimedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	views := []dto.VolumeView{
		{ID: "V1", Number: 1, Status: model.StatusClaimed, ClaimerName: "张三", ClaimedAt: &claimedAt},
		{ID: "V2", Number: 2, Status: model.StatusUnclaimed},
	}
	if err := repo.Save(ctx, views); err != nil {
		t.Fatalf("save: %v", err)
	}
	// overwrite
	views[1].Status = model.StatusClaimed
	if err := repo.Save(ctx, views); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ClaimerName != "张三" || got[1].Status != model.StatusClaimed {
		t.Fatalf("loaded = %+v", got)
	}

	// versi key lain = cache lain
	other := NewSnapshotRepository(conn, "volumes_v4")
	if _, err := other.Load(ctx); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("bumped key should not see old snapshot, got %v", err)
	}
}
