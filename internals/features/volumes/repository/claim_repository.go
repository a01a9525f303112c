package repository

import (
	"context"
	"errors"
	"fmt"

	"jingjuan_backend/internals/features/volumes/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimRepository: store klaim utama di Postgres (GORM).
type ClaimRepository struct {
	DB *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{DB: db}
}

// Migrate membuat tabel + unique index claim_volume_id.
func (r *ClaimRepository) Migrate() error {
	return r.DB.AutoMigrate(&model.ClaimModel{})
}

func (r *ClaimRepository) Name() string { return "postgres" }

func (r *ClaimRepository) ListClaims(ctx context.Context) ([]model.ClaimModel, error) {
	var list []model.ClaimModel
	if err := r.DB.WithContext(ctx).
		Order("claim_claimed_at ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return list, nil
}

func (r *ClaimRepository) ExistsByVolumeID(ctx context.Context, volumeID string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&model.ClaimModel{}).
		Where("claim_volume_id = ?", volumeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check claim: %w", err)
	}
	return count > 0, nil
}

// Create insert klaim baru. Unique violation → ErrDuplicateClaim.
func (r *ClaimRepository) Create(ctx context.Context, claim *model.ClaimModel) error {
	if claim.ClaimID == uuid.Nil {
		claim.ClaimID = uuid.New()
	}
	err := r.DB.WithContext(ctx).Create(claim).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrDuplicateClaim, claim.ClaimVolumeID)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("create claim timeout: %w", err)
	default:
		return fmt.Errorf("create claim: %w", err)
	}
}

func (r *ClaimRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
