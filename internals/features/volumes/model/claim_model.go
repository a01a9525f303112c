package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusUnclaimed = "unclaimed"
	StatusClaimed   = "claimed"
	StatusCompleted = "completed"
)

// ClaimModel: satu klaim per volume. Unique index di claim_volume_id adalah
// penjaga utama (pre-check di service cuma optimasi).
type ClaimModel struct {
	ClaimID                   uuid.UUID      `gorm:"column:claim_id;primaryKey;type:uuid" json:"claim_id"`
	ClaimVolumeID             string         `gorm:"column:claim_volume_id;type:varchar(64);not null;uniqueIndex:uq_volume_claims_volume_id" json:"volume_id"`
	ClaimVolumeTitle          string         `gorm:"column:claim_volume_title;type:varchar(255)" json:"volume_title"`
	ClaimerName               string         `gorm:"column:claimer_name;type:varchar(100);not null" json:"name"`
	ClaimerPhone              string         `gorm:"column:claimer_phone;type:varchar(20);not null" json:"phone"`
	ClaimPlannedDays          int            `gorm:"column:claim_planned_days;not null;default:7" json:"planned_days"`
	ClaimReadingURL           string         `gorm:"column:claim_reading_url;type:text" json:"reading_url"`
	ClaimRemarks              *string        `gorm:"column:claim_remarks;type:text" json:"remarks,omitempty"`
	ClaimStatus               string         `gorm:"column:claim_status;type:varchar(20);not null;default:'claimed'" json:"status"`
	ClaimClaimedAt            time.Time      `gorm:"column:claim_claimed_at;not null" json:"claimed_at"`
	ClaimExpectedCompletionAt time.Time      `gorm:"column:claim_expected_completion_at;not null" json:"expected_completion_date"`
	ClaimMeta                 datatypes.JSON `gorm:"column:claim_meta" json:"meta,omitempty"`
}

func (ClaimModel) TableName() string {
	return "volume_claims"
}
