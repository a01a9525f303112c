package dto

import (
	"strings"
	"time"

	"jingjuan_backend/internals/features/volumes/model"
)

const DefaultPlannedDays = 7

// ====================
// Request DTO
// ====================

type CreateClaimRequest struct {
	VolumeID    FlexibleID `json:"volume_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=50"`
	Phone       string     `json:"phone" validate:"required,phone"`
	PlannedDays int        `json:"planned_days" validate:"gte=0,lte=365"`
	ReadingURL  string     `json:"reading_url" validate:"omitempty,max=500"`
	Remarks     *string    `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

// Normalize: trim + default planned_days
func (r *CreateClaimRequest) Normalize() {
	r.VolumeID = FlexibleID(strings.TrimSpace(string(r.VolumeID)))
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.ReadingURL = strings.TrimSpace(r.ReadingURL)
	if r.PlannedDays == 0 {
		r.PlannedDays = DefaultPlannedDays
	}
	if r.Remarks != nil {
		s := strings.TrimSpace(*r.Remarks)
		if s == "" {
			r.Remarks = nil
		} else {
			r.Remarks = &s
		}
	}
}

// ====================
// Response DTO
// ====================

type ClaimDTO struct {
	ClaimID              string    `json:"claim_id"`
	VolumeID             string    `json:"volume_id"`
	VolumeTitle          string    `json:"volume_title"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone"`
	PlannedDays          int       `json:"planned_days"`
	ReadingURL           string    `json:"reading_url"`
	Remarks              *string   `json:"remarks,omitempty"`
	Status               string    `json:"status"`
	ClaimedAt            time.Time `json:"claimed_at"`
	ExpectedCompletionAt time.Time `json:"expected_completion_date"`
}

func ToClaimDTO(c model.ClaimModel) ClaimDTO {
	return ClaimDTO{
		ClaimID:              c.ClaimID.String(),
		VolumeID:             c.ClaimVolumeID,
		VolumeTitle:          c.ClaimVolumeTitle,
		Name:                 c.ClaimerName,
		Phone:                c.ClaimerPhone,
		PlannedDays:          c.ClaimPlannedDays,
		ReadingURL:           c.ClaimReadingURL,
		Remarks:              c.ClaimRemarks,
		Status:               c.ClaimStatus,
		ClaimedAt:            c.ClaimClaimedAt,
		ExpectedCompletionAt: c.ClaimExpectedCompletionAt,
	}
}

func ToClaimDTOs(list []model.ClaimModel) []ClaimDTO {
	out := make([]ClaimDTO, 0, len(list))
	for _, c := range list {
		out = append(out, ToClaimDTO(c))
	}
	return out
}
