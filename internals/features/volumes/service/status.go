package service

import (
	"time"

	"jingjuan_backend/internals/features/volumes/dto"
	"jingjuan_backend/internals/features/volumes/model"
)

// DeriveStatus: completed kalau deadline ada dan now >= deadline; claimed kalau field klaim terisi;
// selain itu unclaimed. Status tersimpan tidak pernah dipercaya begitu saja.
func DeriveStatus(v dto.VolumeView, now time.Time) string {
	if v.ExpectedCompletionAt != nil && !now.Before(*v.ExpectedCompletionAt) {
		return model.StatusCompleted
	}
	if v.HasClaim() {
		return model.StatusClaimed
	}
	return model.StatusUnclaimed
}

// storedStatus: status yang tersimpan di record (kosong dianggap claimed).
func storedStatus(c model.ClaimModel) string {
	if c.ClaimStatus == "" {
		return model.StatusClaimed
	}
	return c.ClaimStatus
}
