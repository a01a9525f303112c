package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jingjuan_backend/internals/features/volumes/catalog"
	"jingjuan_backend/internals/features/volumes/model"
)

// ====================
// Reconciled view
// ====================

// VolumeView: hasil overlay klaim ke katalog. Satu-satunya bentuk yang dilihat presentation layer.
type VolumeView struct {
	ID                   FlexibleID `json:"id"`
	Number               int        `json:"number"`
	Label                string     `json:"label"`
	Title                string     `json:"title"`
	ReadingURL           string     `json:"reading_url"`
	Status               string     `json:"status"`
	ClaimerName          string     `json:"claimer_name,omitempty"`
	ClaimerPhone         string     `json:"claimer_phone,omitempty"`
	PlannedDays          int        `json:"planned_days,omitempty"`
	ClaimedAt            *time.Time `json:"claimed_at,omitempty"`
	ExpectedCompletionAt *time.Time `json:"expected_completion_date,omitempty"`
	Remarks              string     `json:"remarks,omitempty"`
}

func FromCatalog(v catalog.Volume) VolumeView {
	return VolumeView{
		ID:         FlexibleID(v.ID),
		Number:     v.Number,
		Label:      v.Label,
		Title:      v.Title,
		ReadingURL: v.ReadingURL,
		Status:     model.StatusUnclaimed,
	}
}

// HasClaim: field klaim terisi
func (v VolumeView) HasClaim() bool {
	return strings.TrimSpace(v.ClaimerName) != "" || v.ClaimedAt != nil
}

// OverlayClaim menimpa field klaim dari record remote (metadata katalog tetap).
func (v *VolumeView) OverlayClaim(c model.ClaimModel) {
	claimedAt := c.ClaimClaimedAt
	expected := c.ClaimExpectedCompletionAt
	v.ClaimerName = c.ClaimerName
	v.ClaimerPhone = c.ClaimerPhone
	v.PlannedDays = c.ClaimPlannedDays
	if !claimedAt.IsZero() {
		v.ClaimedAt = &claimedAt
	}
	if !expected.IsZero() {
		v.ExpectedCompletionAt = &expected
	}
	if c.ClaimRemarks != nil {
		v.Remarks = *c.ClaimRemarks
	}
}

// OverlayCached menimpa field klaim dari snapshot lokal.
func (v *VolumeView) OverlayCached(c VolumeView) {
	v.ClaimerName = c.ClaimerName
	v.ClaimerPhone = c.ClaimerPhone
	v.PlannedDays = c.PlannedDays
	v.ClaimedAt = c.ClaimedAt
	v.ExpectedCompletionAt = c.ExpectedCompletionAt
	v.Remarks = c.Remarks
}

// ====================
// Flexible ID
// ====================

// FlexibleID menerima string atau number di JSON (store/cache lama bisa simpan 1 atau "V1").
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = FlexibleID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("flexible id: %w", err)
	}
	if i, err := num.Int64(); err == nil {
		*f = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexibleID(num.String())
	return nil
}

func (f FlexibleID) String() string { return string(f) }
