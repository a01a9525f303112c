package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jingjuan_backend/internals/features/volumes/dto"
	"jingjuan_backend/internals/features/volumes/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SupabaseClaimRepository: store klaim via Supabase REST (PostgREST).
// Dipakai kalau hanya SUPABASE_URL/SUPABASE_KEY yang tersedia (tanpa akses DB langsung).
type SupabaseClaimRepository struct {
	BaseURL string
	APIKey  string
	Table   string
	Timeout time.Duration
}

func NewSupabaseClaimRepository(baseURL, apiKey, table string, timeout time.Duration) *SupabaseClaimRepository {
	if table == "" {
		table = "volume_claims"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SupabaseClaimRepository{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Table:   table,
		Timeout: timeout,
	}
}

func (r *SupabaseClaimRepository) Name() string { return "supabase" }

// restClaimRow: bentuk row di REST. volume id bisa balik sebagai number.
type restClaimRow struct {
	ClaimID                   string          `json:"claim_id,omitempty"`
	ClaimVolumeID             dto.FlexibleID  `json:"claim_volume_id"`
	ClaimVolumeTitle          string          `json:"claim_volume_title"`
	ClaimerName               string          `json:"claimer_name"`
	ClaimerPhone              string          `json:"claimer_phone"`
	ClaimPlannedDays          int             `json:"claim_planned_days"`
	ClaimReadingURL           string          `json:"claim_reading_url"`
	ClaimRemarks              *string         `json:"claim_remarks"`
	ClaimStatus               string          `json:"claim_status"`
	ClaimClaimedAt            flexTime        `json:"claim_claimed_at"`
	ClaimExpectedCompletionAt flexTime        `json:"claim_expected_completion_at"`
	ClaimMeta                 json.RawMessage `json:"claim_meta,omitempty"`
}

func (row restClaimRow) toModel() model.ClaimModel {
	m := model.ClaimModel{
		ClaimVolumeID:             row.ClaimVolumeID.String(),
		ClaimVolumeTitle:          row.ClaimVolumeTitle,
		ClaimerName:               row.ClaimerName,
		ClaimerPhone:              row.ClaimerPhone,
		ClaimPlannedDays:          row.ClaimPlannedDays,
		ClaimReadingURL:           row.ClaimReadingURL,
		ClaimRemarks:              row.ClaimRemarks,
		ClaimStatus:               row.ClaimStatus,
		ClaimClaimedAt:            time.Time(row.ClaimClaimedAt),
		ClaimExpectedCompletionAt: time.Time(row.ClaimExpectedCompletionAt),
	}
	if id, err := uuid.Parse(row.ClaimID); err == nil {
		m.ClaimID = id
	}
	if len(row.ClaimMeta) > 0 && !bytes.Equal(row.ClaimMeta, []byte("null")) {
		m.ClaimMeta = datatypes.JSON(row.ClaimMeta)
	}
	return m
}

func rowFromModel(m model.ClaimModel) restClaimRow {
	row := restClaimRow{
		ClaimID:                   m.ClaimID.String(),
		ClaimVolumeID:             dto.FlexibleID(m.ClaimVolumeID),
		ClaimVolumeTitle:          m.ClaimVolumeTitle,
		ClaimerName:               m.ClaimerName,
		ClaimerPhone:              m.ClaimerPhone,
		ClaimPlannedDays:          m.ClaimPlannedDays,
		ClaimReadingURL:           m.ClaimReadingURL,
		ClaimRemarks:              m.ClaimRemarks,
		ClaimStatus:               m.ClaimStatus,
		ClaimClaimedAt:            flexTime(m.ClaimClaimedAt),
		ClaimExpectedCompletionAt: flexTime(m.ClaimExpectedCompletionAt),
	}
	if len(m.ClaimMeta) > 0 {
		row.ClaimMeta = json.RawMessage(m.ClaimMeta)
	}
	return row
}

func (r *SupabaseClaimRepository) ListClaims(ctx context.Context) ([]model.ClaimModel, error) {
	endpoint := r.tableURL() + "?select=*&order=claim_claimed_at.asc"
	code, body, err := r.send(ctx, fiber.Get(endpoint))
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("list claims: status %d: %s", code, truncate(body))
	}
	return DecodeClaimsPayload(body)
}

func (r *SupabaseClaimRepository) ExistsByVolumeID(ctx context.Context, volumeID string) (bool, error) {
	endpoint := r.tableURL() + "?select=claim_id&limit=1&claim_volume_id=eq." + url.QueryEscape(volumeID)
	code, body, err := r.send(ctx, fiber.Get(endpoint))
	if err != nil {
		return false, fmt.Errorf("check claim: %w", err)
	}
	if code != fiber.StatusOK {
		return false, fmt.Errorf("check claim: status %d: %s", code, truncate(body))
	}
	rows, err := DecodeClaimsPayload(body)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (r *SupabaseClaimRepository) Create(ctx context.Context, claim *model.ClaimModel) error {
	if claim.ClaimID == uuid.Nil {
		claim.ClaimID = uuid.New()
	}
	a := fiber.Post(r.tableURL())
	a.JSON(rowFromModel(*claim))
	a.Set("Prefer", "return=representation")

	code, body, err := r.send(ctx, a)
	if err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	if code == fiber.StatusConflict || bytes.Contains(body, []byte("23505")) {
		return fmt.Errorf("%w: %s", ErrDuplicateClaim, claim.ClaimVolumeID)
	}
	if code != fiber.StatusCreated && code != fiber.StatusOK {
		return fmt.Errorf("create claim: status %d: %s", code, truncate(body))
	}

	// pakai representasi dari server kalau ada (field yang dihitung server)
	if rows, err := DecodeClaimsPayload(body); err == nil && len(rows) > 0 {
		saved := rows[0]
		if saved.ClaimID == uuid.Nil {
			saved.ClaimID = claim.ClaimID
		}
		*claim = saved
	}
	return nil
}

func (r *SupabaseClaimRepository) tableURL() string {
	return r.BaseURL + "/rest/v1/" + r.Table
}

func (r *SupabaseClaimRepository) send(ctx context.Context, a *fiber.Agent) (int, []byte, error) {
	timeout := r.Timeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			fiber.ReleaseAgent(a)
			return 0, nil, context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	a.Set("apikey", r.APIKey)
	a.Set("Authorization", "Bearer "+r.APIKey)
	a.Set("Accept", "application/json")
	a.Timeout(timeout)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return code, body, errors.Join(errs...)
	}
	return code, body, nil
}

// DecodeClaimsPayload: satu-satunya pintu parsing respons remote.
// Terima array polos `[...]` atau dibungkus `{"data": [...]}` / `{"results": [...]}`,
// juga satu object row (Prefer: return=representation kadang balik object).
func DecodeClaimsPayload(body []byte) ([]model.ClaimModel, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.ClaimModel{}, nil
	}

	var rows []restClaimRow
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode claims array: %w", err)
		}
	case '{':
		var wrapper struct {
			Data    json.RawMessage `json:"data"`
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode claims object: %w", err)
		}
		switch {
		case len(wrapper.Data) > 0:
			return DecodeClaimsPayload(wrapper.Data)
		case len(wrapper.Results) > 0:
			return DecodeClaimsPayload(wrapper.Results)
		}
		var single restClaimRow
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("decode claim row: %w", err)
		}
		if single.ClaimVolumeID == "" {
			return nil, fmt.Errorf("decode claims: unknown object shape")
		}
		rows = []restClaimRow{single}
	default:
		return nil, fmt.Errorf("decode claims: unexpected payload %q", truncate(trimmed))
	}

	out := make([]model.ClaimModel, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// flexTime: timestamptz (RFC3339) atau timestamp tanpa zona.
type flexTime time.Time

var flexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*t = flexTime(time.Time{})
		return nil
	}
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	// epoch millis
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		*t = flexTime(time.UnixMilli(ms))
		return nil
	}
	return fmt.Errorf("flexTime: cannot parse %q", s)
}

func (t flexTime) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(tt.Format(time.RFC3339Nano))
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
