package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"jingjuan_backend/internals/features/volumes/model"
	"jingjuan_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderTimestamp = "X-Jingjuan-Timestamp"
	HeaderSignature = "X-Jingjuan-Signature"
)

// WebhookNotifier mengirim event klaim baru ke webhook (bot grup / email relay).
type WebhookNotifier struct {
	URL      string
	Secret   string
	Location *time.Location
	Now      func() time.Time
}

func NewWebhookNotifier(url, secret string, loc *time.Location) *WebhookNotifier {
	return &WebhookNotifier{URL: url, Secret: secret, Location: loc, Now: time.Now}
}

type ClaimEvent struct {
	Event                string  `json:"event"`
	VolumeID             string  `json:"volume_id"`
	VolumeTitle          string  `json:"volume_title"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	PlannedDays          int     `json:"planned_days"`
	ClaimedAt            string  `json:"claimed_at"`
	ExpectedCompletionAt string  `json:"expected_completion_date"`
	Remarks              *string `json:"remarks,omitempty"`
	Text                 string  `json:"text"`
}

func BuildClaimEvent(c model.ClaimModel, loc *time.Location) ClaimEvent {
	claimedAt := dbtime.FormatLocal(c.ClaimClaimedAt, loc)
	expected := dbtime.FormatLocal(c.ClaimExpectedCompletionAt, loc)
	return ClaimEvent{
		Event:                "volume.claimed",
		VolumeID:             c.ClaimVolumeID,
		VolumeTitle:          c.ClaimVolumeTitle,
		Name:                 c.ClaimerName,
		Phone:                MaskPhone(c.ClaimerPhone),
		PlannedDays:          c.ClaimPlannedDays,
		ClaimedAt:            claimedAt,
		ExpectedCompletionAt: expected,
		Remarks:              c.ClaimRemarks,
		Text: fmt.Sprintf("【新认领】%s 认领了《%s》，计划%d天，预计%s完成。",
			c.ClaimerName, c.ClaimVolumeTitle, c.ClaimPlannedDays, expected),
	}
}

func (n *WebhookNotifier) NotifyClaim(ctx context.Context, claim model.ClaimModel) error {
	if n.URL == "" {
		return nil
	}
	body, err := json.Marshal(BuildClaimEvent(claim, n.Location))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	ts := strconv.FormatInt(now().Unix(), 10)

	timeout := 10 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	a := fiber.Post(n.URL)
	a.ContentType(fiber.MIMEApplicationJSONCharsetUTF8)
	a.Body(body)
	a.Timeout(timeout)
	if n.Secret != "" {
		a.Set(HeaderTimestamp, ts)
		a.Set(HeaderSignature, Sign(n.Secret, ts, body))
	}

	code, resp, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post webhook: %w", errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook status %d: %s", code, string(resp))
	}
	return nil
}

// Sign: hex(HMAC-SHA256(secret, timestamp + "\n" + body)).
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// MaskPhone: 13800001234 → 138****1234
func MaskPhone(phone string) string {
	r := []rune(phone)
	if len(r) < 7 {
		return phone
	}
	masked := make([]rune, 0, len(r))
	masked = append(masked, r[:3]...)
	for i := 3; i < len(r)-4; i++ {
		masked = append(masked, '*')
	}
	masked = append(masked, r[len(r)-4:]...)
	return string(masked)
}
