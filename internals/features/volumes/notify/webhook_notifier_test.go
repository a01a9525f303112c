package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jingjuan_backend/internals/features/volumes/model"
)

func sampleClaim() model.ClaimModel {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return model.ClaimModel{
		ClaimVolumeID:             "V1",
		ClaimVolumeTitle:          "大方广佛华严经 第1卷",
		ClaimerName:               "张三",
		ClaimerPhone:              "13800001234",
		ClaimPlannedDays:          7,
		ClaimClaimedAt:            at,
		ClaimExpectedCompletionAt: at.AddDate(0, 0, 7),
	}
}

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"13800001234": "138****1234",
		"12345678":    "123*5678",
		"123":         "123",
	}
	for in, want := range cases {
		if got := MaskPhone(in); got != want {
			t.Errorf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildClaimEvent(t *testing.T) {
	ev := BuildClaimEvent(sampleClaim(), time.UTC)
	if ev.Event != "volume.claimed" || ev.Phone != "138****1234" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.ExpectedCompletionAt != "2024-03-08 09:00" {
		t.Errorf("expected completion = %q", ev.ExpectedCompletionAt)
	}
	if !strings.Contains(ev.Text, "张三") {
		t.Errorf("text = %q", ev.Text)
	}
}

func TestNotifyClaimSignsPayload(t *testing.T) {
	var (
		gotSig  string
		gotTS   string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(HeaderSignature)
		gotTS = r.Header.Get(HeaderTimestamp)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "s3cret", time.UTC)
	n.Now = func() time.Time { return time.Unix(1700000000, 0) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.NotifyClaim(ctx, sampleClaim()); err != nil {
		t.Fatalf("NotifyClaim: %v", err)
	}

	if gotTS != "1700000000" {
		t.Errorf("timestamp header = %q", gotTS)
	}
	if want := Sign("s3cret", gotTS, gotBody); gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
	var ev ClaimEvent
	if err := json.Unmarshal(gotBody, &ev); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if ev.VolumeID != "V1" {
		t.Errorf("volume id = %q", ev.VolumeID)
	}
}

func TestNotifyClaimNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "", time.UTC)
	if err := n.NotifyClaim(context.Background(), sampleClaim()); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestNotifyClaimWithoutURLIsNoop(t *testing.T) {
	n := NewWebhookNotifier("", "", time.UTC)
	if err := n.NotifyClaim(context.Background(), sampleClaim()); err != nil {
		t.Fatalf("empty URL should be a no-op, got %v", err)
	}
}
