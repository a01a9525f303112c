package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SnapshotRefresher: service yang bisa menyimpan reconciled view ke cache lokal.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) error
}

// StartSnapshotScheduler menjalankan refresh snapshot sesuai jadwal cron
// (default tiap 10 menit). Sekaligus jadi warm-up untuk remote yang suka cold start.
func StartSnapshotScheduler(svc SnapshotRefresher, schedule string, timeout time.Duration) (*cron.Cron, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		RunSnapshotOnce(svc, timeout)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[SNAPSHOT] scheduler aktif, jadwal=%q", schedule)
	return c, nil
}

// RunSnapshotOnce: satu kali refresh, error cuma di-log.
func RunSnapshotOnce(svc SnapshotRefresher, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	if err := svc.RefreshSnapshot(ctx); err != nil {
		log.Printf("[SNAPSHOT ERROR] refresh gagal: %v", err)
		return
	}
	log.Printf("[SNAPSHOT] refresh selesai dalam %s", time.Since(start))
}
