package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"jingjuan_backend/internals/features/volumes/dto"
)

var ErrSnapshotNotFound = errors.New("local snapshot not found")

// SnapshotRepository: cache lokal (SQLite) berisi reconciled view terakhir.
// Key diberi versi (mis. "volumes_v3"); naikkan versi = buang semua cache lama.
type SnapshotRepository struct {
	conn *sql.DB
	key  string
}

func NewSnapshotRepository(conn *sql.DB, key string) *SnapshotRepository {
	return &SnapshotRepository{conn: conn, key: key}
}

func (r *SnapshotRepository) Key() string { return r.key }

func (r *SnapshotRepository) Load(ctx context.Context) ([]dto.VolumeView, error) {
	var raw string
	err := r.conn.QueryRowContext(ctx,
		`SELECT snapshot_value FROM local_snapshots WHERE snapshot_key = ?`, r.key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var views []dto.VolumeView
	if err := json.Unmarshal([]byte(raw), &views); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", r.key, err)
	}
	return views, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, views []dto.VolumeView) error {
	raw, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.conn.ExecContext(ctx, `
		INSERT INTO local_snapshots (snapshot_key, snapshot_value, snapshot_updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(snapshot_key) DO UPDATE SET
			snapshot_value = excluded.snapshot_value,
			snapshot_updated_at = CURRENT_TIMESTAMP`,
		r.key, string(raw))
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
