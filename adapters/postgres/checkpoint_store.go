package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"trustlens/domain/core"
	"trustlens/ports"
)

// CheckpointStore persists hash-chain verification resume points so an
// interrupted pass continues from the last confirmed checkpoint.
type CheckpointStore struct {
	db *sqlx.DB
}

// NewCheckpointStore creates a new checkpoint store
func NewCheckpointStore(db *sqlx.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

// SaveResumePoint upserts the resume point for a capture.
func (s *CheckpointStore) SaveResumePoint(ctx context.Context, point ports.ResumePoint) error {
	query := `
		INSERT INTO chain_resume_points (capture_id, ordinal, frame_index, chain_link, duration_ms)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (capture_id) DO UPDATE
		SET ordinal = EXCLUDED.ordinal,
		    frame_index = EXCLUDED.frame_index,
		    chain_link = EXCLUDED.chain_link,
		    duration_ms = EXCLUDED.duration_ms`

	_, err := s.db.ExecContext(ctx, query,
		point.CaptureID.String(),
		point.Ordinal,
		point.FrameIndex,
		point.Link.String(),
		point.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to save resume point: %w", err)
	}
	return nil
}

// LoadResumePoint returns the resume point for a capture.
func (s *CheckpointStore) LoadResumePoint(ctx context.Context, captureID core.CaptureID) (ports.ResumePoint, error) {
	var row struct {
		Ordinal    int    `db:"ordinal"`
		FrameIndex int    `db:"frame_index"`
		ChainLink  string `db:"chain_link"`
		DurationMs int64  `db:"duration_ms"`
	}
	query := `SELECT ordinal, frame_index, chain_link, duration_ms FROM chain_resume_points WHERE capture_id = $1`

	err := s.db.GetContext(ctx, &row, query, captureID.String())
	if err == sql.ErrNoRows {
		return ports.ResumePoint{}, core.ErrCheckpointNotFound
	}
	if err != nil {
		return ports.ResumePoint{}, fmt.Errorf("failed to load resume point: %w", err)
	}

	return ports.ResumePoint{
		CaptureID:  captureID,
		Ordinal:    row.Ordinal,
		FrameIndex: row.FrameIndex,
		Link:       core.ChainLink(row.ChainLink),
		DurationMs: row.DurationMs,
	}, nil
}

// ClearResumePoint removes the resume point after a completed pass.
func (s *CheckpointStore) ClearResumePoint(ctx context.Context, captureID core.CaptureID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chain_resume_points WHERE capture_id = $1`, captureID.String())
	if err != nil {
		return fmt.Errorf("failed to clear resume point: %w", err)
	}
	return nil
}
