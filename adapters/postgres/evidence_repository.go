package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
)

// EvidenceRepository persists assembled evidence packages as JSONB payloads
// keyed by capture ID.
type EvidenceRepository struct {
	db *sqlx.DB
}

// NewEvidenceRepository creates a new evidence repository
func NewEvidenceRepository(db *sqlx.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// SaveEvidence upserts the evidence package for a capture. Evidence passes
// are idempotent per capture; the latest pass wins.
func (r *EvidenceRepository) SaveEvidence(ctx context.Context, pkg *evidence.EvidencePackage) error {
	payload, err := json.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence package: %w", err)
	}

	query := `
		INSERT INTO evidence_packages (capture_id, session_id, media_type, confidence_level, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (capture_id) DO UPDATE
		SET session_id = EXCLUDED.session_id,
		    media_type = EXCLUDED.media_type,
		    confidence_level = EXCLUDED.confidence_level,
		    payload = EXCLUDED.payload,
		    created_at = EXCLUDED.created_at`

	_, err = r.db.ExecContext(ctx, query,
		pkg.CaptureID.String(),
		pkg.SessionID.String(),
		string(pkg.MediaType),
		string(pkg.Aggregated.ConfidenceLevel),
		payload,
		pkg.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save evidence package: %w", err)
	}
	return nil
}

// GetEvidence loads the evidence package for a capture.
func (r *EvidenceRepository) GetEvidence(ctx context.Context, captureID core.CaptureID) (*evidence.EvidencePackage, error) {
	var payload []byte
	query := `SELECT payload FROM evidence_packages WHERE capture_id = $1`

	err := r.db.QueryRowContext(ctx, query, captureID.String()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, core.ErrEvidenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load evidence package: %w", err)
	}

	var pkg evidence.EvidencePackage
	if err := json.Unmarshal(payload, &pkg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evidence package: %w", err)
	}
	return &pkg, nil
}

// ListEvidenceBySession returns the session's evidence packages, newest first.
func (r *EvidenceRepository) ListEvidenceBySession(ctx context.Context, sessionID core.SessionID, limit, offset int) ([]*evidence.EvidencePackage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT payload FROM evidence_packages
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, sessionID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence packages: %w", err)
	}
	defer rows.Close()

	var packages []*evidence.EvidencePackage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan evidence row: %w", err)
		}
		var pkg evidence.EvidencePackage
		if err := json.Unmarshal(payload, &pkg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence package: %w", err)
		}
		packages = append(packages, &pkg)
	}
	return packages, rows.Err()
}
