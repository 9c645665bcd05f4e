package ports

import (
	"context"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
)

// EvidenceRepository persists assembled evidence packages. The engine core
// stays persistence-agnostic; this is the only seam storage plugs into.
type EvidenceRepository interface {
	SaveEvidence(ctx context.Context, pkg *evidence.EvidencePackage) error
	// GetEvidence returns core.ErrEvidenceNotFound when no package exists.
	GetEvidence(ctx context.Context, captureID core.CaptureID) (*evidence.EvidencePackage, error)
	ListEvidenceBySession(ctx context.Context, sessionID core.SessionID, limit, offset int) ([]*evidence.EvidencePackage, error)
}
