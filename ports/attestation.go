package ports

import (
	"context"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
)

// AttestationProvider exposes the already-verified hardware attestation for a
// capture. Certificate-chain validation against platform roots happens
// entirely outside the engine.
type AttestationProvider interface {
	Attestation(ctx context.Context, captureID core.CaptureID) (evidence.Attestation, error)
}
