package evidence

// ChainStatus is the outcome of hash-chain verification.
type ChainStatus string

const (
	ChainPass ChainStatus = "pass"
	// ChainPartial means the recording was interrupted: no tampering was
	// found, but only frames covered by the last verified checkpoint are
	// attested.
	ChainPartial ChainStatus = "partial"
	// ChainFail is terminal. Every frame after the first broken link is
	// untrusted even if nominally present; there is no retry or heal path.
	ChainFail ChainStatus = "fail"
)

// HashChainState is the verifier's output over one capture's segment chain.
// Invariant: VerifiedFrames <= TotalFrames.
type HashChainState struct {
	Status             ChainStatus `json:"status"`
	VerifiedFrames     int         `json:"verified_frames"`
	TotalFrames        int         `json:"total_frames"`
	ChainIntact        bool        `json:"chain_intact"`
	CheckpointVerified bool        `json:"checkpoint_verified"`
	CheckpointIndex    *int        `json:"checkpoint_index,omitempty"`
	PartialReason      *string     `json:"partial_reason,omitempty"`
	VerifiedDurationMs int64       `json:"verified_duration_ms"`
}

// Valid checks the frame-count invariant.
func (s HashChainState) Valid() bool {
	return s.VerifiedFrames >= 0 && s.VerifiedFrames <= s.TotalFrames
}
