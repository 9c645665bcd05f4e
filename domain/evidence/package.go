package evidence

import (
	"trustlens/domain/core"
)

// MediaType distinguishes photo from video captures. Hash-chain verification
// only applies to video.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// EvidencePackage bundles every engine output for one capture into a single
// serializable unit for persistence and presentation. The engine produces it;
// storage and rendering live elsewhere.
type EvidencePackage struct {
	CaptureID       core.CaptureID             `json:"capture_id"`
	SessionID       core.SessionID             `json:"session_id"`
	MediaType       MediaType                  `json:"media_type"`
	Aggregated      AggregatedConfidenceResult `json:"aggregated"`
	CrossValidation CrossValidationResult      `json:"cross_validation"`
	ChainState      *HashChainState            `json:"chain_state,omitempty"`
	Attestation     Attestation                `json:"attestation"`
	CreatedAt       core.Timestamp             `json:"created_at"`
}
