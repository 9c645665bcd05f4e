package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"trustlens/adapters/analysis/aggregate"
	"trustlens/adapters/analysis/crossval"
	"trustlens/adapters/analysis/hashchain"
	"trustlens/adapters/detect"
	"trustlens/domain/core"
	"trustlens/domain/evidence"
	"trustlens/ports"
)

// aggregationBudget is the soft target for the aggregation+cross-validation
// math. Exceeding it is logged as a performance concern, never a failure.
const aggregationBudget = 10 * time.Millisecond

// EvaluateRequest describes one evidence-computation pass.
type EvaluateRequest struct {
	CaptureID core.CaptureID
	SessionID core.SessionID
	MediaType evidence.MediaType
	Input     ports.CaptureInput

	// Methods carries detector results already produced by an external
	// detector-invocation layer. When present, the in-process detector
	// fan-out is skipped and these results are sanitized and consumed
	// directly.
	Methods map[evidence.DetectionMethod]evidence.MethodResult

	// Video-only inputs.
	Salt         []byte
	Segments     ports.SegmentSource
	FrameWindows []crossval.FrameWindow
}

// EvidenceService orchestrates the full pass: detector fan-out, parallel
// aggregation and cross-validation, classification, hash-chain verification
// for video, and assembly of the final evidence package.
type EvidenceService struct {
	runner      *detect.Runner
	detectors   []ports.Detector
	aggregator  *aggregate.Aggregator
	validator   *crossval.Validator
	chain       *hashchain.Verifier
	attestation ports.AttestationProvider
	repo        ports.EvidenceRepository
}

// NewEvidenceService wires the engine components together. The repository may
// be nil when persistence is handled entirely by the caller.
func NewEvidenceService(
	runner *detect.Runner,
	detectors []ports.Detector,
	aggregator *aggregate.Aggregator,
	validator *crossval.Validator,
	chain *hashchain.Verifier,
	attestation ports.AttestationProvider,
	repo ports.EvidenceRepository,
) *EvidenceService {
	return &EvidenceService{
		runner:      runner,
		detectors:   detectors,
		aggregator:  aggregator,
		validator:   validator,
		chain:       chain,
		attestation: attestation,
		repo:        repo,
	}
}

// Evaluate runs one evidence-computation pass and returns the assembled
// package. Detector unavailability degrades the result; only a missing
// capture or a repository fault surfaces as an error.
func (s *EvidenceService) Evaluate(ctx context.Context, req EvaluateRequest) (*evidence.EvidencePackage, error) {
	if req.CaptureID.String() == "" {
		return nil, fmt.Errorf("evaluate: capture ID is required")
	}

	attestation := evidence.Attestation{Level: evidence.AttestationUnverified}
	if s.attestation != nil {
		att, err := s.attestation.Attestation(ctx, req.CaptureID)
		if err != nil {
			log.Printf("[Evidence] capture %s: attestation lookup failed, treating as unverified: %v", req.CaptureID, err)
		} else {
			attestation = att
		}
	}

	// Fan-out/fan-in: all detectors complete or time out before any math
	// runs. Externally supplied results bypass the fan-out but still go
	// through contract sanitization.
	var methods map[evidence.DetectionMethod]evidence.MethodResult
	if req.Methods != nil {
		methods = make(map[evidence.DetectionMethod]evidence.MethodResult, len(req.Methods))
		for m, r := range req.Methods {
			if m.IsValid() {
				methods[m] = detect.Sanitize(m, r)
			}
		}
	} else {
		methods = s.runner.RunAll(ctx, s.detectors, req.Input)
	}

	var chainState *evidence.HashChainState
	var chainStatus *evidence.ChainStatus
	if req.MediaType == evidence.MediaVideo && req.Segments != nil {
		state, err := s.chain.Verify(ctx, req.CaptureID, req.Salt, req.Segments)
		if err != nil {
			// Cancellation mid-chain still yields a usable partial state.
			log.Printf("[Evidence] capture %s: chain verification interrupted: %v", req.CaptureID, err)
		}
		chainState = &state
		chainStatus = &state.Status
	}

	mathStart := time.Now()

	var frames []crossval.FrameWindow
	if req.MediaType == evidence.MediaVideo {
		frames = req.FrameWindows
	}
	cv := s.validator.Validate(methods, frames)

	aggregated := s.aggregator.Aggregate(aggregate.Request{
		Methods:         methods,
		CrossValidation: &cv,
		Attestation:     attestation,
		ChainStatus:     chainStatus,
	})

	if elapsed := time.Since(mathStart); elapsed > aggregationBudget {
		log.Printf("[Evidence] capture %s: aggregation math took %s (budget %s)", req.CaptureID, elapsed, aggregationBudget)
	}

	pkg := &evidence.EvidencePackage{
		CaptureID:       req.CaptureID,
		SessionID:       req.SessionID,
		MediaType:       req.MediaType,
		Aggregated:      aggregated,
		CrossValidation: cv,
		ChainState:      chainState,
		Attestation:     attestation,
		CreatedAt:       core.Now(),
	}

	if s.repo != nil {
		if err := s.repo.SaveEvidence(ctx, pkg); err != nil {
			return nil, fmt.Errorf("evaluate: persisting evidence for capture %s: %w", req.CaptureID, err)
		}
	}

	return pkg, nil
}

// VerifyChain runs hash-chain verification alone, for callers that only need
// sequential-integrity confirmation of an existing recording.
func (s *EvidenceService) VerifyChain(ctx context.Context, captureID core.CaptureID, salt []byte, src ports.SegmentSource) (evidence.HashChainState, error) {
	return s.chain.Verify(ctx, captureID, salt, src)
}
