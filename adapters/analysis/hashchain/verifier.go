// Package hashchain verifies the sequential integrity of video captures.
//
// Each segment is linked to its predecessor through a running SHA-256 chain,
// so tampering with any segment invalidates every later link. The verifier
// streams segments one at a time: arbitrarily long recordings verify in
// constant memory.
package hashchain

import (
	"context"
	"errors"
	"log"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
	"trustlens/ports"
)

// Partial reasons surfaced in HashChainState.
const (
	ReasonCheckpointAttestation = "checkpoint_attestation"
	ReasonNoVerifiedCheckpoint  = "no_verified_checkpoint"
	ReasonVerificationCancelled = "verification_cancelled"
)

// Verifier recomputes a capture's segment hash chain and compares it against
// the recorded links. A broken chain is terminal: it is never retried or
// healed within the engine.
type Verifier struct {
	checkpoints ports.CheckpointStore
}

// New creates a verifier. The checkpoint store may be nil, in which case
// cancelled verifications restart from the beginning.
func New(checkpoints ports.CheckpointStore) *Verifier {
	return &Verifier{checkpoints: checkpoints}
}

// Verify walks the segment chain from the capture salt (or a persisted resume
// point) and returns the resulting HashChainState. Cancellation is honored
// between segment boundaries; on cancellation the last confirmed checkpoint
// is persisted and ctx.Err() is returned alongside the partial state.
func (v *Verifier) Verify(ctx context.Context, captureID core.CaptureID, salt []byte, src ports.SegmentSource) (evidence.HashChainState, error) {
	total := src.TotalDeclared()
	available := src.Available()

	state := chainWalk{
		link:  core.GenesisLink(salt),
		total: total,
	}

	startAt := 0
	if v.checkpoints != nil {
		if rp, err := v.checkpoints.LoadResumePoint(ctx, captureID); err == nil {
			startAt = rp.FrameIndex
			state.link = rp.Link
			state.verified = rp.FrameIndex
			state.lastCheckpoint = &checkpointMark{ordinal: rp.Ordinal, frames: rp.FrameIndex, durationMs: rp.DurationMs, link: rp.Link}
			state.durationMs = rp.DurationMs
			log.Printf("[HashChain] resuming capture %s from checkpoint %d (frame %d)", captureID, rp.Ordinal, rp.FrameIndex)
		} else if !errors.Is(err, core.ErrCheckpointNotFound) {
			log.Printf("[HashChain] resume lookup failed for capture %s: %v", captureID, err)
		}
	}

	for i := startAt; i < available; i++ {
		select {
		case <-ctx.Done():
			return v.cancelled(ctx, captureID, state), ctx.Err()
		default:
		}

		info, reader, err := src.Segment(i)
		if err != nil {
			// A segment the source cannot produce ends the walk; what came
			// before stays verified.
			log.Printf("[HashChain] capture %s: segment %d unreadable: %v", captureID, i, err)
			return v.interrupted(state), nil
		}

		computed, err := core.NextLink(state.link, reader)
		reader.Close()
		if err != nil {
			log.Printf("[HashChain] capture %s: segment %d read failed: %v", captureID, i, err)
			return v.interrupted(state), nil
		}

		if !core.Hash(computed).Equals(core.Hash(info.RecordedLink)) {
			// Terminal. Frames strictly before the break stay verified;
			// everything from here on is untrusted even if present.
			log.Printf("[HashChain] capture %s: chain broken at segment %d", captureID, i)
			return v.broken(state, i), nil
		}

		state.link = computed
		state.verified = i + 1
		state.durationMs += info.DurationMs

		if cp := info.Checkpoint; cp != nil && cp.Signed && cp.Verified {
			state.lastCheckpoint = &checkpointMark{
				ordinal:    cp.Ordinal,
				frames:     i + 1,
				durationMs: state.durationMs,
				link:       computed,
			}
		}
	}

	if available < total {
		// Recording was interrupted before the final checkpoint. No
		// tampering, just incomplete.
		return v.interrupted(state), nil
	}

	if v.checkpoints != nil {
		if err := v.checkpoints.ClearResumePoint(ctx, captureID); err != nil {
			log.Printf("[HashChain] clearing resume point for capture %s failed: %v", captureID, err)
		}
	}

	return evidence.HashChainState{
		Status:             evidence.ChainPass,
		VerifiedFrames:     state.verified,
		TotalFrames:        total,
		ChainIntact:        true,
		CheckpointVerified: state.lastCheckpoint != nil,
		CheckpointIndex:    state.checkpointIndex(),
		VerifiedDurationMs: state.durationMs,
	}, nil
}

type checkpointMark struct {
	ordinal    int
	frames     int
	durationMs int64
	link       core.ChainLink
}

type chainWalk struct {
	link           core.ChainLink
	verified       int
	total          int
	durationMs     int64
	lastCheckpoint *checkpointMark
}

func (w chainWalk) checkpointIndex() *int {
	if w.lastCheckpoint == nil {
		return nil
	}
	idx := w.lastCheckpoint.ordinal
	return &idx
}

// broken builds the terminal fail state for a mismatch at segment p.
func (v *Verifier) broken(state chainWalk, p int) evidence.HashChainState {
	reason := "hash mismatch"
	return evidence.HashChainState{
		Status:             evidence.ChainFail,
		VerifiedFrames:     p,
		TotalFrames:        state.total,
		ChainIntact:        false,
		CheckpointVerified: state.lastCheckpoint != nil,
		CheckpointIndex:    state.checkpointIndex(),
		PartialReason:      &reason,
		VerifiedDurationMs: state.durationMs,
	}
}

// interrupted builds the partial state for an incomplete recording. Only
// frames covered by the last verified checkpoint are attested.
func (v *Verifier) interrupted(state chainWalk) evidence.HashChainState {
	if state.lastCheckpoint == nil {
		reason := ReasonNoVerifiedCheckpoint
		return evidence.HashChainState{
			Status:             evidence.ChainPartial,
			VerifiedFrames:     0,
			TotalFrames:        state.total,
			ChainIntact:        true,
			CheckpointVerified: false,
			PartialReason:      &reason,
		}
	}
	reason := ReasonCheckpointAttestation
	idx := state.lastCheckpoint.ordinal
	return evidence.HashChainState{
		Status:             evidence.ChainPartial,
		VerifiedFrames:     state.lastCheckpoint.frames,
		TotalFrames:        state.total,
		ChainIntact:        true,
		CheckpointVerified: true,
		CheckpointIndex:    &idx,
		PartialReason:      &reason,
		VerifiedDurationMs: state.lastCheckpoint.durationMs,
	}
}

// cancelled persists the last confirmed checkpoint so the next pass resumes
// instead of restarting, then reports a partial state.
func (v *Verifier) cancelled(ctx context.Context, captureID core.CaptureID, state chainWalk) evidence.HashChainState {
	if v.checkpoints != nil && state.lastCheckpoint != nil {
		// The incoming context is already done; persist with a detached one.
		point := ports.ResumePoint{
			CaptureID:  captureID,
			Ordinal:    state.lastCheckpoint.ordinal,
			FrameIndex: state.lastCheckpoint.frames,
			Link:       state.lastCheckpoint.link,
			DurationMs: state.lastCheckpoint.durationMs,
		}
		if err := v.checkpoints.SaveResumePoint(context.WithoutCancel(ctx), point); err != nil {
			log.Printf("[HashChain] saving resume point for capture %s failed: %v", captureID, err)
		}
	}

	reason := ReasonVerificationCancelled
	st := v.interrupted(state)
	st.PartialReason = &reason
	return st
}
