package hashchain

import (
	"context"
	"errors"
	"testing"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
	"trustlens/internal/testkit"
)

func newCaptureID() core.CaptureID {
	return core.CaptureID(core.NewID())
}

func TestVerifyIntactChain(t *testing.T) {
	fixture := testkit.NewChainFixture(450, 150)
	v := New(nil)

	state, err := v.Verify(context.Background(), newCaptureID(), fixture.Salt, fixture.Source())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if state.Status != evidence.ChainPass {
		t.Errorf("Expected pass, got %s", state.Status)
	}
	if !state.ChainIntact {
		t.Error("Expected chain intact")
	}
	if state.VerifiedFrames != 450 || state.TotalFrames != 450 {
		t.Errorf("Expected 450/450 frames, got %d/%d", state.VerifiedFrames, state.TotalFrames)
	}
	if !state.CheckpointVerified || state.CheckpointIndex == nil || *state.CheckpointIndex != 2 {
		t.Errorf("Expected last checkpoint ordinal 2, got %+v", state.CheckpointIndex)
	}
	if state.VerifiedDurationMs != 450*33 {
		t.Errorf("Expected duration %d, got %d", 450*33, state.VerifiedDurationMs)
	}
}

// TestVerifyCorruptSegment verifies a mid-chain tamper is terminal: frames
// before the break stay verified, everything after is untrusted.
func TestVerifyCorruptSegment(t *testing.T) {
	fixture := testkit.NewChainFixture(450, 150).Corrupt(300)
	v := New(nil)

	state, err := v.Verify(context.Background(), newCaptureID(), fixture.Salt, fixture.Source())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if state.Status != evidence.ChainFail {
		t.Errorf("Expected fail, got %s", state.Status)
	}
	if state.ChainIntact {
		t.Error("Expected broken chain")
	}
	if state.VerifiedFrames != 300 {
		t.Errorf("Expected 300 verified frames before the break, got %d", state.VerifiedFrames)
	}
	if state.CheckpointIndex == nil || *state.CheckpointIndex != 1 {
		t.Errorf("Expected checkpoint ordinal 1, got %+v", state.CheckpointIndex)
	}
}

// TestVerifyInterruptedAtCheckpoint covers an interrupted recording whose
// available segments end exactly on a verified checkpoint.
func TestVerifyInterruptedAtCheckpoint(t *testing.T) {
	fixture := testkit.NewChainFixture(450, 150).Truncate(300)
	v := New(nil)

	state, err := v.Verify(context.Background(), newCaptureID(), fixture.Salt, fixture.Source())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if state.Status != evidence.ChainPartial {
		t.Errorf("Expected partial, got %s", state.Status)
	}
	if !state.ChainIntact {
		t.Error("Expected chain intact for clean interruption")
	}
	if state.VerifiedFrames != 300 || state.TotalFrames != 450 {
		t.Errorf("Expected 300/450 frames, got %d/%d", state.VerifiedFrames, state.TotalFrames)
	}
	if state.PartialReason == nil || *state.PartialReason != ReasonCheckpointAttestation {
		t.Errorf("Expected reason %q, got %v", ReasonCheckpointAttestation, state.PartialReason)
	}
	if state.CheckpointIndex == nil || *state.CheckpointIndex != 1 {
		t.Errorf("Expected checkpoint ordinal 1, got %+v", state.CheckpointIndex)
	}
}

// TestVerifyInterruptedBetweenCheckpoints rolls attestation back to the last
// verified checkpoint even when more segments hashed cleanly.
func TestVerifyInterruptedBetweenCheckpoints(t *testing.T) {
	fixture := testkit.NewChainFixture(450, 150).Truncate(200)
	v := New(nil)

	state, err := v.Verify(context.Background(), newCaptureID(), fixture.Salt, fixture.Source())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if state.Status != evidence.ChainPartial {
		t.Errorf("Expected partial, got %s", state.Status)
	}
	if state.VerifiedFrames != 150 {
		t.Errorf("Expected attestation rolled back to frame 150, got %d", state.VerifiedFrames)
	}
	if state.CheckpointIndex == nil || *state.CheckpointIndex != 0 {
		t.Errorf("Expected checkpoint ordinal 0, got %+v", state.CheckpointIndex)
	}
	if state.VerifiedDurationMs != 150*33 {
		t.Errorf("Expected duration %d, got %d", 150*33, state.VerifiedDurationMs)
	}
}

func TestVerifyInterruptedWithoutCheckpoint(t *testing.T) {
	fixture := testkit.NewChainFixture(450, 0).Truncate(300)
	v := New(nil)

	state, err := v.Verify(context.Background(), newCaptureID(), fixture.Salt, fixture.Source())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if state.Status != evidence.ChainPartial {
		t.Errorf("Expected partial, got %s", state.Status)
	}
	if state.VerifiedFrames != 0 {
		t.Errorf("Expected zero attested frames without a checkpoint, got %d", state.VerifiedFrames)
	}
	if state.CheckpointVerified {
		t.Error("Expected checkpoint_verified false")
	}
	if state.PartialReason == nil || *state.PartialReason != ReasonNoVerifiedCheckpoint {
		t.Errorf("Expected reason %q, got %v", ReasonNoVerifiedCheckpoint, state.PartialReason)
	}
}

func TestVerifyEmptyCapture(t *testing.T) {
	fixture := testkit.NewChainFixture(0, 0)
	v := New(nil)

	state, err := v.Verify(context.Background(), newCaptureID(), fixture.Salt, fixture.Source())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if state.Status != evidence.ChainPass || state.VerifiedFrames != 0 {
		t.Errorf("Expected vacuous pass, got %+v", state)
	}
}

// TestVerifyCancellationAndResume cancels mid-walk, expects the resume point
// to land on the last confirmed checkpoint, then finishes on a second pass.
func TestVerifyCancellationAndResume(t *testing.T) {
	fixture := testkit.NewChainFixture(450, 150)
	store := testkit.NewMemCheckpointStore()
	v := New(store)
	captureID := newCaptureID()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &testkit.CancelAfterSource{SegmentSource: fixture.Source(), Cancel: cancel, After: 200}

	state, err := v.Verify(ctx, captureID, fixture.Salt, src)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if state.Status != evidence.ChainPartial {
		t.Errorf("Expected partial on cancellation, got %s", state.Status)
	}
	if state.PartialReason == nil || *state.PartialReason != ReasonVerificationCancelled {
		t.Errorf("Expected reason %q, got %v", ReasonVerificationCancelled, state.PartialReason)
	}
	if state.VerifiedFrames != 150 {
		t.Errorf("Expected attestation at checkpoint frame 150, got %d", state.VerifiedFrames)
	}

	rp, err := store.LoadResumePoint(context.Background(), captureID)
	if err != nil {
		t.Fatalf("Expected persisted resume point: %v", err)
	}
	if rp.FrameIndex != 150 || rp.Ordinal != 0 {
		t.Errorf("Expected resume at checkpoint 0 / frame 150, got %+v", rp)
	}

	// Second pass resumes from the checkpoint and completes.
	state, err = v.Verify(context.Background(), captureID, fixture.Salt, fixture.Source())
	if err != nil {
		t.Fatalf("Resume verify failed: %v", err)
	}
	if state.Status != evidence.ChainPass || state.VerifiedFrames != 450 {
		t.Errorf("Expected full pass after resume, got %+v", state)
	}
	if state.VerifiedDurationMs != 450*33 {
		t.Errorf("Expected duration %d after resume, got %d", 450*33, state.VerifiedDurationMs)
	}

	// A completed pass clears the resume point.
	if _, err := store.LoadResumePoint(context.Background(), captureID); !errors.Is(err, core.ErrCheckpointNotFound) {
		t.Errorf("Expected cleared resume point, got %v", err)
	}
}
