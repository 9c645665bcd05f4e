package ports

import (
	"context"

	"trustlens/domain/core"
)

// ResumePoint is the last confirmed checkpoint of an interrupted
// verification pass, persisted so verification resumes rather than restarts.
type ResumePoint struct {
	CaptureID  core.CaptureID
	Ordinal    int
	FrameIndex int
	Link       core.ChainLink
	DurationMs int64
}

// CheckpointStore persists verification resume points.
type CheckpointStore interface {
	SaveResumePoint(ctx context.Context, point ResumePoint) error
	// LoadResumePoint returns core.ErrCheckpointNotFound when no point exists.
	LoadResumePoint(ctx context.Context, captureID core.CaptureID) (ResumePoint, error)
	ClearResumePoint(ctx context.Context, captureID core.CaptureID) error
}
