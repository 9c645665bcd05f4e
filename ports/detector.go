package ports

import (
	"context"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
)

// CaptureInput is the materialized capture handed to every detector adapter.
type CaptureInput struct {
	CaptureID core.CaptureID
	MediaType evidence.MediaType
	// MediaPath points at the capture bytes on local storage; detectors read
	// it themselves.
	MediaPath string
	// DepthMapPath is present when the device recorded hardware depth data.
	DepthMapPath string
}

// Detector is one external detection method adapter (LiDAR depth, moire,
// texture, artifacts). Implementations live outside the engine; the engine
// only consumes their declared scores and statuses.
type Detector interface {
	Method() evidence.DetectionMethod
	// Detect returns the method's result. A returned error or a context
	// timeout degrades to status=unavailable; it is never treated as a
	// negative signal, and the engine does not retry.
	Detect(ctx context.Context, input CaptureInput) (evidence.MethodResult, error)
}
