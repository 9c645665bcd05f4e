package ports

import (
	"io"

	"trustlens/domain/core"
)

// CheckpointRecord is an attestation-signed integrity marker recorded at
// fixed intervals during video recording. Signature verification happens in
// the external attestation layer; the verifier consumes its outcome.
type CheckpointRecord struct {
	Ordinal  int
	Signed   bool
	Verified bool
}

// SegmentInfo describes one recorded video segment.
type SegmentInfo struct {
	Index        int
	RecordedLink core.ChainLink
	Checkpoint   *CheckpointRecord
	DurationMs   int64
}

// SegmentSource provides ordered access to a capture's raw video segments.
// Segments are streamed one at a time so verification memory stays bounded by
// a single segment regardless of recording length.
type SegmentSource interface {
	// TotalDeclared is the frame count the capture pipeline intended to
	// record. It can exceed Available when recording was interrupted.
	TotalDeclared() int
	// Available is the number of segments actually present.
	Available() int
	// Segment opens segment i for reading. The caller closes the reader
	// before requesting the next segment.
	Segment(i int) (SegmentInfo, io.ReadCloser, error)
}
