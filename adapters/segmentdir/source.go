// Package segmentdir adapts a directory of staged video segments plus a
// manifest into a ports.SegmentSource for chain verification.
package segmentdir

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"trustlens/domain/core"
	"trustlens/ports"
)

// Manifest describes a staged capture's segments. The capture pipeline writes
// it next to the segment files.
type Manifest struct {
	TotalDeclared int               `json:"total_declared"`
	Segments      []ManifestSegment `json:"segments"`
}

// ManifestSegment is one segment entry.
type ManifestSegment struct {
	File         string              `json:"file"`
	RecordedLink string              `json:"recorded_link"`
	DurationMs   int64               `json:"duration_ms"`
	Checkpoint   *ManifestCheckpoint `json:"checkpoint,omitempty"`
}

// ManifestCheckpoint mirrors the attestation-signed checkpoint marker.
type ManifestCheckpoint struct {
	Ordinal  int  `json:"ordinal"`
	Signed   bool `json:"signed"`
	Verified bool `json:"verified"`
}

// DirSource streams segments from a directory one at a time.
type DirSource struct {
	dir      string
	manifest Manifest
}

// Open reads the manifest in dir and returns a segment source over it.
func Open(dir string) (*DirSource, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read segment manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse segment manifest: %w", err)
	}
	if m.TotalDeclared < len(m.Segments) {
		m.TotalDeclared = len(m.Segments)
	}
	return &DirSource{dir: dir, manifest: m}, nil
}

// TotalDeclared returns the frame count the pipeline intended to record.
func (s *DirSource) TotalDeclared() int {
	return s.manifest.TotalDeclared
}

// Available returns the number of segments actually staged.
func (s *DirSource) Available() int {
	return len(s.manifest.Segments)
}

// Segment opens segment i for streaming.
func (s *DirSource) Segment(i int) (ports.SegmentInfo, io.ReadCloser, error) {
	if i < 0 || i >= len(s.manifest.Segments) {
		return ports.SegmentInfo{}, nil, core.ErrSegmentMissing
	}
	entry := s.manifest.Segments[i]

	f, err := os.Open(filepath.Join(s.dir, entry.File))
	if err != nil {
		return ports.SegmentInfo{}, nil, fmt.Errorf("failed to open segment %d: %w", i, err)
	}

	info := ports.SegmentInfo{
		Index:        i,
		RecordedLink: core.ChainLink(entry.RecordedLink),
		DurationMs:   entry.DurationMs,
	}
	if cp := entry.Checkpoint; cp != nil {
		info.Checkpoint = &ports.CheckpointRecord{Ordinal: cp.Ordinal, Signed: cp.Signed, Verified: cp.Verified}
	}
	return info, f, nil
}
