package segmentdir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"trustlens/adapters/analysis/hashchain"
	"trustlens/domain/core"
	"trustlens/domain/evidence"
)

// stageCapture writes a valid segment directory: payload files plus a
// manifest with correct recorded links.
func stageCapture(t *testing.T, n int) (string, []byte) {
	t.Helper()
	dir := t.TempDir()
	salt := []byte("test-salt")

	manifest := Manifest{TotalDeclared: n}
	link := core.GenesisLink(salt)
	for i := 0; i < n; i++ {
		data := []byte(fmt.Sprintf("segment-%d", i))
		name := fmt.Sprintf("seg-%04d.bin", i)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("Failed to write segment: %v", err)
		}

		next, err := core.NextLink(link, bytes.NewReader(data))
		if err != nil {
			t.Fatalf("NextLink failed: %v", err)
		}
		entry := ManifestSegment{File: name, RecordedLink: string(next), DurationMs: 33}
		if i == n-1 {
			entry.Checkpoint = &ManifestCheckpoint{Ordinal: 0, Signed: true, Verified: true}
		}
		manifest.Segments = append(manifest.Segments, entry)
		link = next
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("Marshal manifest failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	return dir, salt
}

func TestOpenAndVerify(t *testing.T) {
	dir, salt := stageCapture(t, 5)

	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if src.TotalDeclared() != 5 || src.Available() != 5 {
		t.Errorf("Expected 5/5 segments, got %d/%d", src.Available(), src.TotalDeclared())
	}

	state, err := hashchain.New(nil).Verify(context.Background(), core.CaptureID(core.NewID()), salt, src)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if state.Status != evidence.ChainPass || state.VerifiedFrames != 5 {
		t.Errorf("Expected full pass over staged directory, got %+v", state)
	}
}

func TestSegmentOutOfRange(t *testing.T) {
	dir, _ := stageCapture(t, 2)
	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, _, err := src.Segment(5); err == nil {
		t.Error("Expected error for out-of-range segment")
	}
}

func TestOpenMissingManifest(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Expected error for missing manifest")
	}
}

func TestSegmentCarriesCheckpoint(t *testing.T) {
	dir, _ := stageCapture(t, 3)
	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info, reader, err := src.Segment(2)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	defer reader.Close()

	if info.Checkpoint == nil || !info.Checkpoint.Signed || !info.Checkpoint.Verified {
		t.Errorf("Expected verified checkpoint on final segment, got %+v", info.Checkpoint)
	}
	if info.DurationMs != 33 {
		t.Errorf("Expected duration 33, got %d", info.DurationMs)
	}
}
