// Package testkit provides deterministic fixtures for engine tests: canned
// detector results, synthetic segment chains, and in-memory ports.
package testkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"trustlens/domain/core"
	"trustlens/domain/evidence"
	"trustlens/ports"
)

// MethodScores builds a usable MethodResult set from raw scores. Every listed
// method gets status=pass.
func MethodScores(scores map[evidence.DetectionMethod]float64) map[evidence.DetectionMethod]evidence.MethodResult {
	out := make(map[evidence.DetectionMethod]evidence.MethodResult, len(scores))
	for m, v := range scores {
		out[m] = evidence.MethodResult{
			Available: true,
			Score:     evidence.NewScore(v),
			Status:    evidence.StatusPass,
		}
	}
	return out
}

// WithStatus overrides one method's status in a result set.
func WithStatus(methods map[evidence.DetectionMethod]evidence.MethodResult, m evidence.DetectionMethod, status evidence.MethodStatus) map[evidence.DetectionMethod]evidence.MethodResult {
	r := methods[m]
	r.Status = status
	methods[m] = r
	return methods
}

// ChainFixture is a synthetic segment chain with correct recorded links.
type ChainFixture struct {
	Salt     []byte
	Segments []chainSegment
	declared int
}

type chainSegment struct {
	data       []byte
	link       core.ChainLink
	durationMs int64
	checkpoint *ports.CheckpointRecord
}

// NewChainFixture builds a valid chain of n segments with a verified, signed
// checkpoint every checkpointEvery segments (0 disables checkpoints).
// Segment payloads are deterministic.
func NewChainFixture(n, checkpointEvery int) *ChainFixture {
	f := &ChainFixture{Salt: []byte("capture-salt"), declared: n}

	link := core.GenesisLink(f.Salt)
	ordinal := 0
	for i := 0; i < n; i++ {
		data := []byte(fmt.Sprintf("segment-%06d-payload", i))
		next, _ := core.NextLink(link, bytes.NewReader(data))

		seg := chainSegment{data: data, link: next, durationMs: 33}
		if checkpointEvery > 0 && (i+1)%checkpointEvery == 0 {
			seg.checkpoint = &ports.CheckpointRecord{Ordinal: ordinal, Signed: true, Verified: true}
			ordinal++
		}
		f.Segments = append(f.Segments, seg)
		link = next
	}
	return f
}

// Corrupt flips the payload of segment i without touching the recorded link,
// breaking the chain at i.
func (f *ChainFixture) Corrupt(i int) *ChainFixture {
	f.Segments[i].data = append([]byte("tampered-"), f.Segments[i].data...)
	return f
}

// Truncate keeps only the first n segments while leaving the declared total
// intact, simulating an interrupted recording.
func (f *ChainFixture) Truncate(n int) *ChainFixture {
	f.Segments = f.Segments[:n]
	return f
}

// Source returns a ports.SegmentSource over the fixture.
func (f *ChainFixture) Source() ports.SegmentSource {
	return &fixtureSource{fixture: f}
}

type fixtureSource struct {
	fixture *ChainFixture
}

func (s *fixtureSource) TotalDeclared() int { return s.fixture.declared }
func (s *fixtureSource) Available() int    { return len(s.fixture.Segments) }

func (s *fixtureSource) Segment(i int) (ports.SegmentInfo, io.ReadCloser, error) {
	if i < 0 || i >= len(s.fixture.Segments) {
		return ports.SegmentInfo{}, nil, core.ErrSegmentMissing
	}
	seg := s.fixture.Segments[i]
	return ports.SegmentInfo{
		Index:        i,
		RecordedLink: seg.link,
		Checkpoint:   seg.checkpoint,
		DurationMs:   seg.durationMs,
	}, io.NopCloser(bytes.NewReader(seg.data)), nil
}

// CancelAfterSource wraps a source and cancels the given context once n
// segments have been opened, exercising mid-verification cancellation.
type CancelAfterSource struct {
	ports.SegmentSource
	Cancel context.CancelFunc
	After  int
	opened int
}

func (s *CancelAfterSource) Segment(i int) (ports.SegmentInfo, io.ReadCloser, error) {
	s.opened++
	if s.opened == s.After {
		s.Cancel()
	}
	return s.SegmentSource.Segment(i)
}

// MemCheckpointStore is an in-memory ports.CheckpointStore.
type MemCheckpointStore struct {
	mu     sync.Mutex
	points map[core.CaptureID]ports.ResumePoint
}

// NewMemCheckpointStore creates an empty store.
func NewMemCheckpointStore() *MemCheckpointStore {
	return &MemCheckpointStore{points: make(map[core.CaptureID]ports.ResumePoint)}
}

func (s *MemCheckpointStore) SaveResumePoint(_ context.Context, point ports.ResumePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[point.CaptureID] = point
	return nil
}

func (s *MemCheckpointStore) LoadResumePoint(_ context.Context, captureID core.CaptureID) (ports.ResumePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.points[captureID]
	if !ok {
		return ports.ResumePoint{}, core.ErrCheckpointNotFound
	}
	return p, nil
}

func (s *MemCheckpointStore) ClearResumePoint(_ context.Context, captureID core.CaptureID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.points, captureID)
	return nil
}

// MemEvidenceRepository is an in-memory ports.EvidenceRepository.
type MemEvidenceRepository struct {
	mu       sync.Mutex
	packages map[core.CaptureID]*evidence.EvidencePackage
}

// NewMemEvidenceRepository creates an empty repository.
func NewMemEvidenceRepository() *MemEvidenceRepository {
	return &MemEvidenceRepository{packages: make(map[core.CaptureID]*evidence.EvidencePackage)}
}

func (r *MemEvidenceRepository) SaveEvidence(_ context.Context, pkg *evidence.EvidencePackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[pkg.CaptureID] = pkg
	return nil
}

func (r *MemEvidenceRepository) GetEvidence(_ context.Context, captureID core.CaptureID) (*evidence.EvidencePackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pkg, ok := r.packages[captureID]
	if !ok {
		return nil, core.ErrEvidenceNotFound
	}
	return pkg, nil
}

func (r *MemEvidenceRepository) ListEvidenceBySession(_ context.Context, sessionID core.SessionID, limit, offset int) ([]*evidence.EvidencePackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*evidence.EvidencePackage
	for _, pkg := range r.packages {
		if pkg.SessionID == sessionID {
			out = append(out, pkg)
		}
	}
	return out, nil
}

// StubDetector returns a fixed result for one method.
type StubDetector struct {
	MethodName evidence.DetectionMethod
	Result     evidence.MethodResult
	Err        error
	// Block makes Detect wait for context cancellation, simulating a hung
	// detector.
	Block bool
}

func (d *StubDetector) Method() evidence.DetectionMethod { return d.MethodName }

func (d *StubDetector) Detect(ctx context.Context, _ ports.CaptureInput) (evidence.MethodResult, error) {
	if d.Block {
		<-ctx.Done()
		return evidence.MethodResult{}, ctx.Err()
	}
	return d.Result, d.Err
}

// StubAttestation returns a fixed attestation.
type StubAttestation struct {
	Value evidence.Attestation
}

func (a *StubAttestation) Attestation(_ context.Context, _ core.CaptureID) (evidence.Attestation, error) {
	return a.Value, nil
}
