// Package detect fans detector adapters out concurrently and joins their
// results into the method set consumed by aggregation and cross-validation.
package detect

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"trustlens/domain/evidence"
	"trustlens/ports"
)

// Config controls detector execution.
type Config struct {
	// MethodTimeout bounds each detector run. A timed-out method becomes
	// status=unavailable, never pass or fail.
	MethodTimeout time.Duration
	// MaxConcurrent bounds how many detectors run at once.
	MaxConcurrent int64
}

// DefaultConfig returns the PRD defaults.
func DefaultConfig() Config {
	return Config{
		MethodTimeout: 5 * time.Second,
		MaxConcurrent: int64(len(evidence.AllMethods)),
	}
}

// Runner executes independent detector adapters in parallel and waits for all
// of them to complete or time out before handing results downstream.
type Runner struct {
	cfg Config
	sem *semaphore.Weighted
}

// NewRunner creates a runner with the given config.
func NewRunner(cfg Config) *Runner {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = int64(len(evidence.AllMethods))
	}
	if cfg.MethodTimeout <= 0 {
		cfg.MethodTimeout = 5 * time.Second
	}
	return &Runner{cfg: cfg, sem: semaphore.NewWeighted(cfg.MaxConcurrent)}
}

// RunAll is the fan-out/fan-in join: every registered detector runs under its
// own timeout, and the map always contains an entry per registered method.
// Timeouts and detector errors degrade to unavailable; the engine never
// retries within this layer.
func (r *Runner) RunAll(ctx context.Context, detectors []ports.Detector, input ports.CaptureInput) map[evidence.DetectionMethod]evidence.MethodResult {
	results := make(map[evidence.DetectionMethod]evidence.MethodResult, len(detectors))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, d := range detectors {
		wg.Add(1)
		go func(d ports.Detector) {
			defer wg.Done()

			method := d.Method()
			result := r.runOne(ctx, d, input)

			mu.Lock()
			results[method] = result
			mu.Unlock()
		}(d)
	}

	wg.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, d ports.Detector, input ports.CaptureInput) evidence.MethodResult {
	method := d.Method()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		log.Printf("[Detect] %s: cancelled before start: %v", method, err)
		return unavailableResult()
	}
	defer r.sem.Release(1)

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.MethodTimeout)
	defer cancel()

	type outcome struct {
		result evidence.MethodResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := d.Detect(runCtx, input)
		done <- outcome{res, err}
	}()

	select {
	case <-runCtx.Done():
		log.Printf("[Detect] %s: timed out after %s, degrading to unavailable", method, r.cfg.MethodTimeout)
		return unavailableResult()
	case out := <-done:
		if out.err != nil {
			log.Printf("[Detect] %s: failed, degrading to unavailable: %v", method, out.err)
			return unavailableResult()
		}
		return Sanitize(method, out.result)
	}
}

// Sanitize enforces the detector contract on untrusted adapter output.
func Sanitize(method evidence.DetectionMethod, result evidence.MethodResult) evidence.MethodResult {
	if !result.Status.Usable() {
		return evidence.MethodResult{Available: false, Score: evidence.MissingScore(), Status: result.Status}
	}
	if result.Score.IsMissing() {
		log.Printf("[Detect] %s: usable status without a score, degrading to unavailable", method)
		return unavailableResult()
	}
	return evidence.MethodResult{
		Available: true,
		Score:     result.Score,
		Status:    result.Status,
	}
}

func unavailableResult() evidence.MethodResult {
	return evidence.MethodResult{
		Available: false,
		Score:     evidence.MissingScore(),
		Status:    evidence.StatusUnavailable,
	}
}
