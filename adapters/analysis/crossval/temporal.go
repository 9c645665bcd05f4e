package crossval

import (
	"github.com/montanaflynn/stats"

	"trustlens/domain/evidence"
)

// FrameWindow is one sampled window of per-method scores from a video
// capture. Windows arrive in recording order.
type FrameWindow struct {
	FrameIndex int
	Scores     map[evidence.DetectionMethod]float64
}

// analyzeTemporal computes per-method stability across sampled windows and
// flags sudden jumps and oscillations.
func (v *Validator) analyzeTemporal(frames []FrameWindow, weights map[evidence.DetectionMethod]float64) evidence.TemporalConsistency {
	tc := evidence.TemporalConsistency{
		FrameCount:      len(frames),
		StabilityScores: make(map[evidence.DetectionMethod]float64),
	}

	if len(frames) < 2 {
		// A single window has no deltas; treat it as perfectly stable.
		for _, m := range evidence.AllMethods {
			if _, ok := frameScore(frames, 0, m); ok {
				tc.StabilityScores[m] = 1.0
			}
		}
		tc.OverallStability = 1.0
		return tc
	}

	for _, m := range evidence.AllMethods {
		deltas, indices := methodDeltas(frames, m)
		if len(deltas) == 0 {
			continue
		}

		absDeltas := make([]float64, len(deltas))
		for i, d := range deltas {
			absDeltas[i] = abs(d)
		}
		meanAbs, err := stats.Mean(absDeltas)
		if err != nil {
			continue
		}
		tc.StabilityScores[m] = evidence.Clamp01(1 - meanAbs)

		// Sudden jumps: a single-window delta beyond the threshold.
		for i, d := range deltas {
			if abs(d) > v.cfg.JumpThreshold {
				tc.Anomalies = append(tc.Anomalies, evidence.TemporalAnomaly{
					FrameIndex:  indices[i],
					Method:      m,
					DeltaScore:  d,
					AnomalyType: evidence.TemporalSuddenJump,
				})
			}
		}

		tc.Anomalies = append(tc.Anomalies, v.findOscillations(deltas, indices, m)...)
	}

	// Overall stability: weighted mean over methods present in the windows,
	// using the same redistributed weights as aggregation.
	var weighted, totalWeight float64
	for m, s := range tc.StabilityScores {
		w, ok := weights[m]
		if !ok {
			w = m.FixedWeight()
		}
		weighted += w * s
		totalWeight += w
	}
	if totalWeight > 0 {
		tc.OverallStability = evidence.Clamp01(weighted / totalWeight)
	}

	return tc
}

// findOscillations flags runs where the delta sign flips across at least
// OscillationMinRuns consecutive windows. Tiny deltas below the noise floor
// do not count as flips.
func (v *Validator) findOscillations(deltas []float64, indices []int, m evidence.DetectionMethod) []evidence.TemporalAnomaly {
	var out []evidence.TemporalAnomaly

	run := 1
	for i := 1; i < len(deltas); i++ {
		prev, curr := deltas[i-1], deltas[i]
		flipped := abs(prev) >= v.cfg.OscillationMinDelta &&
			abs(curr) >= v.cfg.OscillationMinDelta &&
			((prev > 0 && curr < 0) || (prev < 0 && curr > 0))
		if flipped {
			run++
		} else {
			run = 1
		}
		if run == v.cfg.OscillationMinRuns {
			out = append(out, evidence.TemporalAnomaly{
				FrameIndex:  indices[i],
				Method:      m,
				DeltaScore:  curr,
				AnomalyType: evidence.TemporalOscillation,
			})
		}
	}
	return out
}

// methodDeltas returns consecutive-window score deltas for one method and the
// frame index where each delta landed. Windows missing the method are skipped.
func methodDeltas(frames []FrameWindow, m evidence.DetectionMethod) ([]float64, []int) {
	var deltas []float64
	var indices []int
	var prev float64
	havePrev := false

	for i := range frames {
		score, ok := frameScore(frames, i, m)
		if !ok {
			continue
		}
		if havePrev {
			deltas = append(deltas, score-prev)
			indices = append(indices, frames[i].FrameIndex)
		}
		prev = score
		havePrev = true
	}
	return deltas, indices
}

func frameScore(frames []FrameWindow, i int, m evidence.DetectionMethod) (float64, bool) {
	if i >= len(frames) || frames[i].Scores == nil {
		return 0, false
	}
	s, ok := frames[i].Scores[m]
	return s, ok
}
