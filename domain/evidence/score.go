package evidence

import (
	"encoding/json"
	"math"
)

// Score is an explicit two-variant value: a detector either reported a score
// in [0,1] or reported nothing. Consumers are forced to handle absence; there
// is no null-coalescing path.
type Score struct {
	present bool
	value   float64
}

// MissingScore is the absent variant.
func MissingScore() Score {
	return Score{}
}

// NewScore creates a present score. NaN collapses to the missing variant, and
// out-of-range values are clamped to [0,1], since an out-of-range detector
// cannot be trusted blindly.
func NewScore(v float64) Score {
	if math.IsNaN(v) {
		return Score{}
	}
	return Score{present: true, value: clamp01(v)}
}

// IsMissing reports whether no score was reported.
func (s Score) IsMissing() bool {
	return !s.present
}

// Value returns the score value and whether it is present.
func (s Score) Value() (float64, bool) {
	return s.value, s.present
}

// OrZero returns the score value, or 0 when missing.
func (s Score) OrZero() float64 {
	return s.value
}

// InRange reports whether a raw detector value was already inside [0,1].
func InRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// MarshalJSON encodes a missing score as null for external consumers.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.present {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON decodes null as the missing variant.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = NewScore(v)
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp01 clamps v into [0,1]; NaN clamps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp01(v)
}
