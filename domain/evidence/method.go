package evidence

// DetectionMethod identifies one heterogeneous authenticity detector.
type DetectionMethod string

const (
	MethodLidarDepth DetectionMethod = "lidar_depth"
	MethodMoire      DetectionMethod = "moire"
	MethodTexture    DetectionMethod = "texture"
	MethodArtifacts  DetectionMethod = "artifacts"
)

// AllMethods is the canonical evaluation order. Internal computation iterates
// this slice rather than ranging over maps so results are deterministic.
var AllMethods = []DetectionMethod{
	MethodLidarDepth,
	MethodMoire,
	MethodTexture,
	MethodArtifacts,
}

// Fixed PRD weights before redistribution. The primary hardware signal
// carries 0.55; each software-based supporting signal carries 0.15.
var fixedWeights = map[DetectionMethod]float64{
	MethodLidarDepth: 0.55,
	MethodMoire:      0.15,
	MethodTexture:    0.15,
	MethodArtifacts:  0.15,
}

// FixedWeight returns the PRD weight for a method before redistribution.
func (m DetectionMethod) FixedWeight() float64 {
	return fixedWeights[m]
}

// IsPrimary reports whether the method is the primary (hardware) signal.
func (m DetectionMethod) IsPrimary() bool {
	return m == MethodLidarDepth
}

// IsValid reports whether the method name is known.
func (m DetectionMethod) IsValid() bool {
	_, ok := fixedWeights[m]
	return ok
}

// RedistributeWeights spreads the fixed weight of absent methods
// proportionally across the available ones so the available weights sum to
// 1.0 while each method keeps its relative share. An empty input returns an
// empty map.
func RedistributeWeights(available []DetectionMethod) map[DetectionMethod]float64 {
	weights := make(map[DetectionMethod]float64, len(available))
	total := 0.0
	for _, m := range available {
		total += m.FixedWeight()
	}
	if total <= 0 {
		return weights
	}
	for _, m := range available {
		weights[m] = m.FixedWeight() / total
	}
	return weights
}

// MethodStatus is the declared outcome of one detector run.
type MethodStatus string

const (
	StatusPass        MethodStatus = "pass"
	StatusFail        MethodStatus = "fail"
	StatusUnavailable MethodStatus = "unavailable"
	StatusNotDetected MethodStatus = "not_detected"
	StatusError       MethodStatus = "error"
)

// Usable reports whether a detector run produced a score the engine may
// consume. Unavailability must never be conflated with a negative signal:
// unavailable and errored detectors simply get zero weight.
func (s MethodStatus) Usable() bool {
	return s == StatusPass || s == StatusFail || s == StatusNotDetected
}
