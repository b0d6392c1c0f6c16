package errors

import "math"

// CheckMatrix scans a rows×cols matrix for NaN or Inf and reports the
// first offending row with up to ten of the bad values.
func CheckMatrix(operation string, m interface{ At(int, int) float64 }, rows, cols int) error {
	for i := 0; i < rows; i++ {
		var bad []float64
		for j := 0; j < cols && len(bad) < 10; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				bad = append(bad, v)
			}
		}
		if len(bad) > 0 {
			return NewNumericalInstabilityError(operation, bad, i)
		}
	}
	return nil
}

// StabilizeExp is math.Exp with the argument clipped to ±700.
func StabilizeExp(x float64) float64 {
	const limit = 700.0
	switch {
	case x > limit:
		return math.Exp(limit)
	case x < -limit:
		return 0
	}
	return math.Exp(x)
}

// LogSumExp computes log(Σ exp(v)) after shifting by the maximum. It is
// -Inf for an empty slice or when every value is -Inf.
func LogSumExp(values []float64) float64 {
	peak := math.Inf(-1)
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if math.IsInf(peak, -1) {
		return peak
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Exp(v - peak)
	}
	return peak + math.Log(sum)
}
