package errors

import (
	"math"
)

// CheckFinite scans a prediction vector for NaN or Inf entries and returns
// a PredictionError pinpointing the first offending observation. The
// variable and direction identify the perturbation that produced the vector.
func CheckFinite(variable, direction string, predictions []float64) error {
	for i, v := range predictions {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewPredictionError(variable, i, direction,
				Newf("non-finite prediction %v", v))
		}
	}
	return nil
}

// CheckFiniteScalar checks a single value, returning a ValueError when it
// is NaN or Inf.
func CheckFiniteScalar(op string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewValueError(op, "non-finite value")
	}
	return nil
}

// CheckFiniteMatrix checks all entries of a matrix for NaN or Inf.
func CheckFiniteMatrix(op string, m interface{ At(int, int) float64 }, rows, cols int) error {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewValueError(op, "non-finite matrix entry")
			}
		}
	}
	return nil
}
