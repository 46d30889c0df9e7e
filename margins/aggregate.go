package margins

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// columnMeans reduces a per-observation effect matrix to the AME vector:
// the arithmetic mean of each column. Aggregation is always within a single
// grid point; nothing is averaged across grid points.
func columnMeans(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	means := make([]float64, cols)
	var buf []float64
	for j := 0; j < cols; j++ {
		buf = mat.Col(buf, j, m)
		means[j] = stat.Mean(buf, nil)
	}
	return means
}
