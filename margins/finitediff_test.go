package margins

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/pkg/errors"
)

func TestEnumerateTerms(t *testing.T) {
	schema := []dataset.Descriptor{
		{Name: "x1", Kind: dataset.Continuous},
		{Name: "x2", Kind: dataset.Continuous, Step: 1e-5},
		{Name: "b", Kind: dataset.Binary, Levels: []float64{0, 1}},
		{Name: "g", Kind: dataset.Factor, Levels: []float64{1, 2, 3}},
	}

	terms, err := enumerateTerms(schema, 1e-7)
	require.NoError(t, err)
	require.Len(t, terms, 5)

	assert.Equal(t, "x1", terms[0].label)
	assert.Equal(t, 1e-7, terms[0].step)
	assert.Equal(t, 1e-5, terms[1].step, "descriptor step should override the default")

	assert.Equal(t, "b", terms[2].label)
	assert.Equal(t, 1.0, terms[2].level)
	assert.Equal(t, 0.0, terms[2].base)

	assert.Equal(t, "g=2", terms[3].label)
	assert.Equal(t, "g=3", terms[4].label)
	assert.Equal(t, 1.0, terms[3].base, "factor contrasts share the baseline level")
	assert.Equal(t, 1.0, terms[4].base)
}

func TestEnumerateTermsRejectsBadSchema(t *testing.T) {
	_, err := enumerateTerms(nil, 1e-7)
	assert.Error(t, err)

	_, err = enumerateTerms([]dataset.Descriptor{{Name: "b", Kind: dataset.Binary, Levels: []float64{0}}}, 1e-7)
	assert.Error(t, err)
}

func TestLinearDerivativeExactForAnyStep(t *testing.T) {
	// prediction = 2 + 3·x: the central difference must recover 3 for
	// every observation, independent of step size.
	ds := mustDataset(t, []string{"x"}, map[string][]float64{
		"x": {-50, -1, 0, 0.001, 1, 250},
	})
	adapter := linearAdapter([]float64{2, 3}, nil, "x")

	for _, step := range []float64{1e-3, 1e-5, 1e-7, 1e-9} {
		terms, err := enumerateTerms(adapter.Schema(), step)
		require.NoError(t, err)

		effects, err := unitEffects(adapter, ds, adapter.Coefficients(), terms[0])
		require.NoError(t, err)

		for i, d := range effects {
			assert.InEpsilonf(t, 3.0, d, 1e-6, "step %g observation %d", step, i)
		}
	}
}

func TestCentralDifferenceQuadraticConvergence(t *testing.T) {
	// prediction = x³ (third derivative nonzero, so the O(h²) truncation
	// term is visible): halving the step must quarter the error against
	// the analytic derivative 3x².
	ds := mustDataset(t, []string{"x"}, map[string][]float64{
		"x": {1.3, 1.7, 2.1, 2.9},
	})
	adapter := &funcAdapter{
		predict: func(d *dataset.Dataset, coef []float64) ([]float64, error) {
			col, err := d.Column("x")
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(col))
			for i, x := range col {
				out[i] = x * x * x
			}
			return out, nil
		},
		coef:   []float64{1},
		schema: []dataset.Descriptor{{Name: "x", Kind: dataset.Continuous}},
	}

	errorAt := func(step float64) float64 {
		terms, err := enumerateTerms(adapter.Schema(), step)
		require.NoError(t, err)
		effects, err := unitEffects(adapter, ds, adapter.coef, terms[0])
		require.NoError(t, err)

		col, _ := ds.Column("x")
		var maxErr float64
		for i, d := range effects {
			maxErr = math.Max(maxErr, math.Abs(d-3*col[i]*col[i]))
		}
		return maxErr
	}

	errH := errorAt(1e-2)
	errHalf := errorAt(5e-3)

	require.Greater(t, errH, 0.0)
	ratio := errH / errHalf
	assert.InDelta(t, 4.0, ratio, 0.5, "error should shrink quadratically in h")
}

func TestDiscreteContrastConstant(t *testing.T) {
	// prediction = 5 at level 0 and 8 at level 1, regardless of anything
	// else: the contrast is 3.0 for every observation.
	ds := mustDataset(t, []string{"b", "z"}, map[string][]float64{
		"b": {0, 1, 0, 1, 1},
		"z": {9, 8, 7, 6, 5},
	})
	adapter := &funcAdapter{
		predict: func(d *dataset.Dataset, coef []float64) ([]float64, error) {
			col, err := d.Column("b")
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(col))
			for i, b := range col {
				if b == 1 {
					out[i] = 8.0
				} else {
					out[i] = 5.0
				}
			}
			return out, nil
		},
		coef:   []float64{1},
		schema: []dataset.Descriptor{{Name: "b", Kind: dataset.Binary, Levels: []float64{0, 1}}},
	}

	terms, err := enumerateTerms(adapter.Schema(), 1e-7)
	require.NoError(t, err)

	effects, err := unitEffects(adapter, ds, adapter.coef, terms[0])
	require.NoError(t, err)
	for i, d := range effects {
		assert.Equalf(t, 3.0, d, "observation %d", i)
	}
}

func TestDiscreteContrastPermutationInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 64
	b := make([]float64, n)
	z := make([]float64, n)
	for i := range b {
		if rng.Float64() < 0.5 {
			b[i] = 1
		}
		z[i] = rng.NormFloat64()
	}

	adapter := &funcAdapter{
		// Contrast depends on z, so per-row effects differ.
		predict: func(d *dataset.Dataset, coef []float64) ([]float64, error) {
			cb, err := d.Column("b")
			if err != nil {
				return nil, err
			}
			cz, err := d.Column("z")
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(cb))
			for i := range out {
				out[i] = cb[i] * (2 + cz[i])
			}
			return out, nil
		},
		coef:   []float64{1},
		schema: []dataset.Descriptor{{Name: "b", Kind: dataset.Binary, Levels: []float64{0, 1}}},
	}
	terms, err := enumerateTerms(adapter.Schema(), 1e-7)
	require.NoError(t, err)

	meanOf := func(order []int) float64 {
		pb := make([]float64, n)
		pz := make([]float64, n)
		for j, i := range order {
			pb[j] = b[i]
			pz[j] = z[i]
		}
		ds := mustDataset(t, []string{"b", "z"}, map[string][]float64{"b": pb, "z": pz})
		effects, err := unitEffects(adapter, ds, adapter.coef, terms[0])
		require.NoError(t, err)
		var sum float64
		for _, e := range effects {
			sum += e
		}
		return sum / float64(len(effects))
	}

	identity := make([]int, n)
	shuffled := make([]int, n)
	for i := range identity {
		identity[i] = i
		shuffled[i] = i
	}
	rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.InDelta(t, meanOf(identity), meanOf(shuffled), 1e-12)
}

func TestPredictionFailureAnnotated(t *testing.T) {
	ds := mustDataset(t, []string{"x"}, map[string][]float64{"x": {1, 2, 3}})
	adapter := &funcAdapter{
		// NaN only when x exceeds its observed value, so only the plus
		// perturbation of observation 2 trips it.
		predict: func(d *dataset.Dataset, coef []float64) ([]float64, error) {
			col, err := d.Column("x")
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(col))
			for i, x := range col {
				if x > 3 {
					out[i] = math.NaN()
				} else {
					out[i] = x
				}
			}
			return out, nil
		},
		coef:   []float64{1},
		schema: []dataset.Descriptor{{Name: "x", Kind: dataset.Continuous}},
	}

	terms, err := enumerateTerms(adapter.Schema(), 1e-7)
	require.NoError(t, err)

	_, err = unitEffects(adapter, ds, adapter.coef, terms[0])
	require.Error(t, err)

	var predErr *errors.PredictionError
	require.True(t, errors.As(err, &predErr))
	assert.Equal(t, "x", predErr.Variable)
	assert.Equal(t, 2, predErr.Observation)
	assert.Equal(t, "plus", predErr.Direction)
}

func TestPanickingAdapterRecovered(t *testing.T) {
	ds := mustDataset(t, []string{"x"}, map[string][]float64{"x": {1, 2}})
	adapter := &funcAdapter{
		predict: func(d *dataset.Dataset, coef []float64) ([]float64, error) {
			panic("adapter bug")
		},
		coef:   []float64{1},
		schema: []dataset.Descriptor{{Name: "x", Kind: dataset.Continuous}},
	}

	terms, err := enumerateTerms(adapter.Schema(), 1e-7)
	require.NoError(t, err)

	_, err = unitEffects(adapter, ds, adapter.coef, terms[0])
	require.Error(t, err)

	var predErr *errors.PredictionError
	require.True(t, errors.As(err, &predErr))
	var panicErr *errors.PanicError
	assert.True(t, errors.As(err, &panicErr))
}

func TestEffectMatrixShape(t *testing.T) {
	ds := mustDataset(t, []string{"x1", "x2"}, map[string][]float64{
		"x1": {1, 2, 3, 4, 5},
		"x2": {5, 4, 3, 2, 1},
	})
	adapter := linearAdapter([]float64{1, 2, -3}, nil, "x1", "x2")

	terms, err := enumerateTerms(adapter.Schema(), 1e-7)
	require.NoError(t, err)

	m, err := effectMatrix(adapter, ds, adapter.Coefficients(), terms, 1)
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 2, cols)
	for i := 0; i < rows; i++ {
		assert.InEpsilon(t, 2.0, m.At(i, 0), 1e-6)
		assert.InEpsilon(t, -3.0, m.At(i, 1), 1e-6)
	}
}
