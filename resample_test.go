package desigo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResample(t *testing.T) {
	t.Run("IdentityOnSameGrid", func(t *testing.T) {
		xp := []float64{3600, 3600.8, 3601.6, 3602.4}
		fp := []float64{1.0, 2.5, -0.5, 4.0}

		got, err := Resample(xp, xp, fp)
		require.NoError(t, err)
		require.Len(t, got, len(fp))

		for i := range fp {
			assert.InDelta(t, fp[i], got[i], 1e-12)
		}
	})

	t.Run("LinearBetweenKnots", func(t *testing.T) {
		xp := []float64{0, 1, 2}
		fp := []float64{0, 10, 30}

		got, err := Resample([]float64{0.5, 1.5}, xp, fp)
		require.NoError(t, err)

		assert.InDelta(t, 5.0, got[0], 1e-12)
		assert.InDelta(t, 20.0, got[1], 1e-12)
	})

	t.Run("ClampsOutsideRange", func(t *testing.T) {
		xp := []float64{10, 20}
		fp := []float64{1, 2}

		got, err := Resample([]float64{-100, 9.999, 20.001, 1e6}, xp, fp)
		require.NoError(t, err)

		assert.Equal(t, []float64{1, 1, 2, 2}, got)
	})

	t.Run("ExactKnotValues", func(t *testing.T) {
		xp := []float64{1, 2, 4, 8}
		fp := []float64{-1, 7, 3, 5}

		got, err := Resample([]float64{2, 4}, xp, fp)
		require.NoError(t, err)

		assert.Equal(t, []float64{7, 3}, got)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := Resample([]float64{1}, []float64{1, 2}, []float64{1})
		require.Error(t, err)

		var ge *GridError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, 2, ge.Want)
		assert.Equal(t, 1, ge.Got)
	})

	t.Run("EmptySourceGrid", func(t *testing.T) {
		_, err := Resample([]float64{1}, nil, nil)
		require.Error(t, err)
	})
}
