package desigo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolution(t *testing.T) {
	t.Run("IdentityIsNoop", func(t *testing.T) {
		R := IdentityResolution(16, 11)

		x := make([]float64, 16)
		for i := range x {
			x[i] = float64(i)*0.5 - 3
		}

		y, err := R.Matvec(x)
		require.NoError(t, err)

		for i := range x {
			assert.InDelta(t, x[i], y[i], 1e-12)
		}
	})

	t.Run("OffsetsDescendFromCenter", func(t *testing.T) {
		R := IdentityResolution(4, 5)
		assert.Equal(t, []int{2, 1, 0, -1, -2}, R.Offsets)
		assert.Equal(t, 5, R.NDiag())
	})

	t.Run("MatvecMatchesDense", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))

		const nwave, ndiag = 25, 9
		data := make([][]float64, ndiag)
		for d := range data {
			data[d] = make([]float64, nwave)
			for j := range data[d] {
				data[d][j] = rng.NormFloat64()
			}
		}

		R, err := NewResolution(data)
		require.NoError(t, err)

		x := make([]float64, nwave)
		for i := range x {
			x[i] = rng.NormFloat64()
		}

		y, err := R.Matvec(x)
		require.NoError(t, err)

		// Reference result from the dense expansion.
		A := R.Dense()
		for r := 0; r < nwave; r++ {
			var want float64
			for c := 0; c < nwave; c++ {
				want += A[r][c] * x[c]
			}
			assert.InDelta(t, want, y[r], 1e-9)
		}
	})

	t.Run("SingleDiagonalScales", func(t *testing.T) {
		R, err := NewResolution([][]float64{{2, 2, 2}})
		require.NoError(t, err)

		y, err := R.Matvec([]float64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 4, 6}, y)
	})

	t.Run("EvenDiagonalCountRejected", func(t *testing.T) {
		_, err := NewResolution([][]float64{{1, 0}, {0, 1}})
		require.ErrorIs(t, err, ErrEvenDiagonals)

		_, err = NewResolution(nil)
		require.ErrorIs(t, err, ErrEvenDiagonals)
	})

	t.Run("RaggedRowsRejected", func(t *testing.T) {
		_, err := NewResolution([][]float64{{1, 2}, {1}, {1, 2}})
		require.Error(t, err)

		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "RESOLUTION", se.HDU)
	})

	t.Run("MatvecLengthMismatch", func(t *testing.T) {
		R := IdentityResolution(4, 3)

		_, err := R.Matvec([]float64{1, 2, 3})
		require.Error(t, err)

		var ge *GridError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, 4, ge.Want)
		assert.Equal(t, 3, ge.Got)
	})
}
