package desigo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/desigo/templates"
	"github.com/hupe1980/desigo/testutil"
)

func testTemplate() *templates.Template {
	wave := testutil.WaveGrid(1000, 1090, 10)
	basis := make([][]float64, 2)
	basis[0] = make([]float64, len(wave))
	basis[1] = make([]float64, len(wave))
	for i := range wave {
		basis[0][i] = 1
		basis[1][i] = float64(i) / 10
	}
	return &templates.Template{Type: "GALAXY", Wave: wave, Basis: basis}
}

func gaussianResolution(t *testing.T, nwave int) *Resolution {
	t.Helper()
	cube := testutil.GaussianResolutionCube(1, 5, nwave, 1.2)
	rows := make([][]float64, len(cube[0]))
	for d, row := range cube[0] {
		rows[d] = make([]float64, len(row))
		for w, v := range row {
			rows[d][w] = float64(v)
		}
	}
	R, err := NewResolution(rows)
	require.NoError(t, err)
	return R
}

func TestRedshiftGrid(t *testing.T) {
	wave := []float64{1000, 2000, 3000}

	t.Run("Stretch", func(t *testing.T) {
		got := RedshiftGrid(wave, 0.5)
		assert.Equal(t, []float64{1500, 3000, 4500}, got)
	})

	t.Run("ZeroIsIdentity", func(t *testing.T) {
		got := RedshiftGrid(wave, 0)
		assert.Equal(t, wave, got, "z=0 must reproduce the rest grid exactly")
	})

	t.Run("Monotonic", func(t *testing.T) {
		got := RedshiftGrid(wave, 2.3)
		for i := 1; i < len(got); i++ {
			assert.Greater(t, got[i], got[i-1])
		}
	})
}

func TestModelFlux(t *testing.T) {
	tpl := testTemplate()

	t.Run("LinearInCoefficients", func(t *testing.T) {
		// Off-grid instrument wavelengths and a smoothing resolution, so
		// linearity is tested through the whole pipeline.
		wave := testutil.WaveGrid(1205, 1280, 5)
		R := gaussianResolution(t, len(wave))

		coeff := []float64{1.5, -0.25}
		base, err := ModelFlux(tpl, coeff, 0.2, wave, R)
		require.NoError(t, err)

		const k = 3.0
		scaled := []float64{k * coeff[0], k * coeff[1]}
		got, err := ModelFlux(tpl, scaled, 0.2, wave, R)
		require.NoError(t, err)

		require.Len(t, got, len(wave))
		for w := range got {
			assert.InDelta(t, k*base[w], got[w], 1e-9)
		}
	})

	t.Run("IdentityPipelineIsNoop", func(t *testing.T) {
		// Same grid, z=0, identity resolution: the model must come back
		// as the plain basis sum.
		R := IdentityResolution(tpl.NWave(), 3)

		coeff := []float64{2, 1}
		want, err := tpl.Eval(coeff)
		require.NoError(t, err)

		got, err := ModelFlux(tpl, coeff, 0, tpl.Wave, R)
		require.NoError(t, err)

		require.Len(t, got, len(want))
		for w := range want {
			assert.InDelta(t, want[w], got[w], 1e-12)
		}
	})

	t.Run("ExcessCoefficients", func(t *testing.T) {
		wave := testutil.WaveGrid(1205, 1280, 5)
		R := gaussianResolution(t, len(wave))

		_, err := ModelFlux(tpl, []float64{1, 2, 3}, 0.2, wave, R)
		var coeffErr *templates.CoeffError
		assert.ErrorAs(t, err, &coeffErr)
	})
}

func TestBestModel(t *testing.T) {
	tpl := testTemplate()
	lib := templates.Library{tpl.FullType(): tpl}

	rng := testutil.NewRNG(9)
	targets := []testutil.Target{{TargetID: 7}, {TargetID: 8}}
	bands := []testutil.Band{
		rng.Band("B", testutil.WaveGrid(1100, 1149, 1), len(targets), 5),
		rng.Band("R", testutil.WaveGrid(1150, 1199, 1), len(targets), 5),
	}
	s := openSpectraFixture(t, targets, bands)

	fit := ZbestRow{
		TargetID: 8,
		Z:        0.1,
		Spectype: "GALAXY",
		// Catalog-padded coefficients: only the first two are real.
		Coeff: []float64{1.5, -0.25, 0, 0, 0, 0, 0, 0, 0, 0},
	}

	t.Run("AllBands", func(t *testing.T) {
		models, err := BestModel(lib, s, fit, 1)
		require.NoError(t, err)

		require.Len(t, models, 2)
		require.Contains(t, models, "B")
		require.Contains(t, models, "R")
		assert.Len(t, models["B"], 50)
		assert.Len(t, models["R"], 50)
	})

	t.Run("PaddingClipped", func(t *testing.T) {
		padded, err := BestModel(lib, s, fit, 0)
		require.NoError(t, err)

		clipped := fit
		clipped.Coeff = fit.Coeff[:2]
		bare, err := BestModel(lib, s, clipped, 0)
		require.NoError(t, err)

		assert.Equal(t, bare, padded)
	})

	t.Run("UnknownTemplate", func(t *testing.T) {
		unknown := fit
		unknown.Spectype = "QSO"
		_, err := BestModel(lib, s, unknown, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("RowOutOfRange", func(t *testing.T) {
		_, err := BestModel(lib, s, fit, 2)
		assert.Error(t, err)
	})
}
