package desigo

import (
	"bytes"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/desigo/testutil"
)

func openZbestFixture(t *testing.T, extname string, fits []testutil.Redshift, targets []testutil.Target) *Zbest {
	t.Helper()

	raw, err := testutil.ZbestFITS(extname, fits, targets)
	require.NoError(t, err)

	f, err := fitsio.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	zb, err := readZbest(f)
	require.NoError(t, err)
	return zb
}

func TestReadZbest(t *testing.T) {
	fits := []testutil.Redshift{
		{TargetID: 7, Z: 0.85, ZErr: 1e-4, Spectype: "GALAXY", Coeff: []float64{1, 2}},
		{TargetID: 5, Z: 1.32, ZWarn: 4, Spectype: "QSO", Coeff: []float64{3}},
		{TargetID: 5, Z: 1.30, Spectype: "QSO", Coeff: []float64{4}},
		{TargetID: 9, Z: 0.02, Spectype: "STAR", Subtype: "M", Coeff: []float64{5}},
	}
	targets := []testutil.Target{{TargetID: 7}, {TargetID: 5}, {TargetID: 9}}
	zb := openZbestFixture(t, "ZBEST", fits, targets)

	t.Run("Rows", func(t *testing.T) {
		assert.Equal(t, 4, zb.Len())
		assert.Equal(t, "ZBEST", zb.Extname)
		assert.Equal(t, []int64{7, 5, 5, 9}, zb.TargetIDs())

		row := zb.Rows[0]
		assert.Equal(t, 0.85, row.Z)
		assert.Equal(t, "GALAXY", row.Spectype, "padding is trimmed")
		assert.Equal(t, "GALAXY:::", row.FullType())

		require.Len(t, row.Coeff, 10)
		assert.Equal(t, []float64{1, 2}, row.Coeff[:2])

		assert.Equal(t, "STAR:::M", zb.Rows[3].FullType())
	})

	t.Run("Best", func(t *testing.T) {
		row, ok := zb.Best(5)
		require.True(t, ok)
		assert.Equal(t, 1.32, row.Z, "first row in file order wins")

		_, ok = zb.Best(404)
		assert.False(t, ok)
	})

	t.Run("Good", func(t *testing.T) {
		assert.Equal(t, []int{0, 2, 3}, zb.Good())
	})

	t.Run("IndexJoin", func(t *testing.T) {
		// Target ids [5,7,5] against fit ids [7,5,5,9].
		got := zb.Index().Join([]int64{5, 7, 5})
		assert.Equal(t, [][]int{{1, 2}, {0}, {1, 2}}, got)
	})
}

func TestReadZbestRedshiftsFallback(t *testing.T) {
	fits := []testutil.Redshift{{TargetID: 1, Z: 0.5, Spectype: "GALAXY"}}
	targets := []testutil.Target{{TargetID: 1}}
	zb := openZbestFixture(t, "REDSHIFTS", fits, targets)

	assert.Equal(t, "REDSHIFTS", zb.Extname)
	assert.Equal(t, []int64{1}, zb.TargetIDs())
}

func TestReadZbestMissingTable(t *testing.T) {
	rng := testutil.NewRNG(8)
	band := rng.Band("B", testutil.WaveGrid(3600, 3604, 1), 1, 3)
	raw, err := testutil.SpectraFITS([]testutil.Target{{TargetID: 1}}, []testutil.Band{band})
	require.NoError(t, err)

	f, err := fitsio.Open(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	_, err = readZbest(f)
	assert.ErrorIs(t, err, ErrNotFound)
}
