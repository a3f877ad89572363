package fitsarr

import (
	"bytes"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestFile builds an in-memory FITS file with one float32 image
// extension laid out as [nspec=2][nwave=3].
func writeTestFile(t *testing.T) *fitsio.File {
	t.Helper()

	var buf bytes.Buffer
	out, err := fitsio.Create(&buf)
	require.NoError(t, err)

	phdu, err := fitsio.NewPrimaryHDU(nil)
	require.NoError(t, err)
	require.NoError(t, out.Write(phdu))

	img := fitsio.NewImage(-32, []int{3, 2})
	require.NoError(t, img.Header().Append(
		fitsio.Card{Name: "EXTNAME", Value: "B_FLUX"},
		fitsio.Card{Name: "BUNIT", Value: "10**-17 erg/(s cm2 Angstrom)"},
		fitsio.Card{Name: "CRVAL1", Value: 3600.0},
		fitsio.Card{Name: "NSPEC", Value: 2},
	))
	require.NoError(t, img.Write([]float32{1, 2, 3, 4, 5, 6}))
	require.NoError(t, out.Write(img))
	require.NoError(t, out.Close())

	in, err := fitsio.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = in.Close() })
	return in
}

func TestFindImage(t *testing.T) {
	f := writeTestFile(t)

	img, ok := FindImage(f, "B_FLUX")
	require.True(t, ok)
	assert.Equal(t, []int{3, 2}, img.Header().Axes())

	img, ok = FindImage(f, "b_flux")
	require.True(t, ok, "lookup is case-insensitive")
	require.NotNil(t, img)

	_, ok = FindImage(f, "R_FLUX")
	assert.False(t, ok)
}

func TestDims(t *testing.T) {
	f := writeTestFile(t)

	img, ok := FindImage(f, "B_FLUX")
	require.True(t, ok)

	assert.Equal(t, []int{2, 3}, Dims(img), "slowest axis first")
	assert.Equal(t, 6, NumElems(img))
}

func TestFloat64s(t *testing.T) {
	f := writeTestFile(t)

	img, ok := FindImage(f, "B_FLUX")
	require.True(t, ok)

	v, err := Float64s(img)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, v)

	v32, err := Float32s(img)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, v32)

	_, err = Int32s(img)
	assert.Error(t, err, "float image is not an int image")
}

func TestReshape(t *testing.T) {
	flat := []float64{1, 2, 3, 4, 5, 6}

	m, err := Reshape2(flat, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, m)

	// Shares the backing array.
	m[1][2] = 60
	assert.Equal(t, float64(60), flat[5])

	_, err = Reshape2(flat, 2, 2)
	assert.Error(t, err)

	cube, err := Reshape3([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, [][][]float64{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}}, cube)

	_, err = Reshape3(flat, 2, 2, 2)
	assert.Error(t, err)
}

func TestHeaderAccessors(t *testing.T) {
	f := writeTestFile(t)

	img, ok := FindImage(f, "B_FLUX")
	require.True(t, ok)

	crval, ok := HeaderFloat(img, "CRVAL1")
	require.True(t, ok)
	assert.Equal(t, 3600.0, crval)

	nspec, ok := HeaderInt(img, "NSPEC")
	require.True(t, ok)
	assert.Equal(t, 2, nspec)

	unit, ok := HeaderString(img, "BUNIT")
	require.True(t, ok)
	assert.Equal(t, "10**-17 erg/(s cm2 Angstrom)", unit)

	_, ok = HeaderFloat(img, "MISSING")
	assert.False(t, ok)
}
