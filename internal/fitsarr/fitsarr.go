package fitsarr

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"
)

// FindHDU locates an HDU by EXTNAME. Comparison ignores case and
// surrounding blanks, which header-written names sometimes carry.
func FindHDU(f *fitsio.File, name string) (fitsio.HDU, bool) {
	for _, hdu := range f.HDUs() {
		if strings.EqualFold(strings.TrimSpace(hdu.Name()), name) {
			return hdu, true
		}
	}
	return nil, false
}

// FindImage locates an image HDU by EXTNAME.
func FindImage(f *fitsio.File, name string) (fitsio.Image, bool) {
	hdu, ok := FindHDU(f, name)
	if !ok {
		return nil, false
	}
	img, ok := hdu.(fitsio.Image)
	return img, ok
}

// FindTable locates a binary table HDU by EXTNAME.
func FindTable(f *fitsio.File, name string) (*fitsio.Table, bool) {
	hdu, ok := FindHDU(f, name)
	if !ok {
		return nil, false
	}
	tbl, ok := hdu.(*fitsio.Table)
	return tbl, ok
}

// Dims returns the axis lengths slowest-first, the reverse of the
// header's NAXIS order. A [nspec][nwave] flux HDU yields [nspec, nwave].
func Dims(hdu fitsio.HDU) []int {
	axes := hdu.Header().Axes()
	dims := make([]int, len(axes))
	for i, n := range axes {
		dims[len(axes)-1-i] = n
	}
	return dims
}

// NumElems returns the total element count of an image HDU.
func NumElems(hdu fitsio.HDU) int {
	n := 1
	for _, axis := range hdu.Header().Axes() {
		n *= axis
	}
	return n
}

// Float64s reads an image HDU of any integer or floating bitpix into a
// flat float64 slice, fastest axis contiguous.
func Float64s(img fitsio.Image) ([]float64, error) {
	switch bp := img.Header().Bitpix(); bp {
	case -64:
		v := make([]float64, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		return v, nil
	case -32:
		v := make([]float32, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case 16:
		v := make([]int16, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case 32:
		v := make([]int32, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case 64:
		v := make([]int64, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("fitsarr: unsupported bitpix %d in %q", bp, img.Name())
	}
}

// Float32s reads a floating image HDU into a flat float32 slice.
func Float32s(img fitsio.Image) ([]float32, error) {
	switch bp := img.Header().Bitpix(); bp {
	case -32:
		v := make([]float32, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		return v, nil
	case -64:
		v := make([]float64, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("fitsarr: bitpix %d in %q does not hold floats", bp, img.Name())
	}
}

// Int32s reads an integer image HDU into a flat int32 slice. Mask HDUs
// are the usual caller.
func Int32s(img fitsio.Image) ([]int32, error) {
	switch bp := img.Header().Bitpix(); bp {
	case 16:
		v := make([]int16, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		out := make([]int32, len(v))
		for i, x := range v {
			out[i] = int32(x)
		}
		return out, nil
	case 32:
		v := make([]int32, NumElems(img))
		if err := img.Read(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("fitsarr: bitpix %d in %q does not hold int32", bp, img.Name())
	}
}

// Reshape2 views flat as rows slices of length cols, sharing backing
// memory.
func Reshape2[T any](flat []T, rows, cols int) ([][]T, error) {
	if rows*cols != len(flat) {
		return nil, fmt.Errorf("fitsarr: cannot reshape %d elements to %dx%d", len(flat), rows, cols)
	}
	out := make([][]T, rows)
	for r := range out {
		out[r] = flat[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return out, nil
}

// Reshape3 views flat as an [n][rows][cols] cube, sharing backing
// memory.
func Reshape3[T any](flat []T, n, rows, cols int) ([][][]T, error) {
	if n*rows*cols != len(flat) {
		return nil, fmt.Errorf("fitsarr: cannot reshape %d elements to %dx%dx%d", len(flat), n, rows, cols)
	}
	out := make([][][]T, n)
	for i := range out {
		plane, err := Reshape2(flat[i*rows*cols:(i+1)*rows*cols], rows, cols)
		if err != nil {
			return nil, err
		}
		out[i] = plane
	}
	return out, nil
}

// HeaderFloat reads a numeric header card, accepting the integer and
// float encodings FITS writers use interchangeably.
func HeaderFloat(hdu fitsio.HDU, key string) (float64, bool) {
	card := hdu.Header().Get(key)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// HeaderInt reads an integer header card.
func HeaderInt(hdu fitsio.HDU, key string) (int, bool) {
	card := hdu.Header().Get(key)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// HeaderString reads a string header card, trimmed of the padding FITS
// fixed-format values carry.
func HeaderString(hdu fitsio.HDU, key string) (string, bool) {
	card := hdu.Header().Get(key)
	if card == nil {
		return "", false
	}
	s, ok := card.Value.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}
