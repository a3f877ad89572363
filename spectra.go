package desigo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/hupe1980/desigo/internal/fitsarr"
)

// BandData holds one optical arm of a spectra product: the shared
// wavelength grid plus per-spectrum flux, inverse variance, mask and
// resolution arrays, all in fibermap row order.
type BandData struct {
	Band       string
	Wave       []float64
	Flux       [][]float32
	Ivar       [][]float32
	Mask       [][]int32
	Resolution []*Resolution
}

// NumSpectra returns the number of spectra in the band.
func (b *BandData) NumSpectra() int { return len(b.Flux) }

// NWave returns the number of wavelength bins.
func (b *BandData) NWave() int { return len(b.Wave) }

// Spectra is a decoded spectra product: the fibermap plus one BandData
// per camera arm ("B", "R", "Z", or a coadded "BRZ").
type Spectra struct {
	Fibermap *Fibermap

	bands map[string]*BandData
}

// NumSpectra returns the number of rows shared by the fibermap and
// every band.
func (s *Spectra) NumSpectra() int { return s.Fibermap.Len() }

// Bands returns the band names present, sorted.
func (s *Spectra) Bands() []string {
	names := make([]string, 0, len(s.bands))
	for name := range s.bands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Band returns the arrays for one band.
func (s *Spectra) Band(name string) (*BandData, error) {
	b, ok := s.bands[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNoSuchBand)
	}
	return b, nil
}

// Select returns a Spectra holding the given rows in the given order.
// Backing arrays are shared with the receiver, not copied.
func (s *Spectra) Select(rows []int) (*Spectra, error) {
	n := s.NumSpectra()
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("row %d out of range [0,%d)", r, n)
		}
	}
	return s.selectRows(rows), nil
}

// SelectTargets returns a Spectra holding the rows whose TARGETID is
// among ids, in file order. A target observed more than once keeps all
// of its rows; ids absent from the fibermap select nothing.
func (s *Spectra) SelectTargets(ids ...int64) *Spectra {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	rows := make([]int, 0, len(ids))
	for i, row := range s.Fibermap.Rows {
		if _, ok := want[row.TargetID]; ok {
			rows = append(rows, i)
		}
	}
	return s.selectRows(rows)
}

// SelectBands returns a Spectra holding only the named bands. Band
// names are case-insensitive; a band not present is an error.
func (s *Spectra) SelectBands(names ...string) (*Spectra, error) {
	out := &Spectra{Fibermap: s.Fibermap, bands: make(map[string]*BandData, len(names))}
	for _, name := range names {
		b, err := s.Band(name)
		if err != nil {
			return nil, err
		}
		out.bands[b.Band] = b
	}
	return out, nil
}

// Stack returns a Spectra holding the receiver's rows followed by the
// rows of other. Both products must carry the same bands on identical
// wavelength grids.
func (s *Spectra) Stack(other *Spectra) (*Spectra, error) {
	if len(other.bands) != len(s.bands) {
		return nil, fmt.Errorf("stack: band sets differ: %v vs %v", s.Bands(), other.Bands())
	}
	for name := range s.bands {
		if _, ok := other.bands[name]; !ok {
			return nil, fmt.Errorf("stack: band sets differ: %v vs %v", s.Bands(), other.Bands())
		}
	}

	fm := &Fibermap{Rows: slices.Concat(s.Fibermap.Rows, other.Fibermap.Rows)}
	out := &Spectra{Fibermap: fm, bands: make(map[string]*BandData, len(s.bands))}
	for name, b := range s.bands {
		ob := other.bands[name]
		if len(ob.Wave) != len(b.Wave) {
			return nil, &GridError{Op: "stack " + name, Want: len(b.Wave), Got: len(ob.Wave)}
		}
		if !slices.Equal(b.Wave, ob.Wave) {
			return nil, fmt.Errorf("stack: band %s wavelength grids differ", name)
		}
		out.bands[name] = &BandData{
			Band:       b.Band,
			Wave:       b.Wave,
			Flux:       slices.Concat(b.Flux, ob.Flux),
			Ivar:       slices.Concat(b.Ivar, ob.Ivar),
			Mask:       slices.Concat(b.Mask, ob.Mask),
			Resolution: slices.Concat(b.Resolution, ob.Resolution),
		}
	}
	return out, nil
}

func (s *Spectra) selectRows(rows []int) *Spectra {
	fm := &Fibermap{Rows: make([]FibermapRow, len(rows))}
	for i, r := range rows {
		fm.Rows[i] = s.Fibermap.Rows[r]
	}

	out := &Spectra{Fibermap: fm, bands: make(map[string]*BandData, len(s.bands))}
	for name, b := range s.bands {
		sel := &BandData{
			Band:       b.Band,
			Wave:       b.Wave,
			Flux:       make([][]float32, len(rows)),
			Ivar:       make([][]float32, len(rows)),
			Mask:       make([][]int32, len(rows)),
			Resolution: make([]*Resolution, len(rows)),
		}
		for i, r := range rows {
			sel.Flux[i] = b.Flux[r]
			sel.Ivar[i] = b.Ivar[r]
			sel.Mask[i] = b.Mask[r]
			sel.Resolution[i] = b.Resolution[r]
		}
		out.bands[name] = sel
	}
	return out
}

// Band extension suffixes of a spectra product.
const (
	extWavelength = "WAVELENGTH"
	extFlux       = "FLUX"
	extIvar       = "IVAR"
	extMask       = "MASK"
	extResolution = "RESOLUTION"
)

var bandExtKinds = []string{extWavelength, extFlux, extIvar, extMask, extResolution}

// splitBandExt splits "B_FLUX" into ("B", "FLUX").
func splitBandExt(name string) (band, kind string, ok bool) {
	for _, k := range bandExtKinds {
		if band, found := strings.CutSuffix(name, "_"+k); found && band != "" {
			return band, k, true
		}
	}
	return "", "", false
}

type bandParts struct {
	wave []float64
	flux [][]float32
	ivar [][]float32
	mask [][]int32
	res  [][][]float32
}

func readSpectra(f *fitsio.File) (*Spectra, error) {
	fm, err := readFibermap(f)
	if err != nil {
		return nil, err
	}

	parts := make(map[string]*bandParts)
	part := func(band string) *bandParts {
		p, ok := parts[band]
		if !ok {
			p = &bandParts{}
			parts[band] = p
		}
		return p
	}

	for _, hdu := range f.HDUs() {
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		band, kind, ok := splitBandExt(strings.TrimSpace(hdu.Name()))
		if !ok {
			continue
		}

		switch kind {
		case extWavelength:
			wave, err := fitsarr.Float64s(img)
			if err != nil {
				return nil, err
			}
			part(band).wave = wave

		case extFlux, extIvar:
			m, err := readMatrix32(img)
			if err != nil {
				return nil, err
			}
			if kind == extFlux {
				part(band).flux = m
			} else {
				part(band).ivar = m
			}

		case extMask:
			flat, err := fitsarr.Int32s(img)
			if err != nil {
				return nil, err
			}
			rows, cols, err := matrixDims(img)
			if err != nil {
				return nil, err
			}
			m, err := fitsarr.Reshape2(flat, rows, cols)
			if err != nil {
				return nil, &ShapeError{HDU: img.Name(), Want: []int{rows, cols}, Got: fitsarr.Dims(img), cause: err}
			}
			part(band).mask = m

		case extResolution:
			cube, err := readCube32(img)
			if err != nil {
				return nil, err
			}
			part(band).res = cube
		}
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("no band extensions: %w", ErrNotFound)
	}

	s := &Spectra{Fibermap: fm, bands: make(map[string]*BandData, len(parts))}
	for band, p := range parts {
		b, err := assembleBand(band, p, fm.Len())
		if err != nil {
			return nil, err
		}
		s.bands[band] = b
	}
	return s, nil
}

func assembleBand(band string, p *bandParts, nspec int) (*BandData, error) {
	switch {
	case p.wave == nil:
		return nil, fmt.Errorf("%s_WAVELENGTH: %w", band, ErrNotFound)
	case p.flux == nil:
		return nil, fmt.Errorf("%s_FLUX: %w", band, ErrNotFound)
	case p.ivar == nil:
		return nil, fmt.Errorf("%s_IVAR: %w", band, ErrNotFound)
	case p.mask == nil:
		return nil, fmt.Errorf("%s_MASK: %w", band, ErrNotFound)
	case p.res == nil:
		return nil, fmt.Errorf("%s_RESOLUTION: %w", band, ErrNotFound)
	}

	nwave := len(p.wave)
	if len(p.flux) != nspec {
		return nil, &ShapeError{HDU: band + "_FLUX", Want: []int{nspec, nwave}, Got: []int{len(p.flux), width32(p.flux)}}
	}
	if width32(p.flux) != nwave {
		return nil, &ShapeError{HDU: band + "_FLUX", Want: []int{nspec, nwave}, Got: []int{len(p.flux), width32(p.flux)}}
	}
	if len(p.ivar) != nspec || width32(p.ivar) != nwave {
		return nil, &ShapeError{HDU: band + "_IVAR", Want: []int{nspec, nwave}, Got: []int{len(p.ivar), width32(p.ivar)}}
	}
	if len(p.mask) != nspec {
		return nil, &ShapeError{HDU: band + "_MASK", Want: []int{nspec, nwave}, Got: []int{len(p.mask)}}
	}
	if len(p.res) != nspec {
		return nil, &ShapeError{HDU: band + "_RESOLUTION", Want: []int{nspec}, Got: []int{len(p.res)}}
	}

	resolutions := make([]*Resolution, nspec)
	for s, plane := range p.res {
		rows := make([][]float64, len(plane))
		for d, row := range plane {
			out := make([]float64, len(row))
			for w, v := range row {
				out[w] = float64(v)
			}
			rows[d] = out
		}
		R, err := NewResolution(rows)
		if err != nil {
			return nil, fmt.Errorf("%s_RESOLUTION spectrum %d: %w", band, s, err)
		}
		if R.NWave != nwave {
			return nil, &ShapeError{HDU: band + "_RESOLUTION", Want: []int{nspec, R.NDiag(), nwave}, Got: []int{nspec, R.NDiag(), R.NWave}}
		}
		resolutions[s] = R
	}

	return &BandData{
		Band:       band,
		Wave:       p.wave,
		Flux:       p.flux,
		Ivar:       p.ivar,
		Mask:       p.mask,
		Resolution: resolutions,
	}, nil
}

func width32(m [][]float32) int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// matrixDims reads a 2-D image shape, accepting a 1-D image as a
// single row.
func matrixDims(img fitsio.Image) (rows, cols int, err error) {
	dims := fitsarr.Dims(img)
	switch len(dims) {
	case 1:
		return 1, dims[0], nil
	case 2:
		return dims[0], dims[1], nil
	default:
		return 0, 0, &ShapeError{HDU: img.Name(), Want: []int{-1, -1}, Got: dims}
	}
}

func readMatrix32(img fitsio.Image) ([][]float32, error) {
	flat, err := fitsarr.Float32s(img)
	if err != nil {
		return nil, err
	}
	rows, cols, err := matrixDims(img)
	if err != nil {
		return nil, err
	}
	m, err := fitsarr.Reshape2(flat, rows, cols)
	if err != nil {
		return nil, &ShapeError{HDU: img.Name(), Want: []int{rows, cols}, Got: fitsarr.Dims(img), cause: err}
	}
	return m, nil
}

func readCube32(img fitsio.Image) ([][][]float32, error) {
	flat, err := fitsarr.Float32s(img)
	if err != nil {
		return nil, err
	}
	dims := fitsarr.Dims(img)
	if len(dims) != 3 {
		return nil, &ShapeError{HDU: img.Name(), Want: []int{-1, -1, -1}, Got: dims}
	}
	cube, err := fitsarr.Reshape3(flat, dims[0], dims[1], dims[2])
	if err != nil {
		return nil, &ShapeError{HDU: img.Name(), Want: dims, Got: []int{len(flat)}, cause: err}
	}
	return cube, nil
}
