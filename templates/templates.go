package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/desigo/blobstore"
	"github.com/hupe1980/desigo/internal/fitsarr"
)

// ErrNoBasis is returned when a file has no basis vectors extension.
var ErrNoBasis = errors.New("templates: no basis vectors extension")

// CoeffError indicates more fit coefficients than the basis holds.
// Coefficients beyond the basis cannot be applied; this is a caller
// error, not a data condition.
type CoeffError struct {
	NBasis int
	NCoeff int
}

func (e *CoeffError) Error() string {
	return fmt.Sprintf("templates: basis has %d vectors, got %d coefficients", e.NBasis, e.NCoeff)
}

// Template is one spectral template basis over a rest-frame wavelength
// grid.
type Template struct {
	Type    string
	Subtype string
	Version string

	// Wave is the rest-frame wavelength grid, strictly increasing.
	Wave []float64

	// Basis holds one vector per coefficient, each over Wave.
	Basis [][]float64
}

// FullType returns the catalog key "TYPE:::SUBTYPE".
func (t *Template) FullType() string { return FullType(t.Type, t.Subtype) }

// NBasis returns the number of basis vectors.
func (t *Template) NBasis() int { return len(t.Basis) }

// NWave returns the number of rest-frame wavelength samples.
func (t *Template) NWave() int { return len(t.Wave) }

// Eval reconstructs the rest-frame flux as the coefficient-weighted sum
// of basis vectors. Fewer coefficients than basis vectors weight the
// leading vectors; more is a CoeffError.
func (t *Template) Eval(coeff []float64) ([]float64, error) {
	if len(coeff) > t.NBasis() {
		return nil, &CoeffError{NBasis: t.NBasis(), NCoeff: len(coeff)}
	}

	flux := make([]float64, t.NWave())
	for i, c := range coeff {
		if c == 0 {
			continue
		}
		for w, v := range t.Basis[i] {
			flux[w] += c * v
		}
	}
	return flux, nil
}

// FullType builds the catalog key for a spectral type and subtype.
func FullType(spectype, subtype string) string {
	return strings.TrimSpace(spectype) + ":::" + strings.TrimSpace(subtype)
}

// Library holds loaded templates keyed by full type.
type Library map[string]*Template

// For returns the template matching a catalog row's spectral type.
func (l Library) For(spectype, subtype string) (*Template, bool) {
	t, ok := l[FullType(spectype, subtype)]
	return t, ok
}

// Decode reads a template out of a parsed FITS file. The basis lives in
// a BASIS_VECTORS extension, or in the primary HDU of files written by
// older fitter versions.
func Decode(f *fitsio.File) (*Template, error) {
	img, ok := fitsarr.FindImage(f, "BASIS_VECTORS")
	if !ok {
		hdu := f.HDU(0)
		if hdu == nil || len(hdu.Header().Axes()) != 2 {
			return nil, ErrNoBasis
		}
		img, ok = hdu.(fitsio.Image)
		if !ok {
			return nil, ErrNoBasis
		}
	}

	rrtype, ok := fitsarr.HeaderString(img, "RRTYPE")
	if !ok {
		return nil, fmt.Errorf("templates: basis is missing the RRTYPE card")
	}
	subtype, _ := fitsarr.HeaderString(img, "RRSUBTYP")
	version, _ := fitsarr.HeaderString(img, "RRVER")

	crval1, ok := fitsarr.HeaderFloat(img, "CRVAL1")
	if !ok {
		return nil, fmt.Errorf("templates: basis is missing the CRVAL1 card")
	}
	cdelt1, ok := fitsarr.HeaderFloat(img, "CDELT1")
	if !ok {
		return nil, fmt.Errorf("templates: basis is missing the CDELT1 card")
	}
	loglam, _ := fitsarr.HeaderInt(img, "LOGLAM")

	dims := fitsarr.Dims(img)
	if len(dims) != 2 {
		return nil, fmt.Errorf("templates: basis has %d axes, want 2", len(dims))
	}
	nbasis, nwave := dims[0], dims[1]

	flat, err := fitsarr.Float64s(img)
	if err != nil {
		return nil, err
	}
	basis, err := fitsarr.Reshape2(flat, nbasis, nwave)
	if err != nil {
		return nil, err
	}

	wave := make([]float64, nwave)
	for i := range wave {
		wave[i] = crval1 + float64(i)*cdelt1
		if loglam != 0 {
			wave[i] = math.Pow(10, wave[i])
		}
	}

	return &Template{
		Type:    rrtype,
		Subtype: subtype,
		Version: version,
		Wave:    wave,
		Basis:   basis,
	}, nil
}

// Read fetches and decodes one template file from a store.
func Read(ctx context.Context, store blobstore.Store, name string) (*Template, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	var r io.Reader = io.NewSectionReader(blob, 0, blob.Size())
	if m, ok := blob.(blobstore.Mappable); ok {
		if raw, err := m.Bytes(); err == nil {
			r = bytes.NewReader(raw)
		}
	}
	if strings.HasSuffix(name, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", name, err)
	}
	defer f.Close()

	return Decode(f)
}

// ReadDir loads every template file under prefix into a library. Files
// follow the fitter's naming, rrtemplate-<type>.fits.
func ReadDir(ctx context.Context, store blobstore.Store, prefix string) (Library, error) {
	lister, ok := store.(blobstore.Lister)
	if !ok {
		return nil, fmt.Errorf("templates: store cannot list %q", prefix)
	}

	names, err := lister.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	lib := make(Library)
	for _, name := range names {
		base := path.Base(name)
		if !strings.HasPrefix(base, "rrtemplate-") {
			continue
		}
		if !strings.HasSuffix(base, ".fits") && !strings.HasSuffix(base, ".fits.gz") {
			continue
		}

		t, err := Read(ctx, store, name)
		if err != nil {
			return nil, fmt.Errorf("templates: %s: %w", name, err)
		}
		lib[t.FullType()] = t
	}

	if len(lib) == 0 {
		return nil, fmt.Errorf("templates: no rrtemplate files under %q: %w", prefix, blobstore.ErrNotFound)
	}
	return lib, nil
}
