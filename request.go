package desigo

import (
	"context"
	"errors"

	"github.com/soniakeys/unit"

	"github.com/hupe1980/desigo/healpix"
)

// Tile starts a request for the products of one tile observation.
//
// The request is immutable - each method returns a new request with the
// updated selection.
//
// Example:
//
//	petals, err := archive.Tile(80605, 20210205).
//	    Petals(0, 1, 2).
//	    Read(ctx)
func (a *Archive) Tile(tile, night int) TileRequest {
	return TileRequest{archive: a, tile: tile, night: night}
}

// TileRequest is an immutable fluent selector for tile-based products.
// Each method returns a new request with the updated selection.
type TileRequest struct {
	archive *Archive
	tile    int
	night   int
	petals  []int
	bands   []string
	targets []int64
}

// Petal selects a single petal.
func (r TileRequest) Petal(p int) TileRequest {
	r.petals = []int{p}
	return r
}

// Petals selects the given petals, keeping their order.
func (r TileRequest) Petals(ps ...int) TileRequest {
	r.petals = append([]int(nil), ps...)
	return r
}

// AllPetals selects the full focal plane, petals 0 through 9.
func (r TileRequest) AllPetals() TileRequest {
	ps := make([]int, NumPetals)
	for i := range ps {
		ps[i] = i
	}
	r.petals = ps
	return r
}

// Bands restricts the spectra read to the named camera bands.
func (r TileRequest) Bands(names ...string) TileRequest {
	r.bands = append([]string(nil), names...)
	return r
}

// Targets restricts the spectra read to the rows of the given targets.
// Redshift catalogs are returned whole.
func (r TileRequest) Targets(ids ...int64) TileRequest {
	r.targets = append([]int64(nil), ids...)
	return r
}

// Read fetches coadded spectra and redshift catalogs for the selected
// petals concurrently.
func (r TileRequest) Read(ctx context.Context) ([]TilePetal, error) {
	if len(r.petals) == 0 {
		return nil, errors.New("desigo: no petals selected")
	}
	petals, err := r.archive.ReadTilePetals(ctx, r.tile, r.night, r.petals)
	if err != nil {
		return nil, err
	}
	for i := range petals {
		petals[i].Spectra, err = narrowSpectra(petals[i].Spectra, r.bands, r.targets)
		if err != nil {
			return nil, err
		}
	}
	return petals, nil
}

// Spectra reads only the coadd of a single selected petal.
func (r TileRequest) Spectra(ctx context.Context) (*Spectra, error) {
	if len(r.petals) != 1 {
		return nil, errors.New("desigo: Spectra needs exactly one petal")
	}
	s, err := r.archive.ReadTileSpectra(ctx, r.tile, r.night, r.petals[0])
	if err != nil {
		return nil, err
	}
	return narrowSpectra(s, r.bands, r.targets)
}

// Zbest reads only the redshift catalog of a single selected petal.
func (r TileRequest) Zbest(ctx context.Context) (*Zbest, error) {
	if len(r.petals) != 1 {
		return nil, errors.New("desigo: Zbest needs exactly one petal")
	}
	return r.archive.ReadTileZbest(ctx, r.tile, r.night, r.petals[0])
}

// Healpix starts a request for healpix-grouped products at the given
// nside.
//
// The request is immutable - each method returns a new request with the
// updated selection.
//
// Example:
//
//	pixels, err := archive.Healpix(64).
//	    At(unit.RAFromDeg(36.7), unit.AngleFromDeg(-4.5)).
//	    Read(ctx)
func (a *Archive) Healpix(nside int) HealpixRequest {
	return HealpixRequest{archive: a, nside: nside}
}

// HealpixRequest is an immutable fluent selector for healpix-grouped
// products. Each method returns a new request with the updated selection.
type HealpixRequest struct {
	archive *Archive
	nside   int
	pixels  []int
	bands   []string
	targets []int64
	err     error
}

// Pixel adds a single healpix pixel to the selection.
func (r HealpixRequest) Pixel(p int) HealpixRequest {
	r.pixels = appendPixel(r.pixels, p)
	return r
}

// Pixels adds the given healpix pixels, keeping their order and
// skipping duplicates.
func (r HealpixRequest) Pixels(ps ...int) HealpixRequest {
	for _, p := range ps {
		r.pixels = appendPixel(r.pixels, p)
	}
	return r
}

// At adds the pixel containing the given sky position. Products are
// grouped by nested pixel number.
func (r HealpixRequest) At(ra unit.RA, dec unit.Angle) HealpixRequest {
	if r.err != nil {
		return r
	}
	p, err := healpix.New(r.nside)
	if err != nil {
		r.err = err
		return r
	}
	r.pixels = appendPixel(r.pixels, int(p.RADecToNested(ra, dec)))
	return r
}

// Bands restricts the spectra read to the named camera bands.
func (r HealpixRequest) Bands(names ...string) HealpixRequest {
	r.bands = append([]string(nil), names...)
	return r
}

// Targets restricts the spectra read to the rows of the given targets.
// Redshift catalogs are returned whole.
func (r HealpixRequest) Targets(ids ...int64) HealpixRequest {
	r.targets = append([]int64(nil), ids...)
	return r
}

// Read fetches grouped spectra and redshift catalogs for the selected
// pixels concurrently.
func (r HealpixRequest) Read(ctx context.Context) ([]HealpixPixel, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.pixels) == 0 {
		return nil, errors.New("desigo: no pixels selected")
	}
	pixels, err := r.archive.ReadHealpixPixels(ctx, r.nside, r.pixels)
	if err != nil {
		return nil, err
	}
	for i := range pixels {
		pixels[i].Spectra, err = narrowSpectra(pixels[i].Spectra, r.bands, r.targets)
		if err != nil {
			return nil, err
		}
	}
	return pixels, nil
}

// Spectra reads only the grouped spectra of a single selected pixel.
func (r HealpixRequest) Spectra(ctx context.Context) (*Spectra, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.pixels) != 1 {
		return nil, errors.New("desigo: Spectra needs exactly one pixel")
	}
	s, err := r.archive.ReadHealpixSpectra(ctx, r.nside, r.pixels[0])
	if err != nil {
		return nil, err
	}
	return narrowSpectra(s, r.bands, r.targets)
}

// Zbest reads only the redshift catalog of a single selected pixel.
func (r HealpixRequest) Zbest(ctx context.Context) (*Zbest, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.pixels) != 1 {
		return nil, errors.New("desigo: Zbest needs exactly one pixel")
	}
	return r.archive.ReadHealpixZbest(ctx, r.nside, r.pixels[0])
}

func appendPixel(pixels []int, p int) []int {
	for _, have := range pixels {
		if have == p {
			return pixels
		}
	}
	out := make([]int, len(pixels), len(pixels)+1)
	copy(out, pixels)
	return append(out, p)
}

func narrowSpectra(s *Spectra, bands []string, targets []int64) (*Spectra, error) {
	if len(bands) > 0 {
		var err error
		s, err = s.SelectBands(bands...)
		if err != nil {
			return nil, err
		}
	}
	if len(targets) > 0 {
		s = s.SelectTargets(targets...)
	}
	return s, nil
}
