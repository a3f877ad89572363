package testutil

import "fmt"

// Demo describes the synthetic release BuildDemo writes: one tile with
// two petals, plus one healpix pixel whose fibermap re-observes a
// target and carries one row with no redshift fit.
type Demo struct {
	Prod   string
	Tile   int
	Night  int
	Petals []int
	Nside  int
	Pixel  int

	Bands []string
	Wave  map[string][]float64
	NDiag int

	TargetsByPetal map[int][]Target
	FitsByPetal    map[int][]Redshift

	PixelTargets []Target
	PixelFits    []Redshift
}

// BuildDemo writes a small release tree under prod via put, e.g. a
// MemoryStore's Put method, and returns what was written.
func (r *RNG) BuildDemo(put func(name string, data []byte), prod string) (*Demo, error) {
	d := &Demo{
		Prod:   prod,
		Tile:   80605,
		Night:  20210205,
		Petals: []int{0, 1},
		Nside:  64,
		Pixel:  2586,
		Bands:  []string{"B", "R", "Z"},
		Wave: map[string][]float64{
			"B": WaveGrid(3600, 3619, 1),
			"R": WaveGrid(5800, 5819, 1),
			"Z": WaveGrid(7600, 7619, 1),
		},
		NDiag:          5,
		TargetsByPetal: make(map[int][]Target),
		FitsByPetal:    make(map[int][]Redshift),
	}

	fiber := int32(0)
	for _, petal := range d.Petals {
		ids := r.TargetIDs(3)
		targets := make([]Target, len(ids))
		fits := make([]Redshift, len(ids))
		for i, id := range ids {
			targets[i] = Target{
				TargetID:   id,
				RA:         150 + r.Float64(),
				Dec:        2 + r.Float64(),
				DesiTarget: int64(1) << uint(i%3),
				Fiber:      fiber,
				Night:      int32(d.Night),
				TileID:     int32(d.Tile),
				Petal:      int16(petal),
			}
			fiber++
			fits[i] = r.redshiftFor(id, i)
		}
		d.TargetsByPetal[petal] = targets
		d.FitsByPetal[petal] = fits

		coadd, err := SpectraFITS(targets, r.demoBands(d, len(targets)))
		if err != nil {
			return nil, err
		}
		put(fmt.Sprintf("%s/tiles/%d/%d/coadd-%d-%d-%d.fits", prod, d.Tile, d.Night, petal, d.Tile, d.Night), coadd)

		zb, err := ZbestFITS("ZBEST", fits, targets)
		if err != nil {
			return nil, err
		}
		put(fmt.Sprintf("%s/tiles/%d/%d/zbest-%d-%d-%d.fits", prod, d.Tile, d.Night, petal, d.Tile, d.Night), zb)
	}

	// Healpix pixel: rows 0 and 2 are the same target observed twice;
	// the last row has no matching fit.
	ids := r.TargetIDs(4)
	order := []int64{ids[0], ids[1], ids[0], ids[2], ids[3]}
	rows := make([]Target, len(order))
	for i, id := range order {
		rows[i] = Target{
			TargetID:   id,
			RA:         150 + r.Float64(),
			Dec:        2 + r.Float64(),
			DesiTarget: int64(1) << uint(i%3),
			Fiber:      int32(500 + i),
			ExpID:      int32(70000 + i),
			Night:      int32(d.Night),
			TileID:     int32(d.Tile),
			Petal:      int16(i % 10),
		}
	}
	rows[2].RA, rows[2].Dec = rows[0].RA, rows[0].Dec
	d.PixelTargets = rows
	d.PixelFits = []Redshift{
		r.redshiftFor(ids[0], 0),
		r.redshiftFor(ids[1], 1),
		r.redshiftFor(ids[2], 2),
	}

	spectra, err := SpectraFITS(rows, r.demoBands(d, len(rows)))
	if err != nil {
		return nil, err
	}
	put(fmt.Sprintf("%s/spectra-%d/%d/%d/spectra-%d-%d.fits",
		prod, d.Nside, d.Pixel/100, d.Pixel, d.Nside, d.Pixel), spectra)

	zb, err := ZbestFITS("ZBEST", d.PixelFits, rows)
	if err != nil {
		return nil, err
	}
	put(fmt.Sprintf("%s/spectra-%d/%d/%d/zbest-%d-%d.fits",
		prod, d.Nside, d.Pixel/100, d.Pixel, d.Nside, d.Pixel), zb)

	return d, nil
}

func (r *RNG) demoBands(d *Demo, nspec int) []Band {
	bands := make([]Band, 0, len(d.Bands))
	for _, name := range d.Bands {
		bands = append(bands, r.Band(name, d.Wave[name], nspec, d.NDiag))
	}
	return bands
}

func (r *RNG) redshiftFor(id int64, i int) Redshift {
	coeff := make([]float64, 10)
	r.FillUniformRange(coeff, -1, 1)

	types := []string{"GALAXY", "QSO", "STAR"}
	return Redshift{
		TargetID:  id,
		Z:         0.1 + r.Float64(),
		ZErr:      1e-4,
		Chi2:      8000 + 100*r.Float64(),
		DeltaChi2: 25 + 100*r.Float64(),
		Spectype:  types[i%len(types)],
		Coeff:     coeff,
	}
}
