package desigo

import (
	"fmt"

	"github.com/astrogo/fitsio"
	"github.com/soniakeys/unit"

	"github.com/hupe1980/desigo/internal/fitsarr"
)

// FibermapRow is one row of a FIBERMAP table: the identity, sky
// position and targeting metadata of a single spectrum.
type FibermapRow struct {
	TargetID   int64   `fits:"TARGETID"`
	TargetRA   float64 `fits:"TARGET_RA"`
	TargetDec  float64 `fits:"TARGET_DEC"`
	DesiTarget int64   `fits:"DESI_TARGET"`
	BGSTarget  int64   `fits:"BGS_TARGET"`
	MWSTarget  int64   `fits:"MWS_TARGET"`
	Fiber      int32   `fits:"FIBER"`
	ExpID      int32   `fits:"EXPID"`
	Night      int32   `fits:"NIGHT"`
	TileID     int32   `fits:"TILEID"`
	PetalLoc   int16   `fits:"PETAL_LOC"`
}

// RA returns the right ascension as an angle.
func (r FibermapRow) RA() unit.RA { return unit.RAFromDeg(r.TargetRA) }

// Dec returns the declination as an angle.
func (r FibermapRow) Dec() unit.Angle { return unit.AngleFromDeg(r.TargetDec) }

// Fibermap is the target table of a spectra product, one row per
// spectrum in file order. Re-observed targets appear once per
// observation, so TARGETID values are not necessarily unique.
type Fibermap struct {
	Rows []FibermapRow
}

// Len returns the number of rows.
func (fm *Fibermap) Len() int { return len(fm.Rows) }

// TargetIDs returns the identifier column in row order.
func (fm *Fibermap) TargetIDs() []int64 {
	ids := make([]int64, len(fm.Rows))
	for i, r := range fm.Rows {
		ids[i] = r.TargetID
	}
	return ids
}

// DesiTargets returns the DESI_TARGET bitmask column in row order.
func (fm *Fibermap) DesiTargets() []int64 {
	out := make([]int64, len(fm.Rows))
	for i, r := range fm.Rows {
		out[i] = r.DesiTarget
	}
	return out
}

// BGSTargets returns the BGS_TARGET bitmask column in row order.
func (fm *Fibermap) BGSTargets() []int64 {
	out := make([]int64, len(fm.Rows))
	for i, r := range fm.Rows {
		out[i] = r.BGSTarget
	}
	return out
}

// MWSTargets returns the MWS_TARGET bitmask column in row order.
func (fm *Fibermap) MWSTargets() []int64 {
	out := make([]int64, len(fm.Rows))
	for i, r := range fm.Rows {
		out[i] = r.MWSTarget
	}
	return out
}

// RowsOf returns the row indices carrying id, in file order.
func (fm *Fibermap) RowsOf(id int64) []int {
	var rows []int
	for i, r := range fm.Rows {
		if r.TargetID == id {
			rows = append(rows, i)
		}
	}
	return rows
}

func readFibermap(f *fitsio.File) (*Fibermap, error) {
	tbl, ok := fitsarr.FindTable(f, "FIBERMAP")
	if !ok {
		return nil, fmt.Errorf("FIBERMAP extension: %w", ErrNotFound)
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fm := &Fibermap{Rows: make([]FibermapRow, 0, tbl.NumRows())}
	for rows.Next() {
		var row FibermapRow
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("FIBERMAP row %d: %w", len(fm.Rows), err)
		}
		fm.Rows = append(fm.Rows, row)
	}
	return fm, rows.Err()
}
