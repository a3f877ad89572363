package desigo

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/hupe1980/desigo/internal/fitsarr"
)

// ZbestRow is one row of a redshift catalog: the best fit the external
// fitting code found for a target.
type ZbestRow struct {
	TargetID  int64     `fits:"TARGETID"`
	Chi2      float64   `fits:"CHI2"`
	Coeff     []float64 `fits:"COEFF"`
	Z         float64   `fits:"Z"`
	ZErr      float64   `fits:"ZERR"`
	ZWarn     int64     `fits:"ZWARN"`
	Spectype  string    `fits:"SPECTYPE"`
	Subtype   string    `fits:"SUBTYPE"`
	DeltaChi2 float64   `fits:"DELTACHI2"`
}

// FullType returns the template key "TYPE:::SUBTYPE" the fitting code
// uses to name a basis, e.g. "GALAXY:::" or "STAR:::M".
func (r ZbestRow) FullType() string {
	return r.Spectype + ":::" + r.Subtype
}

// Zbest is a redshift catalog read from a zbest or redrock product,
// rows in file order. Extname records which extension held the table.
type Zbest struct {
	Rows    []ZbestRow
	Extname string
}

// Len returns the number of fit rows.
func (zb *Zbest) Len() int { return len(zb.Rows) }

// TargetIDs returns the identifier column in row order.
func (zb *Zbest) TargetIDs() []int64 {
	ids := make([]int64, len(zb.Rows))
	for i, r := range zb.Rows {
		ids[i] = r.TargetID
	}
	return ids
}

// Index builds the identifier lookup over the fit rows.
func (zb *Zbest) Index() *FitIndex {
	return NewFitIndex(zb.TargetIDs())
}

// Best returns the first fit row for id.
func (zb *Zbest) Best(id int64) (ZbestRow, bool) {
	for _, r := range zb.Rows {
		if r.TargetID == id {
			return r, true
		}
	}
	return ZbestRow{}, false
}

// Good returns the indices of rows with no fit warnings set.
func (zb *Zbest) Good() []int {
	var rows []int
	for i, r := range zb.Rows {
		if r.ZWarn == 0 {
			rows = append(rows, i)
		}
	}
	return rows
}

// zbestExtnames in lookup order. Newer pipeline runs renamed the
// extension from ZBEST to REDSHIFTS without changing the columns.
var zbestExtnames = []string{"ZBEST", "REDSHIFTS"}

func readZbest(f *fitsio.File) (*Zbest, error) {
	var tbl *fitsio.Table
	var extname string
	for _, name := range zbestExtnames {
		if t, ok := fitsarr.FindTable(f, name); ok {
			tbl, extname = t, name
			break
		}
	}
	if tbl == nil {
		return nil, fmt.Errorf("redshift table (ZBEST or REDSHIFTS): %w", ErrNotFound)
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zb := &Zbest{Rows: make([]ZbestRow, 0, tbl.NumRows()), Extname: extname}
	for rows.Next() {
		var row ZbestRow
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", extname, len(zb.Rows), err)
		}
		row.Spectype = strings.TrimSpace(row.Spectype)
		row.Subtype = strings.TrimSpace(row.Subtype)
		zb.Rows = append(zb.Rows, row)
	}
	return zb, rows.Err()
}
