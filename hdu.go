package desigo

import (
	"context"
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/hupe1980/desigo/internal/fitsarr"
)

// HDUInfo summarizes one HDU of a product file.
type HDUInfo struct {
	Index int
	Name  string
	Type  string
	Dims  []int
	Rows  int64
	Cols  int
}

// DescribeFile lists the HDUs of a product file without decoding the
// arrays. The gzipped twin is probed like every other read.
func (a *Archive) DescribeFile(ctx context.Context, name string) ([]HDUInfo, error) {
	blob, resolved, err := a.resolve(ctx, withGzTwin(name))
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	f, err := decodeFITS(blob, strings.HasSuffix(resolved, ".gz"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	defer f.Close()

	hdus := f.HDUs()
	out := make([]HDUInfo, 0, len(hdus))
	for i, hdu := range hdus {
		info := HDUInfo{
			Index: i,
			Name:  strings.TrimSpace(hdu.Name()),
			Type:  hduTypeName(hdu.Type()),
			Dims:  fitsarr.Dims(hdu),
		}
		if tbl, ok := hdu.(*fitsio.Table); ok {
			info.Rows = tbl.NumRows()
			info.Cols = len(tbl.Cols())
		}
		out = append(out, info)
	}
	return out, nil
}

func hduTypeName(t fitsio.HDUType) string {
	switch t {
	case fitsio.IMAGE_HDU:
		return "IMAGE"
	case fitsio.BINARY_TBL:
		return "BINTABLE"
	case fitsio.ASCII_TBL:
		return "TABLE"
	default:
		return "UNKNOWN"
	}
}
