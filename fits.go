package desigo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/astrogo/fitsio"
	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/desigo/blobstore"
)

// decodeFITS parses a product file fetched from a store. Mapped blobs
// are parsed in place; everything else goes through a section reader.
// Gzipped twins are unwrapped first.
func decodeFITS(blob blobstore.Blob, gzipped bool) (*fitsio.File, error) {
	var r io.Reader
	if m, ok := blob.(blobstore.Mappable); ok {
		raw, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	} else {
		r = io.NewSectionReader(blob, 0, blob.Size())
	}

	if gzipped {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gunzip: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("parse fits: %w", err)
	}
	return f, nil
}
