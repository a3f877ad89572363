//go:build windows

package mmap

import (
	"io"
	"os"
)

// Windows gets a plain in-memory read. Products are immutable, so the copy
// is as good as a view, just not shared with the page cache.
func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func([]byte) error { return nil }, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	return nil
}
