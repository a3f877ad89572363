// Package mmap provides read-only memory-mapped file access.
//
// Spectra products are read with scattered access patterns (a header block
// here, one band's arrays there), so mapping the file beats buffered reads
// for everything beyond trivial sizes. The package presents a unified API:
//
//	m, err := mmap.Open("coadd-0-80605-20201215.fits")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy view, valid until Close
//	m.Advise(mmap.AccessRandom)
//
// On Unix the mapping uses mmap(2) with madvise(2) hints. On Windows the
// file is read into memory instead and Advise is a no-op.
//
// Mapping is safe for concurrent reads. Close is idempotent; callers must
// ensure no goroutine touches Bytes() after Close returns.
package mmap
