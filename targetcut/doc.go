// Package targetcut interprets the targeting bitmask columns of a
// fibermap and selects spectra by target class.
//
// The three targeting columns (DESI_TARGET, BGS_TARGET, MWS_TARGET) are
// int64 bitmasks whose bit meanings are fixed by the survey's targeting
// scheme. The package embeds those definitions and exposes them as the
// Desi, BGS and MWS schemes:
//
//	want, _ := targetcut.Desi.Mask("QSO", "ELG")
//	sel := targetcut.Cut(fibermap.DesiTargets(), want)
//	qsoSpectra, _ := spectra.Select(sel.Rows())
//
// Selections are roaring bitmaps over row positions, so cuts over the
// same fibermap can be intersected and unioned cheaply.
package targetcut
