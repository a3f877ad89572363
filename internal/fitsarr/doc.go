// Package fitsarr decodes FITS image HDUs into typed Go slices.
//
// FITS stores array axes fastest-first (NAXIS1 varies fastest), the
// reverse of the row-major convention used everywhere else in this
// module. Dims returns shapes slowest-first so a flux HDU with
// NAXIS1=nwave, NAXIS2=nspec comes back as [nspec, nwave].
package fitsarr
