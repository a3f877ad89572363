// Package healpix implements the HEALPix equal-area sky pixelization in its
// nested and ring orderings, as used by survey pipelines to group spectra by
// sky location.
//
// A Pixelization is bound to one nside (a power of two). Angles follow the
// astronomical convention of the reference implementations: theta is the
// colatitude in radians measured from the north pole, phi the longitude in
// radians. Helpers accept right ascension and declination directly.
//
// # Orderings
//
//   - Ring: pixels numbered along iso-latitude rings from the north pole.
//   - Nested: pixels numbered by a Z-order curve within each of the twelve
//     base faces, so that resolution changes keep pixel prefixes stable.
//
// The survey's pixel-grouped spectra layout uses the nested ordering.
package healpix
