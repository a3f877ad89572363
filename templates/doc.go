// Package templates loads the spectral template bases the external
// redshift fitting code fits against.
//
// A template file carries a BASIS_VECTORS image of shape
// [nbasis][nwave] plus the rest-frame wavelength grid as CRVAL1/CDELT1
// header keys (log10 spacing when LOGLAM is set). Templates are keyed
// by their full type "TYPE:::SUBTYPE", matching the SPECTYPE and
// SUBTYPE columns of the redshift catalog.
package templates
