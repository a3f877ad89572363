// Package testutil provides testing utilities for desigo.
//
// This package is intended for use in tests and benchmarks only.
// It generates synthetic survey products (spectra, redshift catalogs,
// templates) as in-memory FITS files, plus deterministic random data
// behind a seedable RNG.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	flux := make([]float32, nwave)
//	rng.FillUniformRange32(flux, 0.5, 5)
//
// # Synthetic Products
//
//	band := rng.Band("B", testutil.WaveGrid(3600, 3619, 1), nspec, 5)
//	raw, err := testutil.SpectraFITS(targets, []testutil.Band{band})
//
// # A Small Release Tree
//
//	store := blobstore.NewMemoryStore()
//	demo, err := rng.BuildDemo(store.Put, "fuji")
package testutil
