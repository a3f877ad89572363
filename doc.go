// Package desigo reads the spectroscopic data products of a DESI-style
// sky survey: coadded spectra, redshift catalogs, and redrock templates,
// stored as FITS files in a fixed release layout.
//
// # Quick Start
//
// Local mode, wired from the environment:
//
//	ctx := context.Background()
//	archive, _ := desigo.Open()
//	defer archive.Close()
//
//	petal, _ := archive.Tile(80605, 20210205).Petal(0).Spectra(ctx)
//	zbest, _ := archive.Tile(80605, 20210205).Petal(0).Zbest(ctx)
//
// Cloud mode:
//
//	s3Store, _ := s3.NewPublicStore(ctx, "my-bucket", "spectro/redux/")
//	archive, _ := desigo.New(s3Store, "fuji")
//
// # Matching Spectra to Redshifts
//
// Spectra and catalogs are keyed by target identifier. A target observed
// more than once appears in several fibermap rows, so matches come back
// as position lists in catalog order:
//
//	matches := zbest.Index().Join(spectra.Fibermap.TargetIDs())
//	for row, fits := range matches {
//	    for _, f := range fits {
//	        fmt.Println(row, zbest.Rows[f].Z)
//	    }
//	}
//
// # Best-Fit Models
//
// With a template library configured, the best-fit model of any catalog
// row can be reconstructed on the instrument's wavelength grids:
//
//	model, _ := archive.BestFitModel(ctx, spectra, zbest.Rows[0], 0)
//	for band, flux := range model {
//	    fmt.Println(band, flux[:4])
//	}
//
// # Key Features
//
//   - Tile-based and healpix-grouped release layouts, with zbest/redrock
//     and .gz fallbacks resolved automatically
//   - Concurrent multi-petal and multi-pixel reads, narrowed to chosen
//     bands and targets through the fluent requests
//   - Local filesystem, HTTP, S3, and MinIO stores, with an optional
//     caching layer (LZ4/Zstd block compression)
//   - Per-target resolution matrices, template evaluation, and redshift
//     resampling for model reconstruction
//   - Structured logging and pluggable metrics
package desigo
