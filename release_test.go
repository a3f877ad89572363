package desigo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleasePaths(t *testing.T) {
	r := Release{Prod: "fuji"}

	t.Run("CoaddPath", func(t *testing.T) {
		assert.Equal(t, "fuji/tiles/80605/20210205/coadd-0-80605-20210205.fits",
			r.CoaddPath(80605, 20210205, 0))
		assert.Equal(t, "fuji/tiles/80605/20210205/coadd-9-80605-20210205.fits",
			r.CoaddPath(80605, 20210205, 9))
	})

	t.Run("SpectraPath", func(t *testing.T) {
		assert.Equal(t, "fuji/spectra-64/25/2586/spectra-64-2586.fits",
			r.SpectraPath(64, 2586))
		assert.Equal(t, "fuji/spectra-64/0/99/spectra-64-99.fits",
			r.SpectraPath(64, 99))
	})

	t.Run("HealpixGroup", func(t *testing.T) {
		assert.Equal(t, 25, HealpixGroup(2586))
		assert.Equal(t, 0, HealpixGroup(99))
		assert.Equal(t, 1, HealpixGroup(100))
	})

	t.Run("GzTwins", func(t *testing.T) {
		assert.Equal(t, []string{
			"fuji/tiles/80605/20210205/coadd-3-80605-20210205.fits",
			"fuji/tiles/80605/20210205/coadd-3-80605-20210205.fits.gz",
		}, r.CoaddCandidates(80605, 20210205, 3))
		assert.Equal(t, []string{
			"fuji/spectra-64/25/2586/spectra-64-2586.fits",
			"fuji/spectra-64/25/2586/spectra-64-2586.fits.gz",
		}, r.SpectraCandidates(64, 2586))
	})
}

func TestCatalogCandidates(t *testing.T) {
	r := Release{Prod: "fuji"}

	t.Run("Tile", func(t *testing.T) {
		assert.Equal(t, []string{
			"fuji/tiles/80605/20210205/zbest-0-80605-20210205.fits",
			"fuji/tiles/80605/20210205/zbest-0-80605-20210205.fits.gz",
			"fuji/tiles/80605/20210205/redrock-0-80605-20210205.fits",
			"fuji/tiles/80605/20210205/redrock-0-80605-20210205.fits.gz",
		}, r.ZbestTileCandidates(80605, 20210205, 0))
	})

	t.Run("Healpix", func(t *testing.T) {
		assert.Equal(t, []string{
			"fuji/spectra-64/25/2586/zbest-64-2586.fits",
			"fuji/spectra-64/25/2586/zbest-64-2586.fits.gz",
			"fuji/spectra-64/25/2586/redrock-64-2586.fits",
			"fuji/spectra-64/25/2586/redrock-64-2586.fits.gz",
		}, r.ZbestHealpixCandidates(64, 2586))
	})

	t.Run("ForCoaddName", func(t *testing.T) {
		got := CatalogCandidatesFor("fuji/tiles/80605/20210205/coadd-0-80605-20210205.fits")
		require.Len(t, got, 4)
		assert.Equal(t, "fuji/tiles/80605/20210205/zbest-0-80605-20210205.fits", got[0])
		assert.Equal(t, "fuji/tiles/80605/20210205/redrock-0-80605-20210205.fits.gz", got[3])
	})

	t.Run("ForGzippedSpectraName", func(t *testing.T) {
		got := CatalogCandidatesFor("fuji/spectra-64/25/2586/spectra-64-2586.fits.gz")
		require.Len(t, got, 4)
		assert.Equal(t, "fuji/spectra-64/25/2586/zbest-64-2586.fits", got[0])
	})

	t.Run("BareName", func(t *testing.T) {
		got := CatalogCandidatesFor("coadd-1-100-20210101.fits")
		require.Len(t, got, 4)
		assert.Equal(t, "zbest-1-100-20210101.fits", got[0])
	})

	t.Run("UnrelatedName", func(t *testing.T) {
		assert.Nil(t, CatalogCandidatesFor("fuji/tiles/80605/20210205/exposures.csv"))
	})
}
