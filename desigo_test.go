package desigo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/desigo/blobstore"
	"github.com/hupe1980/desigo/templates"
	"github.com/hupe1980/desigo/testutil"
)

func newDemoArchive(t *testing.T, optFns ...Option) (*Archive, *testutil.Demo) {
	t.Helper()
	store := blobstore.NewMemoryStore()
	demo, err := testutil.NewRNG(42).BuildDemo(store.Put, "fuji")
	require.NoError(t, err)
	a, err := New(store, "fuji", optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a, demo
}

func demoGalaxyTemplate() testutil.TemplateSpec {
	nwave := 501 // 3000..8000, wide enough for every band at low z
	basis := make([][]float64, 2)
	basis[0] = make([]float64, nwave)
	basis[1] = make([]float64, nwave)
	for i := 0; i < nwave; i++ {
		basis[0][i] = 1
		basis[1][i] = float64(i) / float64(nwave)
	}
	return testutil.TemplateSpec{Type: "GALAXY", Wave0: 3000, Step: 10, Basis: basis}
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, "fuji")
	require.Error(t, err)

	_, err = New(blobstore.NewMemoryStore(), "")
	require.ErrorIs(t, err, ErrMissingEnv)
}

func TestArchiveTileReads(t *testing.T) {
	ctx := context.Background()
	a, demo := newDemoArchive(t)

	t.Run("Spectra", func(t *testing.T) {
		s, err := a.ReadTileSpectra(ctx, demo.Tile, demo.Night, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, s.NumSpectra())
		assert.Equal(t, []string{"B", "R", "Z"}, s.Bands())

		b, err := s.Band("B")
		require.NoError(t, err)
		assert.Equal(t, demo.Wave["B"], b.Wave)

		want := make([]int64, 0, 3)
		for _, tgt := range demo.TargetsByPetal[0] {
			want = append(want, tgt.TargetID)
		}
		assert.Equal(t, want, s.Fibermap.TargetIDs())
	})

	t.Run("Zbest", func(t *testing.T) {
		zb, err := a.ReadTileZbest(ctx, demo.Tile, demo.Night, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, zb.Len())
		assert.Equal(t, "ZBEST", zb.Extname)
		assert.Equal(t, demo.FitsByPetal[1][0].TargetID, zb.Rows[0].TargetID)
	})

	t.Run("MissingPetal", func(t *testing.T) {
		_, err := a.ReadTileSpectra(ctx, demo.Tile, demo.Night, 9)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "coadd-9")

		_, err = a.ReadTileZbest(ctx, demo.Tile, demo.Night, 9)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Petals", func(t *testing.T) {
		petals, err := a.ReadTilePetals(ctx, demo.Tile, demo.Night, []int{0, 1})
		require.NoError(t, err)
		require.Len(t, petals, 2)
		assert.Equal(t, 0, petals[0].Petal)
		assert.Equal(t, 1, petals[1].Petal)
		for _, p := range petals {
			assert.Equal(t, 3, p.Spectra.NumSpectra())
			assert.Equal(t, 3, p.Zbest.Len())
		}
	})

	t.Run("PetalsPartialMissing", func(t *testing.T) {
		_, err := a.ReadTilePetals(ctx, demo.Tile, demo.Night, []int{0, 7})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArchiveHealpixReads(t *testing.T) {
	ctx := context.Background()
	a, demo := newDemoArchive(t)

	s, err := a.ReadHealpixSpectra(ctx, demo.Nside, demo.Pixel)
	require.NoError(t, err)
	assert.Equal(t, 5, s.NumSpectra())

	zb, err := a.ReadHealpixZbest(ctx, demo.Nside, demo.Pixel)
	require.NoError(t, err)
	assert.Equal(t, 3, zb.Len())

	t.Run("JoinMatchesFibermapOrder", func(t *testing.T) {
		matches := zb.Index().Join(s.Fibermap.TargetIDs())
		assert.Equal(t, [][]int{{0}, {1}, {0}, {2}, nil}, matches)
	})

	t.Run("UnmatchedTarget", func(t *testing.T) {
		missing := Unmatched(s.Fibermap.TargetIDs(), zb.TargetIDs())
		assert.Equal(t, []int64{demo.PixelTargets[4].TargetID}, missing)
	})

	t.Run("Pixels", func(t *testing.T) {
		pixels, err := a.ReadHealpixPixels(ctx, demo.Nside, []int{demo.Pixel})
		require.NoError(t, err)
		require.Len(t, pixels, 1)
		assert.Equal(t, demo.Pixel, pixels[0].Pixel)
		assert.Equal(t, 5, pixels[0].Spectra.NumSpectra())
	})

	t.Run("MissingPixel", func(t *testing.T) {
		_, err := a.ReadHealpixSpectra(ctx, demo.Nside, 9999)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArchiveFileReads(t *testing.T) {
	ctx := context.Background()
	a, demo := newDemoArchive(t)
	coadd := a.Release().CoaddPath(demo.Tile, demo.Night, 0)

	s, err := a.ReadSpectraFile(ctx, coadd)
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumSpectra())

	zb, err := a.ReadZbestFor(ctx, coadd)
	require.NoError(t, err)
	assert.Equal(t, 3, zb.Len())

	_, err = a.ReadZbestFor(ctx, "fuji/tiles/80605/20210205/exposures.csv")
	require.Error(t, err)
}

func TestArchiveDescribeFile(t *testing.T) {
	ctx := context.Background()
	a, demo := newDemoArchive(t)
	coadd := a.Release().CoaddPath(demo.Tile, demo.Night, 0)

	infos, err := a.DescribeFile(ctx, coadd)
	require.NoError(t, err)
	// Primary, FIBERMAP, then five image HDUs per band.
	require.Len(t, infos, 2+5*len(demo.Bands))

	assert.Equal(t, "IMAGE", infos[0].Type)

	fm := infos[1]
	assert.Equal(t, "FIBERMAP", fm.Name)
	assert.Equal(t, "BINTABLE", fm.Type)
	assert.Equal(t, int64(3), fm.Rows)
	assert.Equal(t, 11, fm.Cols)

	assert.Equal(t, "B_WAVELENGTH", infos[2].Name)
	assert.Equal(t, []int{20}, infos[2].Dims)
	assert.Equal(t, "B_FLUX", infos[3].Name)
	assert.Equal(t, []int{3, 20}, infos[3].Dims)
	assert.Equal(t, "B_RESOLUTION", infos[6].Name)
	assert.Equal(t, []int{3, 5, 20}, infos[6].Dims)

	_, err = a.DescribeFile(ctx, "fuji/nope.fits")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveNameFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("GzipOnly", func(t *testing.T) {
		raw := make(map[string][]byte)
		demo, err := testutil.NewRNG(7).BuildDemo(func(name string, data []byte) { raw[name] = data }, "fuji")
		require.NoError(t, err)

		store := blobstore.NewMemoryStore()
		for name, data := range raw {
			store.Put(name+".gz", testutil.Gzip(data))
		}
		a, err := New(store, "fuji")
		require.NoError(t, err)
		defer a.Close()

		s, err := a.ReadTileSpectra(ctx, demo.Tile, demo.Night, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, s.NumSpectra())

		zb, err := a.ReadHealpixZbest(ctx, demo.Nside, demo.Pixel)
		require.NoError(t, err)
		assert.Equal(t, 3, zb.Len())
	})

	t.Run("RedrockName", func(t *testing.T) {
		raw := make(map[string][]byte)
		demo, err := testutil.NewRNG(7).BuildDemo(func(name string, data []byte) { raw[name] = data }, "fuji")
		require.NoError(t, err)

		store := blobstore.NewMemoryStore()
		for name, data := range raw {
			store.Put(strings.Replace(name, "zbest-", "redrock-", 1), data)
		}
		a, err := New(store, "fuji")
		require.NoError(t, err)
		defer a.Close()

		zb, err := a.ReadTileZbest(ctx, demo.Tile, demo.Night, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, zb.Len())
	})
}

func TestArchiveTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("LazyLoad", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		_, err := testutil.NewRNG(42).BuildDemo(store.Put, "fuji")
		require.NoError(t, err)

		galaxy, err := testutil.TemplateFITS(demoGalaxyTemplate())
		require.NoError(t, err)
		store.Put("tpl/rrtemplate-galaxy.fits", galaxy)

		a, err := New(store, "fuji", WithTemplateDir("tpl"))
		require.NoError(t, err)
		defer a.Close()

		lib, err := a.Templates(ctx)
		require.NoError(t, err)
		require.Len(t, lib, 1)
		_, ok := lib.For("GALAXY", "")
		assert.True(t, ok)

		again, err := a.Templates(ctx)
		require.NoError(t, err)
		assert.Equal(t, lib, again)
	})

	t.Run("Unconfigured", func(t *testing.T) {
		a, _ := newDemoArchive(t)
		_, err := a.Templates(ctx)
		require.ErrorIs(t, err, ErrMissingEnv)
		assert.Contains(t, err.Error(), "RR_TEMPLATE_DIR")
	})

	t.Run("Injected", func(t *testing.T) {
		lib := templates.Library{"GALAXY:::": {Type: "GALAXY"}}
		a, _ := newDemoArchive(t, WithTemplates(lib))
		got, err := a.Templates(ctx)
		require.NoError(t, err)
		assert.Equal(t, lib, got)
	})
}

func TestArchiveBestFitModel(t *testing.T) {
	ctx := context.Background()

	store := blobstore.NewMemoryStore()
	demo, err := testutil.NewRNG(42).BuildDemo(store.Put, "fuji")
	require.NoError(t, err)
	galaxy, err := testutil.TemplateFITS(demoGalaxyTemplate())
	require.NoError(t, err)
	store.Put("tpl/rrtemplate-galaxy.fits", galaxy)

	a, err := New(store, "fuji", WithTemplateDir("tpl"))
	require.NoError(t, err)
	defer a.Close()

	s, err := a.ReadHealpixSpectra(ctx, demo.Nside, demo.Pixel)
	require.NoError(t, err)
	zb, err := a.ReadHealpixZbest(ctx, demo.Nside, demo.Pixel)
	require.NoError(t, err)

	t.Run("AllBands", func(t *testing.T) {
		require.Equal(t, "GALAXY", zb.Rows[0].Spectype)
		model, err := a.BestFitModel(ctx, s, zb.Rows[0], 0)
		require.NoError(t, err)
		require.Len(t, model, 3)
		for _, band := range s.Bands() {
			assert.Len(t, model[band], len(demo.Wave[band]))
		}
	})

	t.Run("MissingTemplate", func(t *testing.T) {
		require.Equal(t, "QSO", zb.Rows[1].Spectype)
		_, err := a.BestFitModel(ctx, s, zb.Rows[1], 1)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArchiveMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	a, demo := newDemoArchive(t, WithMetricsCollector(metrics))

	_, err := a.ReadTileSpectra(ctx, demo.Tile, demo.Night, 0)
	require.NoError(t, err)
	_, err = a.ReadTileZbest(ctx, demo.Tile, demo.Night, 0)
	require.NoError(t, err)
	_, err = a.ReadTileSpectra(ctx, demo.Tile, demo.Night, 9)
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.SpectraCount)
	assert.Equal(t, int64(1), stats.SpectraErrors)
	assert.Equal(t, int64(3), stats.SpectraRead)
	assert.Equal(t, int64(1), stats.ZbestCount)
	assert.Equal(t, int64(3), stats.ZbestRead)
	assert.Equal(t, int64(3), stats.ResolveCount)
	assert.Equal(t, int64(1), stats.ResolveErrors)
	// One probe per hit, both gz twins probed for the miss.
	assert.Equal(t, int64(4), stats.ResolveProbes)
}

func TestOpenFromEnv(t *testing.T) {
	dir := t.TempDir()
	put := func(name string, data []byte) {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, data, 0o644))
	}
	demo, err := testutil.NewRNG(3).BuildDemo(put, "fuji")
	require.NoError(t, err)

	t.Setenv("DESI_SPECTRO_REDUX", dir)
	t.Setenv("SPECPROD", "fuji")
	t.Setenv("RR_TEMPLATE_DIR", "")

	a, err := Open()
	require.NoError(t, err)
	defer a.Close()

	s, err := a.ReadTileSpectra(context.Background(), demo.Tile, demo.Night, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumSpectra())

	t.Run("MissingProd", func(t *testing.T) {
		t.Setenv("SPECPROD", "")
		_, err := Open()
		require.ErrorIs(t, err, ErrMissingEnv)
	})

	t.Run("NoSuchProduction", func(t *testing.T) {
		t.Setenv("SPECPROD", "guadalupe")
		_, err := Open()
		require.ErrorIs(t, err, ErrNotFound)
	})
}
