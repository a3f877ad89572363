package desigo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/desigo/blobstore"
	"github.com/hupe1980/desigo/templates"
)

// NumPetals is the number of petals in the focal plane. Tile-based
// products are split into one coadd per petal, numbered 0 through 9.
const NumPetals = 10

// Archive reads spectroscopic products from one production of a data
// release. It resolves file names through the release layout, decodes
// the FITS products, and hands back typed spectra and catalog values.
//
// An Archive is safe for concurrent use.
type Archive struct {
	store   blobstore.Store
	release Release
	logger  *Logger
	metrics MetricsCollector
	sem     *semaphore.Weighted

	tplStore  blobstore.Store
	tplPrefix string
	tplHasSrc bool

	tplOnce sync.Once
	tplLib  templates.Library
	tplErr  error
}

// New creates an Archive serving the named production from store.
//
// The store is rooted at the reduction tree, so product names start
// with the production, e.g. "fuji/tiles/...". Use Open to wire both
// from the environment.
func New(store blobstore.Store, prod string, optFns ...Option) (*Archive, error) {
	if store == nil {
		return nil, errors.New("desigo: store is nil")
	}
	if prod == "" {
		return nil, fmt.Errorf("%s: %w", EnvSpecprod, ErrMissingEnv)
	}
	opts := applyOptions(optFns)
	return &Archive{
		store:     store,
		release:   Release{Prod: prod},
		logger:    opts.logger,
		metrics:   opts.metricsCollector,
		sem:       semaphore.NewWeighted(opts.maxParallel),
		tplStore:  opts.templateStore,
		tplPrefix: opts.templatePrefix,
		tplHasSrc: opts.templateStore != nil || opts.templatePrefix != "",
		tplLib:    opts.templateLib,
	}, nil
}

// Open creates an Archive from the DESI_SPECTRO_REDUX and SPECPROD
// environment variables, serving the production from the local
// filesystem. The production directory must exist. RR_TEMPLATE_DIR, if
// set, provides the template library.
func Open(optFns ...Option) (*Archive, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(cfg.ReduxRoot, cfg.Specprod)); err != nil {
		return nil, fmt.Errorf("production %s/%s: %w", cfg.ReduxRoot, cfg.Specprod, translateError(err))
	}
	if cfg.TemplateDir != "" {
		tpl := blobstore.NewLocalStore(cfg.TemplateDir)
		optFns = append([]Option{WithTemplateStore(tpl, "")}, optFns...)
	}
	return New(blobstore.NewLocalStore(cfg.ReduxRoot), cfg.Specprod, optFns...)
}

// Release returns the path helper for the archive's production.
func (a *Archive) Release() Release { return a.release }

// Store returns the underlying store.
func (a *Archive) Store() blobstore.Store { return a.store }

// ReadTileSpectra reads the coadded spectra of one petal of a tile
// observed on a night.
func (a *Archive) ReadTileSpectra(ctx context.Context, tile, night, petal int) (*Spectra, error) {
	return a.readSpectraAt(ctx, a.release.CoaddCandidates(tile, night, petal))
}

// ReadTileZbest reads the redshift catalog paired with one petal's coadd.
func (a *Archive) ReadTileZbest(ctx context.Context, tile, night, petal int) (*Zbest, error) {
	return a.readZbestAt(ctx, a.release.ZbestTileCandidates(tile, night, petal))
}

// ReadHealpixSpectra reads the grouped spectra of one healpix pixel.
func (a *Archive) ReadHealpixSpectra(ctx context.Context, nside, pixel int) (*Spectra, error) {
	return a.readSpectraAt(ctx, a.release.SpectraCandidates(nside, pixel))
}

// ReadHealpixZbest reads the redshift catalog paired with one healpix
// pixel's grouped spectra.
func (a *Archive) ReadHealpixZbest(ctx context.Context, nside, pixel int) (*Zbest, error) {
	return a.readZbestAt(ctx, a.release.ZbestHealpixCandidates(nside, pixel))
}

// ReadSpectraFile reads a spectra or coadd product by explicit store
// path, including a .gz name.
func (a *Archive) ReadSpectraFile(ctx context.Context, name string) (*Spectra, error) {
	return a.readSpectraAt(ctx, []string{name})
}

// ReadZbestFile reads a redshift catalog by explicit store path.
func (a *Archive) ReadZbestFile(ctx context.Context, name string) (*Zbest, error) {
	return a.readZbestAt(ctx, []string{name})
}

// ReadZbestFor reads the redshift catalog that sits next to an
// explicitly named spectra or coadd file.
func (a *Archive) ReadZbestFor(ctx context.Context, spectraName string) (*Zbest, error) {
	candidates := CatalogCandidatesFor(spectraName)
	if candidates == nil {
		return nil, fmt.Errorf("desigo: no catalog pairs with %q", spectraName)
	}
	return a.readZbestAt(ctx, candidates)
}

// TilePetal pairs one petal's coadded spectra with its redshift catalog.
type TilePetal struct {
	Petal   int
	Spectra *Spectra
	Zbest   *Zbest
}

// ReadTilePetals reads several petals of one tile concurrently, capped
// by WithMaxParallel. Results keep the order of petals.
func (a *Archive) ReadTilePetals(ctx context.Context, tile, night int, petals []int) ([]TilePetal, error) {
	out := make([]TilePetal, len(petals))
	g, ctx := errgroup.WithContext(ctx)
	for i, petal := range petals {
		g.Go(func() error {
			if err := a.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer a.sem.Release(1)

			s, err := a.ReadTileSpectra(ctx, tile, night, petal)
			if err != nil {
				return err
			}
			zb, err := a.ReadTileZbest(ctx, tile, night, petal)
			if err != nil {
				return err
			}
			out[i] = TilePetal{Petal: petal, Spectra: s, Zbest: zb}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// HealpixPixel pairs one pixel's grouped spectra with its redshift catalog.
type HealpixPixel struct {
	Pixel   int
	Spectra *Spectra
	Zbest   *Zbest
}

// ReadHealpixPixels reads several healpix pixels concurrently, capped
// by WithMaxParallel. Results keep the order of pixels.
func (a *Archive) ReadHealpixPixels(ctx context.Context, nside int, pixels []int) ([]HealpixPixel, error) {
	out := make([]HealpixPixel, len(pixels))
	g, ctx := errgroup.WithContext(ctx)
	for i, pixel := range pixels {
		g.Go(func() error {
			if err := a.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer a.sem.Release(1)

			s, err := a.ReadHealpixSpectra(ctx, nside, pixel)
			if err != nil {
				return err
			}
			zb, err := a.ReadHealpixZbest(ctx, nside, pixel)
			if err != nil {
				return err
			}
			out[i] = HealpixPixel{Pixel: pixel, Spectra: s, Zbest: zb}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Templates returns the redrock template library, loading it on first
// use from the configured template location. The load happens once; a
// failed load is returned to every caller.
func (a *Archive) Templates(ctx context.Context) (templates.Library, error) {
	a.tplOnce.Do(func() {
		if a.tplLib != nil {
			return
		}
		if !a.tplHasSrc {
			a.tplErr = fmt.Errorf("%s: %w", EnvTemplateDir, ErrMissingEnv)
			return
		}
		src := a.tplStore
		if src == nil {
			src = a.store
		}
		lib, err := templates.ReadDir(ctx, src, a.tplPrefix)
		a.logger.LogTemplates(ctx, a.tplPrefix, len(lib), err)
		if err != nil {
			a.tplErr = translateError(err)
			return
		}
		a.tplLib = lib
	})
	return a.tplLib, a.tplErr
}

// BestFitModel reconstructs the best-fit template model for one
// fibermap row of s, resampled onto every band and convolved with that
// row's resolution.
func (a *Archive) BestFitModel(ctx context.Context, s *Spectra, fit ZbestRow, row int) (map[string][]float64, error) {
	lib, err := a.Templates(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	m, err := BestModel(lib, s, fit, row)
	a.logger.LogModel(ctx, fit.TargetID, fit.FullType(), err)
	a.metrics.RecordModel(time.Since(start), err)
	return m, err
}

// resolve probes candidate names in order and opens the first that
// exists. Missing candidates are routine; any other store error aborts
// the probe. Errors are logged by the callers, which know the product
// being read.
func (a *Archive) resolve(ctx context.Context, candidates []string) (blobstore.Blob, string, error) {
	start := time.Now()
	var probes int
	for _, name := range candidates {
		probes++
		blob, err := a.store.Open(ctx, name)
		if err == nil {
			a.logger.LogResolve(ctx, name, probes, nil)
			a.metrics.RecordResolve(probes, time.Since(start), nil)
			return blob, name, nil
		}
		if !errors.Is(err, blobstore.ErrNotFound) {
			err = fmt.Errorf("open %s: %w", name, err)
			a.metrics.RecordResolve(probes, time.Since(start), err)
			return nil, "", err
		}
	}
	err := fmt.Errorf("%s: %w", candidates[0], ErrNotFound)
	a.metrics.RecordResolve(probes, time.Since(start), err)
	return nil, "", err
}

func (a *Archive) readSpectraAt(ctx context.Context, candidates []string) (s *Spectra, err error) {
	start := time.Now()
	name := candidates[0]
	defer func() {
		nspec, bands := 0, 0
		if s != nil {
			nspec = s.NumSpectra()
			bands = len(s.Bands())
		}
		a.logger.LogReadSpectra(ctx, name, nspec, bands, err)
		a.metrics.RecordReadSpectra(nspec, time.Since(start), err)
	}()

	blob, resolved, err := a.resolve(ctx, candidates)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	name = resolved

	f, err := decodeFITS(blob, strings.HasSuffix(name, ".gz"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()

	s, err = readSpectra(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

func (a *Archive) readZbestAt(ctx context.Context, candidates []string) (zb *Zbest, err error) {
	start := time.Now()
	name := candidates[0]
	defer func() {
		rows := 0
		if zb != nil {
			rows = zb.Len()
		}
		a.logger.LogReadZbest(ctx, name, rows, err)
		a.metrics.RecordReadZbest(rows, time.Since(start), err)
	}()

	blob, resolved, err := a.resolve(ctx, candidates)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	name = resolved

	f, err := decodeFITS(blob, strings.HasSuffix(name, ".gz"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()

	zb, err = readZbest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return zb, nil
}
