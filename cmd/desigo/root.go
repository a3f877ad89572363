package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/desigo"
	"github.com/hupe1980/desigo/blobstore"
	"github.com/hupe1980/desigo/blobstore/s3"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	redux     string
	specprod  string
	templates string
	cacheMB   int
	logLevel  string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rc := &cobra.Command{
		Use:   "desigo",
		Short: "Inspect spectroscopic data release products",
		Long: `desigo reads the tile and healpix products of a spectroscopic data
release: coadded spectra, redshift catalogs and best-fit template models.

The release is located through --redux and --specprod, which default to
the DESI_SPECTRO_REDUX and SPECPROD environment variables. --redux also
accepts s3:// and http(s):// mirrors, so public releases can be browsed
without a local copy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rc.PersistentFlags()
	pf.StringVar(&opts.redux, "redux", os.Getenv(desigo.EnvReduxRoot), "release root: a directory, s3://bucket/prefix or an http(s) mirror")
	pf.StringVar(&opts.specprod, "specprod", os.Getenv(desigo.EnvSpecprod), "production run name, e.g. fuji")
	pf.StringVar(&opts.templates, "templates", os.Getenv(desigo.EnvTemplateDir), "directory holding the rrtemplate files for model reconstruction")
	pf.IntVar(&opts.cacheMB, "cache", 0, "cache fetched blocks in memory, in MiB (useful for remote mirrors)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	rc.AddCommand(newHDUsCommand(opts))
	rc.AddCommand(newTargetsCommand(opts))
	rc.AddCommand(newZcatCommand(opts))
	rc.AddCommand(newLocateCommand(opts))
	rc.AddCommand(newPlotCommand(opts))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// openArchive builds the archive the subcommands read from.
func (o *rootOptions) openArchive(ctx context.Context) (*desigo.Archive, error) {
	store, err := o.openStore(ctx)
	if err != nil {
		return nil, err
	}

	optFns := []desigo.Option{
		desigo.WithLogger(desigo.NewTextLogger(parseLogLevel(o.logLevel))),
	}
	if o.templates != "" {
		optFns = append(optFns, desigo.WithTemplateStore(blobstore.NewLocalStore(o.templates), ""))
	}

	a, err := desigo.New(store, o.specprod, optFns...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (o *rootOptions) openStore(ctx context.Context) (blobstore.Store, error) {
	if o.redux == "" {
		return nil, fmt.Errorf("%s: %w", desigo.EnvReduxRoot, desigo.ErrMissingEnv)
	}

	var store blobstore.Store
	switch {
	case strings.HasPrefix(o.redux, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(o.redux, "s3://"), "/")
		s, err := s3.NewPublicStore(ctx, bucket, prefix)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", o.redux, err)
		}
		store = s
	case strings.HasPrefix(o.redux, "http://"), strings.HasPrefix(o.redux, "https://"):
		s, err := blobstore.NewHTTPStore(o.redux)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", o.redux, err)
		}
		store = s
	default:
		store = blobstore.NewLocalStore(o.redux)
	}

	if o.cacheMB > 0 {
		store = blobstore.NewCachingStore(store, int64(o.cacheMB)<<20)
	}
	return store, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
