package desigo

import (
	"log/slog"

	"github.com/hupe1980/desigo/blobstore"
	"github.com/hupe1980/desigo/templates"
)

const defaultMaxParallel = 4

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	maxParallel      int64
	templatePrefix   string
	templateStore    blobstore.Store
	templateLib      templates.Library
}

// Option configures Archive behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := desigo.NewJSONLogger(slog.LevelInfo)
//	a, _ := desigo.New(store, "fuji", desigo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &desigo.BasicMetricsCollector{}
//	a, _ := desigo.New(store, "fuji", desigo.WithMetricsCollector(metrics))
//	// ... use a ...
//	stats := metrics.GetStats()
//	fmt.Printf("Spectra reads: %d, Avg latency: %dns\n", stats.SpectraCount, stats.SpectraAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMaxParallel caps the number of product files fetched concurrently
// by multi-petal and multi-pixel reads. Default: 4.
func WithMaxParallel(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxParallel = int64(n)
		}
	}
}

// WithTemplateDir points at the redrock template files inside the
// archive's own store, as a slash-separated prefix. The library is
// loaded lazily on first use.
func WithTemplateDir(prefix string) Option {
	return func(o *options) {
		o.templatePrefix = prefix
		o.templateStore = nil
	}
}

// WithTemplateStore reads redrock template files from a separate store,
// for productions whose templates do not live in the reduction tree.
// The archive closes the store when it is closed.
func WithTemplateStore(store blobstore.Store, prefix string) Option {
	return func(o *options) {
		o.templateStore = store
		o.templatePrefix = prefix
	}
}

// WithTemplates injects a pre-loaded template library, skipping the
// lazy load entirely.
func WithTemplates(lib templates.Library) Option {
	return func(o *options) {
		o.templateLib = lib
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		maxParallel:      defaultMaxParallel,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
