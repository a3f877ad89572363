package desigo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    readCounter   prometheus.Counter
//	    readHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordReadSpectra(nspec int, duration time.Duration, err error) {
//	    p.readCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordResolve is called after each candidate probe for a product file.
	// probes is the number of names tried, err is nil if one was found.
	RecordResolve(probes int, duration time.Duration, err error)

	// RecordReadSpectra is called after each spectra read.
	// nspec is the number of spectra decoded, duration the total time taken.
	RecordReadSpectra(nspec int, duration time.Duration, err error)

	// RecordReadZbest is called after each redshift catalog read.
	// rows is the number of catalog rows decoded.
	RecordReadZbest(rows int, duration time.Duration, err error)

	// RecordModel is called after each best-fit model reconstruction.
	RecordModel(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordResolve(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordReadSpectra(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordReadZbest(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordModel(time.Duration, error)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ResolveCount      atomic.Int64
	ResolveErrors     atomic.Int64
	ResolveProbes     atomic.Int64
	SpectraCount      atomic.Int64
	SpectraErrors     atomic.Int64
	SpectraRead       atomic.Int64
	SpectraTotalNanos atomic.Int64
	ZbestCount        atomic.Int64
	ZbestErrors       atomic.Int64
	ZbestRead         atomic.Int64
	ZbestTotalNanos   atomic.Int64
	ModelCount        atomic.Int64
	ModelErrors       atomic.Int64
	ModelTotalNanos   atomic.Int64
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(probes int, duration time.Duration, err error) {
	b.ResolveCount.Add(1)
	b.ResolveProbes.Add(int64(probes))
	if err != nil {
		b.ResolveErrors.Add(1)
	}
}

// RecordReadSpectra implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReadSpectra(nspec int, duration time.Duration, err error) {
	b.SpectraCount.Add(1)
	b.SpectraRead.Add(int64(nspec))
	b.SpectraTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SpectraErrors.Add(1)
	}
}

// RecordReadZbest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReadZbest(rows int, duration time.Duration, err error) {
	b.ZbestCount.Add(1)
	b.ZbestRead.Add(int64(rows))
	b.ZbestTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ZbestErrors.Add(1)
	}
}

// RecordModel implements MetricsCollector.
func (b *BasicMetricsCollector) RecordModel(duration time.Duration, err error) {
	b.ModelCount.Add(1)
	b.ModelTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ModelErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ResolveCount:    b.ResolveCount.Load(),
		ResolveErrors:   b.ResolveErrors.Load(),
		ResolveProbes:   b.ResolveProbes.Load(),
		SpectraCount:    b.SpectraCount.Load(),
		SpectraErrors:   b.SpectraErrors.Load(),
		SpectraRead:     b.SpectraRead.Load(),
		SpectraAvgNanos: b.getAvgSpectraNanos(),
		ZbestCount:      b.ZbestCount.Load(),
		ZbestErrors:     b.ZbestErrors.Load(),
		ZbestRead:       b.ZbestRead.Load(),
		ZbestAvgNanos:   b.getAvgZbestNanos(),
		ModelCount:      b.ModelCount.Load(),
		ModelErrors:     b.ModelErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSpectraNanos() int64 {
	count := b.SpectraCount.Load()
	if count == 0 {
		return 0
	}
	return b.SpectraTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgZbestNanos() int64 {
	count := b.ZbestCount.Load()
	if count == 0 {
		return 0
	}
	return b.ZbestTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ResolveCount    int64
	ResolveErrors   int64
	ResolveProbes   int64
	SpectraCount    int64
	SpectraErrors   int64
	SpectraRead     int64
	SpectraAvgNanos int64
	ZbestCount      int64
	ZbestErrors     int64
	ZbestRead       int64
	ZbestAvgNanos   int64
	ModelCount      int64
	ModelErrors     int64
}
