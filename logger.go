package desigo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with desigo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithProd adds the production name to the logger.
func (l *Logger) WithProd(prod string) *Logger {
	return &Logger{
		Logger: l.Logger.With("prod", prod),
	}
}

// WithTile adds tile and night fields to the logger.
func (l *Logger) WithTile(tile, night int) *Logger {
	return &Logger{
		Logger: l.Logger.With("tile", tile, "night", night),
	}
}

// WithHealpix adds nside and pixel fields to the logger.
func (l *Logger) WithHealpix(nside, pixel int) *Logger {
	return &Logger{
		Logger: l.Logger.With("nside", nside, "pixel", pixel),
	}
}

// WithTargetID adds a target identifier field to the logger.
func (l *Logger) WithTargetID(id int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("targetid", id),
	}
}

// LogResolve logs the probe for a product file among its candidate names.
func (l *Logger) LogResolve(ctx context.Context, name string, probes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resolve failed",
			"name", name,
			"probes", probes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "resolve completed",
			"name", name,
			"probes", probes,
		)
	}
}

// LogReadSpectra logs a spectra read.
func (l *Logger) LogReadSpectra(ctx context.Context, name string, nspec, bands int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read spectra failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read spectra completed",
			"name", name,
			"nspec", nspec,
			"bands", bands,
		)
	}
}

// LogReadZbest logs a redshift catalog read.
func (l *Logger) LogReadZbest(ctx context.Context, name string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read zbest failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read zbest completed",
			"name", name,
			"rows", rows,
		)
	}
}

// LogModel logs a best-fit model reconstruction.
func (l *Logger) LogModel(ctx context.Context, targetID int64, fullType string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model reconstruction failed",
			"targetid", targetID,
			"template", fullType,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "model reconstruction completed",
			"targetid", targetID,
			"template", fullType,
		)
	}
}

// LogTemplates logs loading of the redrock template library.
func (l *Logger) LogTemplates(ctx context.Context, dir string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "template load failed",
			"dir", dir,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "template library loaded",
			"dir", dir,
			"templates", count,
		)
	}
}
