package desigo

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/hupe1980/desigo/blobstore"
)

var (
	// ErrNotFound is returned when a product file or HDU does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingEnv is returned when the release cannot be resolved because
	// the environment is not configured.
	ErrMissingEnv = errors.New("environment not configured")

	// ErrNoSuchBand is returned when a spectra product has no arrays for the
	// requested camera band.
	ErrNoSuchBand = errors.New("no such band")

	// ErrEvenDiagonals is returned for a resolution matrix with an even
	// diagonal count, which has no central diagonal.
	ErrEvenDiagonals = errors.New("resolution: diagonal count must be odd")
)

// ShapeError indicates an HDU whose dimensions disagree with the rest of the
// product (e.g. a flux array with more rows than the fibermap).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ShapeError struct {
	HDU   string
	Want  []int
	Got   []int
	cause error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %v, got %v", e.HDU, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error { return e.cause }

// GridError indicates inconsistent wavelength grid or vector lengths.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type GridError struct {
	Op    string
	Want  int
	Got   int
	cause error
}

func (e *GridError) Error() string {
	return fmt.Sprintf("%s: grid length mismatch: want %d, got %d", e.Op, e.Want, e.Got)
}

func (e *GridError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification. blobstore.ErrNotFound maps to fs.ErrNotExist,
	// so one check covers sources and plain file access.
	if errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
