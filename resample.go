package desigo

import "sort"

// Resample interpolates fp, sampled on the grid xp, onto the grid x using
// piecewise-linear interpolation. Points of x outside the range of xp clamp
// to the first or last value of fp. xp must be strictly increasing; x may be
// arbitrary. When x equals xp the result equals fp.
//
// These are the interpolation semantics the spectral pipeline assumes when a
// template model is moved onto an instrument wavelength grid.
func Resample(x, xp, fp []float64) ([]float64, error) {
	if len(xp) == 0 {
		return nil, &GridError{Op: "resample", Want: 1, Got: 0}
	}
	if len(xp) != len(fp) {
		return nil, &GridError{Op: "resample", Want: len(xp), Got: len(fp)}
	}

	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = interpAt(xi, xp, fp)
	}
	return out, nil
}

func interpAt(xi float64, xp, fp []float64) float64 {
	n := len(xp)
	if xi <= xp[0] {
		return fp[0]
	}
	if xi >= xp[n-1] {
		return fp[n-1]
	}

	// Index of the first grid point strictly above xi. The clamps above
	// guarantee 0 < j < n.
	j := sort.SearchFloat64s(xp, xi)
	if xp[j] == xi {
		return fp[j]
	}

	x0, x1 := xp[j-1], xp[j]
	f0, f1 := fp[j-1], fp[j]
	t := (xi - x0) / (x1 - x0)
	return f0 + t*(f1-f0)
}
