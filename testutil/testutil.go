package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// FillUniformRange32 is FillUniformRange for float32 data, the on-disk
// type of flux and inverse-variance arrays.
func (r *RNG) FillUniformRange32(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// TargetIDs generates n distinct positive target identifiers.
func (r *RNG) TargetIDs(n int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]struct{}, n)
	ids := make([]int64, 0, n)
	for len(ids) < n {
		id := r.rand.Int63n(1 << 40)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// WaveGrid returns the regular grid lo, lo+step, ... up to and
// including hi when hi lands on the grid.
func WaveGrid(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	if n < 1 {
		return nil
	}
	wave := make([]float64, n)
	for i := range wave {
		wave[i] = lo + float64(i)*step
	}
	return wave
}

// IdentityResolutionCube builds a [nspec][ndiag][nwave] resolution cube
// whose per-spectrum matrices are the identity. ndiag must be odd.
func IdentityResolutionCube(nspec, ndiag, nwave int) [][][]float32 {
	cube := make([][][]float32, nspec)
	for s := range cube {
		cube[s] = make([][]float32, ndiag)
		for d := range cube[s] {
			row := make([]float32, nwave)
			if d == ndiag/2 {
				for w := range row {
					row[w] = 1
				}
			}
			cube[s][d] = row
		}
	}
	return cube
}

// GaussianResolutionCube builds a [nspec][ndiag][nwave] resolution cube
// with a Gaussian line-spread profile of width sigma (in bins), the
// same for every wavelength column. Each column sums to 1.
func GaussianResolutionCube(nspec, ndiag, nwave int, sigma float64) [][][]float32 {
	weights := make([]float64, ndiag)
	var sum float64
	for d := range weights {
		off := float64((ndiag-1)/2 - d)
		weights[d] = math.Exp(-off * off / (2 * sigma * sigma))
		sum += weights[d]
	}
	for d := range weights {
		weights[d] /= sum
	}

	cube := make([][][]float32, nspec)
	for s := range cube {
		cube[s] = make([][]float32, ndiag)
		for d := range cube[s] {
			row := make([]float32, nwave)
			for w := range row {
				row[w] = float32(weights[d])
			}
			cube[s][d] = row
		}
	}
	return cube
}

// Band generates one arm of synthetic spectra over wave: uniform flux,
// near-unit inverse variance, clean masks, and a Gaussian resolution.
func (r *RNG) Band(name string, wave []float64, nspec, ndiag int) Band {
	flux := make([][]float32, nspec)
	ivar := make([][]float32, nspec)
	mask := make([][]int32, nspec)
	for s := 0; s < nspec; s++ {
		flux[s] = make([]float32, len(wave))
		r.FillUniformRange32(flux[s], 0.5, 5)
		ivar[s] = make([]float32, len(wave))
		r.FillUniformRange32(ivar[s], 0.9, 1.1)
		mask[s] = make([]int32, len(wave))
	}
	return Band{
		Name:       name,
		Wave:       wave,
		Flux:       flux,
		Ivar:       ivar,
		Mask:       mask,
		Resolution: GaussianResolutionCube(nspec, ndiag, len(wave), 1.2),
	}
}
