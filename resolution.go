package desigo

// Resolution is the per-spectrum instrument resolution operator, a band
// sparse matrix stored in the diagonal layout of the spectroscopic pipeline:
// Data[d] holds the diagonal at offset Offsets[d], indexed by column, with
// offsets descending from +ndiag/2 to -ndiag/2. Entry (r, c) of the dense
// matrix is Data[d][c] where c-r equals Offsets[d].
type Resolution struct {
	NWave   int
	Offsets []int
	Data    [][]float64
}

// NewResolution builds a Resolution from diagonal data laid out as
// [ndiag][nwave]. The diagonal count must be odd so a central diagonal
// exists, and every row must have the same length.
func NewResolution(data [][]float64) (*Resolution, error) {
	ndiag := len(data)
	if ndiag == 0 || ndiag%2 == 0 {
		return nil, ErrEvenDiagonals
	}

	nwave := len(data[0])
	for d, row := range data {
		if len(row) != nwave {
			return nil, &ShapeError{HDU: "RESOLUTION", Want: []int{ndiag, nwave}, Got: []int{d, len(row)}}
		}
	}

	half := (ndiag - 1) / 2
	offsets := make([]int, ndiag)
	for d := range offsets {
		offsets[d] = half - d
	}

	return &Resolution{NWave: nwave, Offsets: offsets, Data: data}, nil
}

// IdentityResolution returns the identity operator with the given diagonal
// count, for which Matvec returns its input unchanged.
func IdentityResolution(nwave, ndiag int) *Resolution {
	data := make([][]float64, ndiag)
	for d := range data {
		data[d] = make([]float64, nwave)
	}
	for j := 0; j < nwave; j++ {
		data[(ndiag-1)/2][j] = 1
	}

	R, err := NewResolution(data)
	if err != nil {
		panic(err)
	}
	return R
}

// NDiag returns the number of stored diagonals.
func (R *Resolution) NDiag() int { return len(R.Data) }

// Matvec applies the operator to x, convolving a model flux vector with the
// instrument line spread. Columns falling outside the matrix are skipped, so
// the first and last few elements see a truncated kernel.
func (R *Resolution) Matvec(x []float64) ([]float64, error) {
	if len(x) != R.NWave {
		return nil, &GridError{Op: "resolution matvec", Want: R.NWave, Got: len(x)}
	}

	y := make([]float64, R.NWave)
	for d, off := range R.Offsets {
		row := R.Data[d]
		for r := 0; r < R.NWave; r++ {
			c := r + off
			if c < 0 || c >= R.NWave {
				continue
			}
			y[r] += row[c] * x[c]
		}
	}
	return y, nil
}

// Dense expands the operator to a dense [nwave][nwave] matrix. Intended for
// small matrices in diagnostics and tests.
func (R *Resolution) Dense() [][]float64 {
	A := make([][]float64, R.NWave)
	for r := range A {
		A[r] = make([]float64, R.NWave)
	}
	for d, off := range R.Offsets {
		for c := 0; c < R.NWave; c++ {
			r := c - off
			if r < 0 || r >= R.NWave {
				continue
			}
			A[r][c] = R.Data[d][c]
		}
	}
	return A
}
