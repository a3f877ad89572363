package desigo

import (
	"fmt"

	"github.com/hupe1980/desigo/templates"
)

// RedshiftGrid maps a rest-frame wavelength grid into the observed
// frame: every wavelength is multiplied by (1 + z). For z = 0 the
// result equals wave exactly.
func RedshiftGrid(wave []float64, z float64) []float64 {
	out := make([]float64, len(wave))
	for i, w := range wave {
		out[i] = w * (1 + z)
	}
	return out
}

// ModelFlux reconstructs the observer-frame best-fit model flux for one
// spectrum: the coefficient-weighted basis sum, stretched by (1+z),
// resampled onto the instrument grid wave, then convolved with the
// spectrum's resolution operator R.
func ModelFlux(tpl *templates.Template, coeff []float64, z float64, wave []float64, R *Resolution) ([]float64, error) {
	rest, err := tpl.Eval(coeff)
	if err != nil {
		return nil, err
	}

	onGrid, err := Resample(wave, RedshiftGrid(tpl.Wave, z), rest)
	if err != nil {
		return nil, err
	}

	return R.Matvec(onGrid)
}

// BestModel reconstructs the best-fit model for spectrum row of s on
// every band, using the catalog fit and its matching template from
// lib. The catalog pads COEFF to a fixed width, so coefficients beyond
// the basis size are clipped before evaluation.
func BestModel(lib templates.Library, s *Spectra, fit ZbestRow, row int) (map[string][]float64, error) {
	tpl, ok := lib.For(fit.Spectype, fit.Subtype)
	if !ok {
		return nil, fmt.Errorf("template %s: %w", templates.FullType(fit.Spectype, fit.Subtype), ErrNotFound)
	}

	if row < 0 || row >= s.NumSpectra() {
		return nil, fmt.Errorf("spectrum row %d out of range [0,%d)", row, s.NumSpectra())
	}

	coeff := fit.Coeff
	if len(coeff) > tpl.NBasis() {
		coeff = coeff[:tpl.NBasis()]
	}

	models := make(map[string][]float64, len(s.bands))
	for _, name := range s.Bands() {
		b, err := s.Band(name)
		if err != nil {
			return nil, err
		}
		m, err := ModelFlux(tpl, coeff, fit.Z, b.Wave, b.Resolution[row])
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", name, err)
		}
		models[name] = m
	}
	return models, nil
}
