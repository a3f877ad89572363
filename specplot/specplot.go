// Package specplot renders spectra and best-fit models as plots.
//
// Plots are built with gonum/plot and saved in any format the file
// extension selects (.png, .svg, .pdf):
//
//	p, err := specplot.Overlay(spectra, row, model, specplot.WithSmoothing(11))
//	if err != nil {
//		return err
//	}
//	return specplot.Save(p, "target.png")
package specplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hupe1980/desigo"
)

type options struct {
	smooth    int
	title     string
	errorBand bool
	maskGaps  bool
}

// Option configures how a plot is rendered.
type Option func(*options)

// WithSmoothing applies a centered moving average of the given window
// to the data lines. The model overlay is never smoothed.
func WithSmoothing(window int) Option {
	return func(o *options) {
		if window > 1 {
			o.smooth = window
		}
	}
}

// WithTitle replaces the default TARGETID title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithErrorBand shades one standard deviation around the data, taken
// from the inverse variance. Bins without a positive ivar collapse to
// zero width.
func WithErrorBand() Option {
	return func(o *options) {
		o.errorBand = true
	}
}

// WithMaskGaps breaks the data lines at bins whose mask is nonzero, so
// flagged pixels are not drawn.
func WithMaskGaps() Option {
	return func(o *options) {
		o.maskGaps = true
	}
}

// Colors follow the usual blue, green, red convention for the three
// camera arms.
var bandColors = map[string]color.RGBA{
	"B": {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"R": {R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	"Z": {R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

func bandColor(band string) color.RGBA {
	if c, ok := bandColors[band]; ok {
		return c
	}
	return color.RGBA{A: 0xff}
}

// Spectrum plots the flux of one spectrum, one line per band.
func Spectrum(s *desigo.Spectra, row int, optFns ...Option) (*plot.Plot, error) {
	return Overlay(s, row, nil, optFns...)
}

// Overlay plots the flux of one spectrum with a best-fit model drawn
// on top of it. A nil model plots the data alone.
func Overlay(s *desigo.Spectra, row int, model map[string][]float64, optFns ...Option) (*plot.Plot, error) {
	if row < 0 || row >= s.NumSpectra() {
		return nil, fmt.Errorf("row %d out of range [0,%d)", row, s.NumSpectra())
	}

	opts := options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.title == "" {
		opts.title = fmt.Sprintf("TARGETID %d", s.Fibermap.Rows[row].TargetID)
	}

	p := plot.New()
	p.Title.Text = opts.title
	p.X.Label.Text = "Wavelength (Angstrom)"
	p.Y.Label.Text = "Flux"
	p.BackgroundColor = color.White

	for _, name := range s.Bands() {
		band, err := s.Band(name)
		if err != nil {
			return nil, err
		}
		flux := Smooth(band.Flux[row], opts.smooth)

		if opts.errorBand {
			if pts, ok := errorPolygon(band.Wave, flux, band.Ivar[row], band.Mask[row], opts.maskGaps); ok {
				poly, err := plotter.NewPolygon(pts)
				if err != nil {
					return nil, fmt.Errorf("band %s: %w", name, err)
				}
				c := bandColor(name)
				poly.Color = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0x55}
				poly.LineStyle.Width = 0
				p.Add(poly)
			}
		}

		labeled := false
		for _, seg := range segments(band.Wave, flux, band.Mask[row], opts.maskGaps) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return nil, fmt.Errorf("band %s: %w", name, err)
			}
			line.Color = bandColor(name)
			p.Add(line)
			if !labeled {
				p.Legend.Add(name, line)
				labeled = true
			}
		}
	}

	if model != nil {
		labeled := false
		for _, name := range s.Bands() {
			flux, ok := model[name]
			if !ok {
				continue
			}
			band, err := s.Band(name)
			if err != nil {
				return nil, err
			}
			if len(flux) != band.NWave() {
				return nil, fmt.Errorf("band %s: model has %d bins, band has %d", name, len(flux), band.NWave())
			}

			line, err := plotter.NewLine(points(band.Wave, flux))
			if err != nil {
				return nil, fmt.Errorf("band %s model: %w", name, err)
			}
			line.Color = color.Black
			line.LineStyle.Width = vg.Points(1.5)
			p.Add(line)
			if !labeled {
				p.Legend.Add("model", line)
				labeled = true
			}
		}
	}

	return p, nil
}

// Save writes the plot to path. The format follows the file extension.
func Save(p *plot.Plot, path string) error {
	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

// Smooth returns a centered moving average of flux over the given
// window. Windows below 2 copy the values unchanged.
func Smooth(flux []float32, window int) []float64 {
	out := make([]float64, len(flux))
	if window < 2 {
		for i, v := range flux {
			out[i] = float64(v)
		}
		return out
	}
	half := window / 2
	for i := range flux {
		lo := max(i-half, 0)
		hi := min(i+half+1, len(flux))
		var sum float64
		for j := lo; j < hi; j++ {
			sum += float64(flux[j])
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func points(wave, flux []float64) plotter.XYs {
	pts := make(plotter.XYs, len(wave))
	for i := range wave {
		pts[i].X = wave[i]
		pts[i].Y = flux[i]
	}
	return pts
}

// segments splits the data line at masked bins. Without gaps the whole
// band is one segment.
func segments(wave, flux []float64, mask []int32, gaps bool) []plotter.XYs {
	if !gaps {
		return []plotter.XYs{points(wave, flux)}
	}
	var segs []plotter.XYs
	var cur plotter.XYs
	for i := range wave {
		if mask[i] != 0 {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: wave[i], Y: flux[i]})
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// errorPolygon traces flux plus sigma left to right and flux minus
// sigma back, with sigma = 1/sqrt(ivar). The second return is false
// when no bin has a usable ivar.
func errorPolygon(wave, flux []float64, ivar []float32, mask []int32, gaps bool) (plotter.XYs, bool) {
	upper := make(plotter.XYs, len(wave))
	lower := make(plotter.XYs, len(wave))
	shaded := false
	for i := range wave {
		sigma := 0.0
		if ivar[i] > 0 && !(gaps && mask[i] != 0) {
			sigma = 1 / math.Sqrt(float64(ivar[i]))
			shaded = true
		}
		upper[i] = plotter.XY{X: wave[i], Y: flux[i] + sigma}
		lower[i] = plotter.XY{X: wave[i], Y: flux[i] - sigma}
	}
	if !shaded {
		return nil, false
	}
	pts := make(plotter.XYs, 0, 2*len(wave))
	pts = append(pts, upper...)
	for i := len(lower) - 1; i >= 0; i-- {
		pts = append(pts, lower[i])
	}
	return pts, true
}
