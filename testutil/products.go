package testutil

import (
	"bytes"
	"fmt"

	"github.com/astrogo/fitsio"
	"github.com/klauspost/compress/gzip"
)

// Target is one fibermap row of a synthetic product.
type Target struct {
	TargetID   int64
	RA         float64
	Dec        float64
	DesiTarget int64
	BGSTarget  int64
	MWSTarget  int64
	Fiber      int32
	ExpID      int32
	Night      int32
	TileID     int32
	Petal      int16
}

// Band is one optical arm of a synthetic spectra product. Flux, Ivar
// and Mask are [nspec][nwave]; Resolution is [nspec][ndiag][nwave].
type Band struct {
	Name       string
	Wave       []float64
	Flux       [][]float32
	Ivar       [][]float32
	Mask       [][]int32
	Resolution [][][]float32
}

// Redshift is one row of a synthetic redshift catalog.
type Redshift struct {
	TargetID  int64
	Z         float64
	ZErr      float64
	ZWarn     int64
	Chi2      float64
	DeltaChi2 float64
	Spectype  string
	Subtype   string
	Coeff     []float64
}

// TemplateSpec describes a synthetic template basis file.
type TemplateSpec struct {
	Type    string
	Subtype string
	Wave0   float64
	Step    float64
	LogWave bool
	Basis   [][]float64
}

type fibermapRow struct {
	TargetID   int64   `fits:"TARGETID"`
	TargetRA   float64 `fits:"TARGET_RA"`
	TargetDec  float64 `fits:"TARGET_DEC"`
	DesiTarget int64   `fits:"DESI_TARGET"`
	BGSTarget  int64   `fits:"BGS_TARGET"`
	MWSTarget  int64   `fits:"MWS_TARGET"`
	Fiber      int32   `fits:"FIBER"`
	ExpID      int32   `fits:"EXPID"`
	Night      int32   `fits:"NIGHT"`
	TileID     int32   `fits:"TILEID"`
	PetalLoc   int16   `fits:"PETAL_LOC"`
}

type redshiftRow struct {
	TargetID  int64     `fits:"TARGETID"`
	Chi2      float64   `fits:"CHI2"`
	Coeff     []float64 `fits:"COEFF"`
	Z         float64   `fits:"Z"`
	ZErr      float64   `fits:"ZERR"`
	ZWarn     int64     `fits:"ZWARN"`
	Spectype  string    `fits:"SPECTYPE"`
	Subtype   string    `fits:"SUBTYPE"`
	DeltaChi2 float64   `fits:"DELTACHI2"`
}

func withFITS(build func(f *fitsio.File) error) ([]byte, error) {
	var buf bytes.Buffer
	f, err := fitsio.Create(&buf)
	if err != nil {
		return nil, err
	}

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return nil, err
	}
	if err := f.Write(phdu); err != nil {
		return nil, err
	}

	if err := build(f); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeImage(f *fitsio.File, name string, bitpix int, axes []int, data interface{}, cards ...fitsio.Card) error {
	img := fitsio.NewImage(bitpix, axes)
	defer img.Close()

	all := append([]fitsio.Card{{Name: "EXTNAME", Value: name}}, cards...)
	if err := img.Header().Append(all...); err != nil {
		return err
	}
	if err := img.Write(data); err != nil {
		return err
	}
	return f.Write(img)
}

func writeFibermap(f *fitsio.File, targets []Target) error {
	tbl, err := fitsio.NewTable("FIBERMAP", []fitsio.Column{
		{Name: "TARGETID", Format: "K"},
		{Name: "TARGET_RA", Format: "D", Unit: "deg"},
		{Name: "TARGET_DEC", Format: "D", Unit: "deg"},
		{Name: "DESI_TARGET", Format: "K"},
		{Name: "BGS_TARGET", Format: "K"},
		{Name: "MWS_TARGET", Format: "K"},
		{Name: "FIBER", Format: "J"},
		{Name: "EXPID", Format: "J"},
		{Name: "NIGHT", Format: "J"},
		{Name: "TILEID", Format: "J"},
		{Name: "PETAL_LOC", Format: "I"},
	}, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()

	for _, t := range targets {
		row := fibermapRow{
			TargetID:   t.TargetID,
			TargetRA:   t.RA,
			TargetDec:  t.Dec,
			DesiTarget: t.DesiTarget,
			BGSTarget:  t.BGSTarget,
			MWSTarget:  t.MWSTarget,
			Fiber:      t.Fiber,
			ExpID:      t.ExpID,
			Night:      t.Night,
			TileID:     t.TileID,
			PetalLoc:   t.Petal,
		}
		if err := tbl.Write(&row); err != nil {
			return err
		}
	}
	return f.Write(tbl)
}

func writeBand(f *fitsio.File, b Band) error {
	nspec := len(b.Flux)
	nwave := len(b.Wave)

	err := writeImage(f, b.Name+"_WAVELENGTH", -64, []int{nwave}, b.Wave,
		fitsio.Card{Name: "BUNIT", Value: "Angstrom"})
	if err != nil {
		return err
	}
	if err := writeImage(f, b.Name+"_FLUX", -32, []int{nwave, nspec}, flatten32(b.Flux)); err != nil {
		return err
	}
	if err := writeImage(f, b.Name+"_IVAR", -32, []int{nwave, nspec}, flatten32(b.Ivar)); err != nil {
		return err
	}
	if err := writeImage(f, b.Name+"_MASK", 32, []int{nwave, nspec}, flattenInt32(b.Mask)); err != nil {
		return err
	}

	ndiag := 0
	if nspec > 0 {
		ndiag = len(b.Resolution[0])
	}
	return writeImage(f, b.Name+"_RESOLUTION", -32, []int{nwave, ndiag, nspec}, flattenCube32(b.Resolution))
}

func writeRedshifts(f *fitsio.File, extname string, fits []Redshift) error {
	tbl, err := fitsio.NewTable(extname, []fitsio.Column{
		{Name: "TARGETID", Format: "K"},
		{Name: "CHI2", Format: "D"},
		{Name: "COEFF", Format: "10D"},
		{Name: "Z", Format: "D"},
		{Name: "ZERR", Format: "D"},
		{Name: "ZWARN", Format: "K"},
		{Name: "SPECTYPE", Format: "6A"},
		{Name: "SUBTYPE", Format: "20A"},
		{Name: "DELTACHI2", Format: "D"},
	}, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()

	for _, z := range fits {
		coeff := make([]float64, 10)
		copy(coeff, z.Coeff)
		row := redshiftRow{
			TargetID:  z.TargetID,
			Chi2:      z.Chi2,
			Coeff:     coeff,
			Z:         z.Z,
			ZErr:      z.ZErr,
			ZWarn:     z.ZWarn,
			Spectype:  z.Spectype,
			Subtype:   z.Subtype,
			DeltaChi2: z.DeltaChi2,
		}
		if err := tbl.Write(&row); err != nil {
			return err
		}
	}
	return f.Write(tbl)
}

// SpectraFITS builds a spectra product (a coadd or a healpix-grouped
// spectra file): a FIBERMAP table plus per-band wavelength, flux, ivar,
// mask and resolution HDUs.
func SpectraFITS(targets []Target, bands []Band) ([]byte, error) {
	return withFITS(func(f *fitsio.File) error {
		if err := writeFibermap(f, targets); err != nil {
			return err
		}
		for _, b := range bands {
			if err := writeBand(f, b); err != nil {
				return err
			}
		}
		return nil
	})
}

// ZbestFITS builds a redshift catalog with the fit table under extname
// ("ZBEST" or "REDSHIFTS") followed by the matching FIBERMAP.
func ZbestFITS(extname string, fits []Redshift, targets []Target) ([]byte, error) {
	return withFITS(func(f *fitsio.File) error {
		if err := writeRedshifts(f, extname, fits); err != nil {
			return err
		}
		return writeFibermap(f, targets)
	})
}

// TemplateFITS builds a template basis file: a BASIS_VECTORS image of
// shape [nbasis][nwave] carrying the rest-frame grid keywords.
func TemplateFITS(spec TemplateSpec) ([]byte, error) {
	nbasis := len(spec.Basis)
	if nbasis == 0 {
		return nil, fmt.Errorf("testutil: template needs at least one basis vector")
	}
	nwave := len(spec.Basis[0])

	flat := make([]float64, 0, nbasis*nwave)
	for _, v := range spec.Basis {
		if len(v) != nwave {
			return nil, fmt.Errorf("testutil: ragged basis: want %d samples, got %d", nwave, len(v))
		}
		flat = append(flat, v...)
	}

	loglam := 0
	if spec.LogWave {
		loglam = 1
	}

	return withFITS(func(f *fitsio.File) error {
		return writeImage(f, "BASIS_VECTORS", -64, []int{nwave, nbasis}, flat,
			fitsio.Card{Name: "RRTYPE", Value: spec.Type},
			fitsio.Card{Name: "RRSUBTYP", Value: spec.Subtype},
			fitsio.Card{Name: "RRVER", Value: "0.1"},
			fitsio.Card{Name: "CRVAL1", Value: spec.Wave0},
			fitsio.Card{Name: "CDELT1", Value: spec.Step},
			fitsio.Card{Name: "LOGLAM", Value: loglam},
		)
	})
}

// Gzip compresses data, for exercising the .fits.gz fallback.
func Gzip(data []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func flatten32(m [][]float32) []float32 {
	var out []float32
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

func flattenInt32(m [][]int32) []int32 {
	var out []int32
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

func flattenCube32(cube [][][]float32) []float32 {
	var out []float32
	for _, plane := range cube {
		for _, row := range plane {
			out = append(out, row...)
		}
	}
	return out
}
