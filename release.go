package desigo

import (
	"fmt"
	"path"
	"strings"
)

// Release builds store-relative paths inside one spectroscopic
// production. The layout follows the published data model: per-petal
// tile coadds live under tiles/<tile>/<night>/ and healpix-grouped
// spectra under spectra-<nside>/<group>/<pixel>/, each next to its
// redshift catalog.
type Release struct {
	// Prod is the production name, e.g. "fuji" or "guadalupe".
	Prod string
}

// HealpixGroup returns the directory group a healpix pixel belongs to.
// The layout buckets pixels by floor division, so pixel 2586 lives in
// group 25.
func HealpixGroup(pixel int) int {
	return pixel / 100
}

func (r Release) tileDir(tile, night int) string {
	return fmt.Sprintf("%s/tiles/%d/%d", r.Prod, tile, night)
}

func (r Release) healpixDir(nside, pixel int) string {
	return fmt.Sprintf("%s/spectra-%d/%d/%d", r.Prod, nside, HealpixGroup(pixel), pixel)
}

// CoaddPath returns the per-petal coadd file under the tile layout.
func (r Release) CoaddPath(tile, night, petal int) string {
	return fmt.Sprintf("%s/coadd-%d-%d-%d.fits", r.tileDir(tile, night), petal, tile, night)
}

// SpectraPath returns the grouped spectra file under the healpix layout.
func (r Release) SpectraPath(nside, pixel int) string {
	return fmt.Sprintf("%s/spectra-%d-%d.fits", r.healpixDir(nside, pixel), nside, pixel)
}

// CoaddCandidates lists the names a coadd may be stored under, in probe
// order. Productions may compress files in place, so the plain name is
// followed by its gzip twin.
func (r Release) CoaddCandidates(tile, night, petal int) []string {
	return withGzTwin(r.CoaddPath(tile, night, petal))
}

// SpectraCandidates lists the names a grouped spectra file may be
// stored under, in probe order.
func (r Release) SpectraCandidates(nside, pixel int) []string {
	return withGzTwin(r.SpectraPath(nside, pixel))
}

// ZbestTileCandidates lists the redshift catalog names next to a
// per-petal coadd, in probe order. Early productions call the file
// zbest-*, later ones redrock-*, and either may carry a .gz suffix.
func (r Release) ZbestTileCandidates(tile, night, petal int) []string {
	stem := fmt.Sprintf("%d-%d-%d", petal, tile, night)
	return catalogCandidates(r.tileDir(tile, night), stem)
}

// ZbestHealpixCandidates lists the redshift catalog names next to a
// grouped spectra file, in probe order.
func (r Release) ZbestHealpixCandidates(nside, pixel int) []string {
	stem := fmt.Sprintf("%d-%d", nside, pixel)
	return catalogCandidates(r.healpixDir(nside, pixel), stem)
}

// CatalogCandidatesFor derives the redshift catalog names that sit next
// to a spectra or coadd file named explicitly. The data model pairs
// files by swapping the leading product tag, so .../coadd-0-80605-20210205.fits
// has its catalog at zbest-0-80605-20210205.fits in the same directory.
// Names that are not coadd or spectra files yield nil.
func CatalogCandidatesFor(name string) []string {
	dir, base := path.Split(name)
	dir = strings.TrimSuffix(dir, "/")
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".fits")
	for _, tag := range []string{"coadd-", "spectra-"} {
		if stem, ok := strings.CutPrefix(base, tag); ok {
			return catalogCandidates(dir, stem)
		}
	}
	return nil
}

func catalogCandidates(dir, stem string) []string {
	names := make([]string, 0, 4)
	for _, base := range []string{"zbest", "redrock"} {
		for _, ext := range []string{".fits", ".fits.gz"} {
			name := fmt.Sprintf("%s-%s%s", base, stem, ext)
			if dir != "" {
				name = dir + "/" + name
			}
			names = append(names, name)
		}
	}
	return names
}

func withGzTwin(name string) []string {
	return []string{name, name + ".gz"}
}
