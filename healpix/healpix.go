package healpix

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/unit"
)

var (
	// ErrNside is returned for an nside that is not a power of two in the
	// supported range.
	ErrNside = errors.New("healpix: nside must be a power of two in [1, 2^29]")

	// ErrPixRange is returned for a pixel number outside [0, Npix).
	ErrPixRange = errors.New("healpix: pixel out of range")
)

// MaxOrder is the largest supported resolution order (nside = 2^MaxOrder),
// chosen so pixel numbers fit comfortably in an int64.
const MaxOrder = 29

// Base-face ring and phi offsets of the twelve HEALPix faces.
var (
	jrll = [12]int64{2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}
	jpll = [12]int64{1, 3, 5, 7, 0, 2, 4, 6, 1, 3, 5, 7}
)

// Pixelization is a HEALPix tessellation at one fixed nside.
type Pixelization struct {
	nside int64
	order int
	npix  int64
	ncap  int64
}

// New creates a Pixelization for the given nside. nside must be a power of
// two no larger than 2^29.
func New(nside int) (*Pixelization, error) {
	n := int64(nside)
	if n < 1 || n > 1<<MaxOrder || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNside, nside)
	}
	order := 0
	for 1<<order < nside {
		order++
	}
	return &Pixelization{
		nside: n,
		order: order,
		npix:  12 * n * n,
		ncap:  2 * n * (n - 1),
	}, nil
}

// Nside returns the resolution parameter.
func (p *Pixelization) Nside() int { return int(p.nside) }

// Npix returns the total pixel count, 12*nside^2.
func (p *Pixelization) Npix() int64 { return p.npix }

// Ang2pixRing returns the ring-ordered pixel containing the direction
// (theta, phi).
func (p *Pixelization) Ang2pixRing(theta, phi float64) int64 {
	z := math.Cos(theta)
	za := math.Abs(z)
	tt := normalizePhi(phi) / (math.Pi / 2) // in [0,4)

	if za <= 2.0/3.0 {
		// Equatorial region.
		temp1 := float64(p.nside) * (0.5 + tt)
		temp2 := float64(p.nside) * z * 0.75
		jp := int64(temp1 - temp2) // ascending edge line
		jm := int64(temp1 + temp2) // descending edge line

		ir := p.nside + 1 + jp - jm // ring number, 1..2*nside+1
		kshift := 1 - ir&1

		ip := (jp + jm - p.nside + kshift + 1) / 2
		ip %= 4 * p.nside

		return p.ncap + (ir-1)*4*p.nside + ip
	}

	// Polar caps.
	tp := tt - math.Floor(tt)
	tmp := float64(p.nside) * math.Sqrt(3*(1-za))
	jp := int64(tp * tmp)
	jm := int64((1 - tp) * tmp)

	ir := jp + jm + 1 // ring number counted from the closest pole
	ip := int64(tt * float64(ir))
	ip %= 4 * ir

	if z > 0 {
		return 2*ir*(ir-1) + ip
	}
	return p.npix - 2*ir*(ir+1) + ip
}

// Ang2pixNested returns the nested-ordered pixel containing the direction
// (theta, phi).
func (p *Pixelization) Ang2pixNested(theta, phi float64) int64 {
	z := math.Cos(theta)
	za := math.Abs(z)
	tt := normalizePhi(phi) / (math.Pi / 2)

	var face, ix, iy int64
	if za <= 2.0/3.0 {
		temp1 := float64(p.nside) * (0.5 + tt)
		temp2 := float64(p.nside) * z * 0.75
		jp := int64(temp1 - temp2)
		jm := int64(temp1 + temp2)

		ifp := jp >> p.order // in {0,4}
		ifm := jm >> p.order
		switch {
		case ifp == ifm:
			face = ifp&3 + 4
		case ifp < ifm:
			face = ifp & 3
		default:
			face = ifm&3 + 8
		}

		ix = jm & (p.nside - 1)
		iy = p.nside - jp&(p.nside-1) - 1
	} else {
		ntt := int64(tt)
		if ntt >= 4 {
			ntt = 3
		}
		tp := tt - float64(ntt)
		tmp := float64(p.nside) * math.Sqrt(3*(1-za))
		jp := int64(tp * tmp)
		jm := int64((1 - tp) * tmp)
		if jp >= p.nside {
			jp = p.nside - 1
		}
		if jm >= p.nside {
			jm = p.nside - 1
		}

		if z >= 0 {
			face = ntt
			ix = p.nside - jm - 1
			iy = p.nside - jp - 1
		} else {
			face = ntt + 8
			ix = jp
			iy = jm
		}
	}

	return face*p.nside*p.nside + interleave(ix, iy)
}

// Pix2angRing returns the center direction of a ring-ordered pixel.
func (p *Pixelization) Pix2angRing(pix int64) (theta, phi float64, err error) {
	if pix < 0 || pix >= p.npix {
		return 0, 0, fmt.Errorf("%w: %d", ErrPixRange, pix)
	}

	ns2 := float64(p.nside) * float64(p.nside)
	switch {
	case pix < p.ncap:
		// North polar cap.
		iring := (1 + isqrt(1+2*pix)) >> 1
		iphi := pix + 1 - 2*iring*(iring-1)

		z := 1 - float64(iring*iring)/(3*ns2)
		return math.Acos(z), (float64(iphi) - 0.5) * math.Pi / (2 * float64(iring)), nil

	case pix < p.npix-p.ncap:
		// Equatorial region.
		ip := pix - p.ncap
		iring := ip/(4*p.nside) + p.nside
		iphi := ip%(4*p.nside) + 1

		fodd := 0.5
		if (iring+p.nside)&1 == 1 {
			fodd = 1.0
		}

		z := float64(2*p.nside-iring) * 2 / (3 * float64(p.nside))
		return math.Acos(z), (float64(iphi) - fodd) * math.Pi / (2 * float64(p.nside)), nil

	default:
		// South polar cap.
		ip := p.npix - pix
		iring := (1 + isqrt(2*ip-1)) >> 1
		iphi := 4*iring + 1 - (ip - 2*iring*(iring-1))

		z := -1 + float64(iring*iring)/(3*ns2)
		return math.Acos(z), (float64(iphi) - 0.5) * math.Pi / (2 * float64(iring)), nil
	}
}

// Pix2angNested returns the center direction of a nested-ordered pixel.
func (p *Pixelization) Pix2angNested(pix int64) (theta, phi float64, err error) {
	if pix < 0 || pix >= p.npix {
		return 0, 0, fmt.Errorf("%w: %d", ErrPixRange, pix)
	}

	face, ix, iy := p.nestToXYF(pix)
	jr := jrll[face]*p.nside - ix - iy - 1

	var nr, kshift int64
	var z float64
	switch {
	case jr < p.nside:
		nr = jr
		z = 1 - float64(nr*nr)/(3*float64(p.nside)*float64(p.nside))
	case jr > 3*p.nside:
		nr = 4*p.nside - jr
		z = float64(nr*nr)/(3*float64(p.nside)*float64(p.nside)) - 1
	default:
		nr = p.nside
		kshift = (jr - p.nside) & 1
		z = float64(2*p.nside-jr) * 2 / (3 * float64(p.nside))
	}

	jp := (jpll[face]*nr + ix - iy + 1 + kshift) / 2
	if jp > 4*nr {
		jp -= 4 * nr
	}
	if jp < 1 {
		jp += 4 * nr
	}

	return math.Acos(z), (float64(jp) - float64(kshift+1)*0.5) * math.Pi / (2 * float64(nr)), nil
}

// NestedToRing converts a nested-ordered pixel number to ring ordering.
func (p *Pixelization) NestedToRing(pix int64) (int64, error) {
	if pix < 0 || pix >= p.npix {
		return 0, fmt.Errorf("%w: %d", ErrPixRange, pix)
	}

	face, ix, iy := p.nestToXYF(pix)
	jr := jrll[face]*p.nside - ix - iy - 1

	var nr, nBefore, kshift int64
	switch {
	case jr < p.nside:
		nr = jr
		nBefore = 2 * nr * (nr - 1)
	case jr > 3*p.nside:
		nr = 4*p.nside - jr
		nBefore = p.npix - 2*(nr+1)*nr
	default:
		nr = p.nside
		nBefore = p.ncap + (jr-p.nside)*4*p.nside
		kshift = (jr - p.nside) & 1
	}

	jp := (jpll[face]*nr + ix - iy + 1 + kshift) / 2
	if jp > 4*nr {
		jp -= 4 * nr
	}
	if jp < 1 {
		jp += 4 * nr
	}

	return nBefore + jp - 1, nil
}

// RingToNested converts a ring-ordered pixel number to nested ordering.
func (p *Pixelization) RingToNested(pix int64) (int64, error) {
	if pix < 0 || pix >= p.npix {
		return 0, fmt.Errorf("%w: %d", ErrPixRange, pix)
	}

	var iring, iphi, nr, kshift, face int64
	switch {
	case pix < p.ncap:
		// North polar cap.
		iring = (1 + isqrt(1+2*pix)) >> 1
		iphi = pix + 1 - 2*iring*(iring-1)
		nr = iring
		face = (iphi - 1) / iring

	case pix < p.npix-p.ncap:
		// Equatorial region.
		ip := pix - p.ncap
		iring = ip/(4*p.nside) + p.nside
		iphi = ip%(4*p.nside) + 1
		kshift = (iring + p.nside) & 1
		nr = p.nside

		ire := iring - p.nside + 1
		irm := 2*p.nside + 2 - ire
		ifm := (iphi - ire/2 + p.nside - 1) / p.nside
		ifp := (iphi - irm/2 + p.nside - 1) / p.nside
		switch {
		case ifp == ifm:
			face = ifp&3 + 4
		case ifp < ifm:
			face = ifp
		default:
			face = ifm + 8
		}

	default:
		// South polar cap.
		ip := p.npix - pix
		irs := (1 + isqrt(2*ip-1)) >> 1
		iphi = 4*irs + 1 - (ip - 2*irs*(irs-1))
		nr = irs
		iring = 4*p.nside - irs
		face = 8 + (iphi-1)/irs
	}

	irt := iring - jrll[face]*p.nside + 1
	ipt := 2*iphi - jpll[face]*nr - kshift - 1
	if ipt >= 2*p.nside {
		ipt -= 8 * p.nside
	}

	ix := (ipt - irt) >> 1
	iy := (-ipt - irt) >> 1

	return face*p.nside*p.nside + interleave(ix, iy), nil
}

// RADecToNested returns the nested pixel containing the given equatorial
// coordinates, the form the pixel-grouped spectra layout is keyed by.
func (p *Pixelization) RADecToNested(ra unit.RA, dec unit.Angle) int64 {
	theta, phi := RADecToAng(ra, dec)
	return p.Ang2pixNested(theta, phi)
}

// RADecToRing is the ring-ordered counterpart of RADecToNested.
func (p *Pixelization) RADecToRing(ra unit.RA, dec unit.Angle) int64 {
	theta, phi := RADecToAng(ra, dec)
	return p.Ang2pixRing(theta, phi)
}

// RADecToAng converts equatorial coordinates to the (colatitude, longitude)
// convention used by the pixelization.
func RADecToAng(ra unit.RA, dec unit.Angle) (theta, phi float64) {
	return math.Pi/2 - dec.Rad(), ra.Rad()
}

func (p *Pixelization) nestToXYF(pix int64) (face, ix, iy int64) {
	npface := p.nside * p.nside
	face = pix / npface
	ipf := pix % npface
	return face, compress(ipf), compress(ipf >> 1)
}

// interleave merges the bits of ix and iy into the Z-order index with ix on
// the even bits.
func interleave(ix, iy int64) int64 {
	return spread(ix) | spread(iy)<<1
}

func spread(v int64) int64 {
	x := uint64(v) & 0xffffffff
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return int64(x)
}

func compress(v int64) int64 {
	x := uint64(v) & 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0f0f0f0f0f0f0f0f
	x = (x | x>>4) & 0x00ff00ff00ff00ff
	x = (x | x>>8) & 0x0000ffff0000ffff
	x = (x | x>>16) & 0x00000000ffffffff
	return int64(x)
}

func normalizePhi(phi float64) float64 {
	phi = math.Mod(phi, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi
}

// isqrt returns the integer square root of v.
func isqrt(v int64) int64 {
	r := int64(math.Sqrt(float64(v) + 0.5))
	// Guard against floating rounding near perfect squares.
	for r*r > v {
		r--
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}
