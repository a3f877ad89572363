package targetcut

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed targetmask.yaml
var targetmaskYAML []byte

// Mask is a targeting bitmask value, as stored in a fibermap column.
type Mask int64

// Has reports whether m shares at least one bit with other.
func (m Mask) Has(other Mask) bool { return m&other != 0 }

// All reports whether every bit of other is set in m.
func (m Mask) All(other Mask) bool { return m&other == other }

// Scheme is the bit layout of one targeting column.
type Scheme struct {
	// Column is the fibermap column the scheme interprets.
	Column string

	bits  map[string]uint
	names map[uint]string
	descs map[string]string
	order []string
}

// Schemes for the three targeting columns, loaded from the embedded
// definitions.
var (
	Desi = mustScheme("DESI_TARGET", "desi_mask")
	BGS  = mustScheme("BGS_TARGET", "bgs_mask")
	MWS  = mustScheme("MWS_TARGET", "mws_mask")
)

type bitDef struct {
	Name        string `yaml:"name"`
	Bit         uint   `yaml:"bit"`
	Description string `yaml:"description"`
}

func mustScheme(column, key string) *Scheme {
	var defs map[string][]bitDef
	if err := yaml.Unmarshal(targetmaskYAML, &defs); err != nil {
		panic(fmt.Sprintf("targetcut: bad embedded definitions: %v", err))
	}
	s, err := newScheme(column, defs[key])
	if err != nil {
		panic(fmt.Sprintf("targetcut: %v", err))
	}
	return s
}

func newScheme(column string, defs []bitDef) (*Scheme, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%s: no bit definitions", column)
	}
	s := &Scheme{
		Column: column,
		bits:   make(map[string]uint, len(defs)),
		names:  make(map[uint]string, len(defs)),
		descs:  make(map[string]string, len(defs)),
	}
	for _, d := range defs {
		if d.Bit > 62 {
			return nil, fmt.Errorf("%s: bit %d of %s does not fit an int64 mask", column, d.Bit, d.Name)
		}
		if _, dup := s.bits[d.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate name %s", column, d.Name)
		}
		if prev, dup := s.names[d.Bit]; dup {
			return nil, fmt.Errorf("%s: bit %d defined for both %s and %s", column, d.Bit, prev, d.Name)
		}
		s.bits[d.Name] = d.Bit
		s.names[d.Bit] = d.Name
		s.descs[d.Name] = d.Description
		s.order = append(s.order, d.Name)
	}
	return s, nil
}

// Bit returns the bit number of a class name.
func (s *Scheme) Bit(name string) (uint, bool) {
	b, ok := s.bits[strings.ToUpper(strings.TrimSpace(name))]
	return b, ok
}

// Mask builds the bitmask with the named classes set.
func (s *Scheme) Mask(names ...string) (Mask, error) {
	var m Mask
	for _, name := range names {
		b, ok := s.Bit(name)
		if !ok {
			return 0, fmt.Errorf("targetcut: %s has no class %q", s.Column, name)
		}
		m |= 1 << b
	}
	return m, nil
}

// Names returns the class names set in m, in ascending bit order.
// Bits without a definition are reported as BIT_<n>.
func (s *Scheme) Names(m Mask) []string {
	var out []string
	for b := uint(0); b < 63; b++ {
		if m&(1<<b) == 0 {
			continue
		}
		if name, ok := s.names[b]; ok {
			out = append(out, name)
		} else {
			out = append(out, fmt.Sprintf("BIT_%d", b))
		}
	}
	return out
}

// Describe returns the description of a class name, or "" if unknown.
func (s *Scheme) Describe(name string) string {
	return s.descs[strings.ToUpper(strings.TrimSpace(name))]
}

// Classes returns every defined class name in definition order.
func (s *Scheme) Classes() []string {
	return append([]string(nil), s.order...)
}

// schemesByPrefix maps the scheme prefixes accepted by ParseCut.
var schemesByPrefix = map[string]*Scheme{
	"desi": Desi,
	"bgs":  BGS,
	"mws":  MWS,
}

// ParseCut parses a selection spec of the form "[scheme:]CLASS[,CLASS...]",
// e.g. "QSO", "ELG,QSO" or "bgs:BGS_BRIGHT". Classes may also be joined
// with "|". The scheme defaults to desi.
func ParseCut(spec string) (*Scheme, Mask, error) {
	scheme := Desi
	if prefix, rest, ok := strings.Cut(spec, ":"); ok {
		s, known := schemesByPrefix[strings.ToLower(strings.TrimSpace(prefix))]
		if !known {
			prefixes := make([]string, 0, len(schemesByPrefix))
			for p := range schemesByPrefix {
				prefixes = append(prefixes, p)
			}
			sort.Strings(prefixes)
			return nil, 0, fmt.Errorf("targetcut: unknown scheme %q (have %s)", prefix, strings.Join(prefixes, ", "))
		}
		scheme = s
		spec = rest
	}
	names := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == '|' })
	if len(names) == 0 {
		return nil, 0, fmt.Errorf("targetcut: empty cut %q", spec)
	}
	m, err := scheme.Mask(names...)
	if err != nil {
		return nil, 0, err
	}
	return scheme, m, nil
}
