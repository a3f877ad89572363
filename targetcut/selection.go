package targetcut

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Selection is a set of row positions produced by a cut. It wraps a
// roaring bitmap, so cuts over the same table compose cheaply.
type Selection struct {
	rb *roaring.Bitmap
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{rb: roaring.New()}
}

// Cut selects the rows whose bitmask shares at least one bit with want.
// The values slice is a targeting column read row by row, so the
// selected positions index the same table the column came from.
func Cut(values []int64, want Mask) *Selection {
	sel := NewSelection()
	for i, v := range values {
		if Mask(v).Has(want) {
			sel.rb.Add(uint32(i))
		}
	}
	return sel
}

// CutAll selects the rows whose bitmask carries every bit of want.
func CutAll(values []int64, want Mask) *Selection {
	sel := NewSelection()
	for i, v := range values {
		if Mask(v).All(want) {
			sel.rb.Add(uint32(i))
		}
	}
	return sel
}

// Add marks a row as selected. Negative rows are ignored.
func (s *Selection) Add(row int) {
	if row < 0 {
		return
	}
	s.rb.Add(uint32(row))
}

// Contains reports whether a row is selected.
func (s *Selection) Contains(row int) bool {
	if row < 0 {
		return false
	}
	return s.rb.Contains(uint32(row))
}

// IsEmpty reports whether no rows are selected.
func (s *Selection) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Len returns the number of selected rows.
func (s *Selection) Len() int {
	return int(s.rb.GetCardinality())
}

// Rows returns the selected row positions in ascending order.
func (s *Selection) Rows() []int {
	rows := make([]int, 0, s.rb.GetCardinality())
	it := s.rb.Iterator()
	for it.HasNext() {
		rows = append(rows, int(it.Next()))
	}
	return rows
}

// All iterates over the selected rows in ascending order.
func (s *Selection) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the selection.
func (s *Selection) Clone() *Selection {
	return &Selection{rb: s.rb.Clone()}
}

// And narrows the selection to rows present in both.
func (s *Selection) And(other *Selection) {
	s.rb.And(other.rb)
}

// Or widens the selection with the rows of other.
func (s *Selection) Or(other *Selection) {
	s.rb.Or(other.rb)
}

// AndNot removes the rows of other from the selection.
func (s *Selection) AndNot(other *Selection) {
	s.rb.AndNot(other.rb)
}
