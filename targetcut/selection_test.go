package targetcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCut(t *testing.T) {
	// Rotating LRG, ELG, QSO bits, as a small fibermap column would carry.
	values := []int64{1 << 0, 1 << 1, 1 << 2, 1 << 0, 1 << 1, 1 << 2}

	t.Run("SingleClass", func(t *testing.T) {
		want, err := Desi.Mask("QSO")
		require.NoError(t, err)

		sel := Cut(values, want)
		assert.Equal(t, []int{2, 5}, sel.Rows())
		assert.Equal(t, 2, sel.Len())
		assert.True(t, sel.Contains(2))
		assert.False(t, sel.Contains(0))
	})

	t.Run("AnyOf", func(t *testing.T) {
		want, err := Desi.Mask("LRG", "QSO")
		require.NoError(t, err)

		sel := Cut(values, want)
		assert.Equal(t, []int{0, 2, 3, 5}, sel.Rows())
	})

	t.Run("NoMatch", func(t *testing.T) {
		want, err := Desi.Mask("SKY")
		require.NoError(t, err)

		sel := Cut(values, want)
		assert.True(t, sel.IsEmpty())
		assert.Empty(t, sel.Rows())
	})
}

func TestCutAll(t *testing.T) {
	values := []int64{1 << 0, 1<<0 | 1<<2, 1 << 2}

	want, err := Desi.Mask("LRG", "QSO")
	require.NoError(t, err)

	assert.Equal(t, []int{1}, CutAll(values, want).Rows())
	assert.Equal(t, []int{0, 1, 2}, Cut(values, want).Rows())
}

func TestSelectionCompose(t *testing.T) {
	values := []int64{1 << 0, 1<<0 | 1<<2, 1 << 2, 1 << 1}

	lrg := Cut(values, 1<<0)
	qso := Cut(values, 1<<2)

	t.Run("And", func(t *testing.T) {
		both := lrg.Clone()
		both.And(qso)
		assert.Equal(t, []int{1}, both.Rows())
	})

	t.Run("Or", func(t *testing.T) {
		either := lrg.Clone()
		either.Or(qso)
		assert.Equal(t, []int{0, 1, 2}, either.Rows())
	})

	t.Run("AndNot", func(t *testing.T) {
		pure := lrg.Clone()
		pure.AndNot(qso)
		assert.Equal(t, []int{0}, pure.Rows())
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		assert.Equal(t, []int{0, 1}, lrg.Rows())
		assert.Equal(t, []int{1, 2}, qso.Rows())
	})
}

func TestSelectionEdit(t *testing.T) {
	sel := NewSelection()
	assert.True(t, sel.IsEmpty())

	sel.Add(3)
	sel.Add(1)
	sel.Add(3)
	sel.Add(-1)

	assert.Equal(t, 2, sel.Len())
	assert.Equal(t, []int{1, 3}, sel.Rows())
	assert.False(t, sel.Contains(-1))

	var got []int
	for row := range sel.All() {
		got = append(got, row)
	}
	assert.Equal(t, []int{1, 3}, got)
}
