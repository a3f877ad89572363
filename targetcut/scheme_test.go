package targetcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	t.Run("Has", func(t *testing.T) {
		m := Mask(1<<2 | 1<<5)
		assert.True(t, m.Has(1<<2))
		assert.True(t, m.Has(1<<2|1<<9))
		assert.False(t, m.Has(1<<9))
		assert.False(t, m.Has(0))
	})

	t.Run("All", func(t *testing.T) {
		m := Mask(1<<2 | 1<<5)
		assert.True(t, m.All(1<<2))
		assert.True(t, m.All(1<<2|1<<5))
		assert.False(t, m.All(1<<2|1<<9))
	})
}

func TestSchemeMask(t *testing.T) {
	t.Run("SingleClass", func(t *testing.T) {
		m, err := Desi.Mask("QSO")
		require.NoError(t, err)
		assert.Equal(t, Mask(1<<2), m)
	})

	t.Run("MultipleClasses", func(t *testing.T) {
		m, err := Desi.Mask("LRG", "ELG", "QSO")
		require.NoError(t, err)
		assert.Equal(t, Mask(1<<0|1<<1|1<<2), m)
	})

	t.Run("CaseAndSpace", func(t *testing.T) {
		m, err := Desi.Mask(" qso ")
		require.NoError(t, err)
		assert.Equal(t, Mask(1<<2), m)
	})

	t.Run("UnknownClass", func(t *testing.T) {
		_, err := Desi.Mask("QSO", "NOPE")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `DESI_TARGET has no class "NOPE"`)
	})

	t.Run("OtherColumns", func(t *testing.T) {
		m, err := BGS.Mask("BGS_BRIGHT")
		require.NoError(t, err)
		assert.Equal(t, Mask(1<<1), m)

		m, err = MWS.Mask("MWS_WD")
		require.NoError(t, err)
		assert.Equal(t, Mask(1<<2), m)
	})
}

func TestSchemeNames(t *testing.T) {
	t.Run("AscendingBitOrder", func(t *testing.T) {
		names := Desi.Names(1<<62 | 1<<0 | 1<<2)
		assert.Equal(t, []string{"LRG", "QSO", "SCND_ANY"}, names)
	})

	t.Run("UndefinedBit", func(t *testing.T) {
		names := Desi.Names(1<<2 | 1<<9)
		assert.Equal(t, []string{"QSO", "BIT_9"}, names)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, Desi.Names(0))
	})
}

func TestSchemeLookups(t *testing.T) {
	b, ok := Desi.Bit("SKY")
	require.True(t, ok)
	assert.Equal(t, uint(32), b)

	_, ok = Desi.Bit("BGS_BRIGHT")
	assert.False(t, ok)

	assert.Equal(t, "Quasar", Desi.Describe("qso"))
	assert.Empty(t, Desi.Describe("NOPE"))

	classes := Desi.Classes()
	require.NotEmpty(t, classes)
	assert.Equal(t, "LRG", classes[0])
	assert.Contains(t, classes, "SCND_ANY")
}

func TestParseCut(t *testing.T) {
	t.Run("DefaultScheme", func(t *testing.T) {
		scheme, m, err := ParseCut("ELG,QSO")
		require.NoError(t, err)
		assert.Same(t, Desi, scheme)
		assert.Equal(t, Mask(1<<1|1<<2), m)
	})

	t.Run("SchemePrefix", func(t *testing.T) {
		scheme, m, err := ParseCut("bgs:BGS_BRIGHT")
		require.NoError(t, err)
		assert.Same(t, BGS, scheme)
		assert.Equal(t, Mask(1<<1), m)
	})

	t.Run("PipeSeparator", func(t *testing.T) {
		_, m, err := ParseCut("QSO|ELG_VLO")
		require.NoError(t, err)
		assert.Equal(t, Mask(1<<2|1<<7), m)
	})

	t.Run("Empty", func(t *testing.T) {
		_, _, err := ParseCut("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty cut")
	})

	t.Run("UnknownScheme", func(t *testing.T) {
		_, _, err := ParseCut("sv3:QSO")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown scheme "sv3"`)
		assert.Contains(t, err.Error(), "bgs, desi, mws")
	})

	t.Run("UnknownClass", func(t *testing.T) {
		_, _, err := ParseCut("mws:QSO")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MWS_TARGET")
	})
}
