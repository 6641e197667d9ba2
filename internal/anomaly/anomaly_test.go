package anomaly

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileIsValid(t *testing.T) {
	require.NoError(t, DefaultProfile().Validate())
}

func TestIdentityClusterContains(t *testing.T) {
	c := DefaultProfile().IdentityCluster

	for _, o := range c.Ordinals {
		assert.True(t, c.Contains(o))
	}
	assert.False(t, c.Contains(100))
	assert.False(t, c.Contains(104))
}

func TestStructuringWindow(t *testing.T) {
	w := StructuringWindow{Start: 2000, End: 2050, Threshold: 500, BandLow: 0.99, BandHigh: 0.998, DaysAgo: 30}

	assert.False(t, w.Contains(1999))
	assert.True(t, w.Contains(2000))
	assert.True(t, w.Contains(2050))
	assert.False(t, w.Contains(2051))
	assert.Equal(t, 51, w.Width())
}

func TestValidateRejectsOverlappingOutlier(t *testing.T) {
	p := DefaultProfile()
	p.HighRiskOutlier.Ordinal = p.IdentityCluster.Ordinals[0]
	assert.Error(t, p.Validate())
}

func TestValidateRejectsInvertedWindow(t *testing.T) {
	p := DefaultProfile()
	p.StructuringWindow.Start = 100
	p.StructuringWindow.End = 50
	assert.Error(t, p.Validate())
}

func TestValidateRejectsEmptyBand(t *testing.T) {
	p := DefaultProfile()
	p.StructuringWindow.BandHigh = p.StructuringWindow.BandLow
	assert.Error(t, p.Validate())
}

func TestProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")

	orig := DefaultProfile()
	require.NoError(t, orig.Save(path))

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestLoadProfileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")

	p := DefaultProfile()
	p.IdentityCluster.Ordinals = nil
	require.NoError(t, p.Save(path))

	_, err := LoadProfile(path)
	assert.Error(t, err)
}
