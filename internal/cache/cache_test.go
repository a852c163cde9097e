package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspkit/stagesim/pkg/stinfo"
)

func TestResultCache_GetSet(t *testing.T) {
	c := NewResultCache()

	_, ok := c.Get("Kerbal X", "current")
	assert.False(t, ok)

	want := []stinfo.StageSummary{{Stage: 0, DeltaVVac: 3400}}
	c.Set("Kerbal X", "current", want)

	got, ok := c.Get("Kerbal X", "current")
	require.True(t, ok)
	assert.Equal(t, want, got)

	// same vessel at a different pressure is a distinct entry
	_, ok = c.Get("Kerbal X", "1")
	assert.False(t, ok)
}

func TestResultCache_Reset(t *testing.T) {
	c := NewResultCache()
	c.Set("A", "current", nil)
	c.Set("B", "1", nil)
	require.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("A", "current")
	assert.False(t, ok)
}
