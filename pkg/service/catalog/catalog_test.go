package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	c := New()

	entry, ok := c.Get("senior-software-engineer")
	require.True(t, ok)
	assert.Equal(t, "Senior Software Engineer", entry.Name)
	assert.InDelta(t, 105, entry.BaseRate, 1e-9)
	assert.Equal(t, "USD", entry.Currency)

	_, ok = c.Get("no-such-role")
	assert.False(t, ok)

	entry, ok = c.Get("  QA-Engineer ")
	require.True(t, ok)
	assert.Equal(t, "QA Engineer", entry.Name)
}

func TestListSortedByName(t *testing.T) {
	entries := New().List()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Name, entries[i].Name)
	}
}
