package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCalendar(t *testing.T) {
	c := DefaultCalendar()

	assert.True(t, c.IsWorkDay("2025-09-19"))   // Friday
	assert.False(t, c.IsWorkDay("2025-09-20"))  // Saturday
	assert.False(t, c.IsWorkDay("2025-09-21"))  // Sunday
}

func TestLoadCalendar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weekend: [Saturday, Sunday]
holidays:
  - "2025-01-01"
  - "2025-03-21"
workdays:
  - "2025-01-04"
`), 0o600))

	c, err := LoadCalendar(path)
	require.NoError(t, err)

	assert.False(t, c.IsWorkDay("2025-01-01")) // holiday on a Wednesday
	assert.False(t, c.IsWorkDay("2025-03-21")) // holiday on a Friday
	assert.True(t, c.IsWorkDay("2025-01-04"))  // Saturday moved to working
	assert.True(t, c.IsWorkDay("2025-01-03"))  // plain Friday
}

func TestLoadCalendarBadWeekday(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weekend: [Caturday]\n"), 0o600))

	_, err := LoadCalendar(path)
	require.Error(t, err)
}
