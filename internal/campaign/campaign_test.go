package campaign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetActive_NoneSelected(t *testing.T) {
	m := NewManager(t.TempDir(), "")
	_, err := m.GetActive()
	assert.ErrorIs(t, err, ErrNoActiveCampaign)
}

func TestGetActive_MissingDirectory(t *testing.T) {
	m := NewManager(t.TempDir(), "ghost-campaign")
	_, err := m.GetActive()
	assert.ErrorIs(t, err, ErrNoActiveCampaign)
}

func TestGetActive_ReturnsCampaign(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "iron-reach"), 0o755))

	m := NewManager(root, "iron-reach")
	active, err := m.GetActive()
	require.NoError(t, err)
	assert.Equal(t, "iron-reach", active.ID)
	assert.Equal(t, filepath.Join(root, "iron-reach"), active.Root)
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "iron-reach"), 0o755))

	m := NewManager(root, "")
	assert.True(t, m.Exists("iron-reach"))
	assert.False(t, m.Exists("ghost"))
}
