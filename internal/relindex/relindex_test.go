package relindex

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branwick/lorekeeper/internal/campaign"
	"github.com/branwick/lorekeeper/internal/lock"
	"github.com/branwick/lorekeeper/internal/models"
	"github.com/branwick/lorekeeper/internal/store"
)

const testCampaign = "iron-reach"

func newTestIndex(t *testing.T) (*Index, *store.Store) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, testCampaign), 0o755))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	campaigns := campaign.NewManager(root, testCampaign)
	locks := lock.NewManager(time.Minute, logger)
	modules := models.NewModuleSet(models.BuiltinModules())
	st := store.New(campaigns, modules, locks, logger)

	idx := New(st, logger)
	RegisterModules(idx, modules)
	return idx, st
}

func TestRegisterFields_IdempotentUnion(t *testing.T) {
	idx, _ := newTestIndex(t)

	idx.RegisterFields("npcs", []string{"location", "faction"})
	idx.RegisterFields("npcs", []string{"faction", "ship"})
	idx.RegisterFields("npcs", []string{"location"})

	assert.Equal(t, []string{"faction", "location", "ship"}, idx.Fields("npcs"))
}

func TestFields_EmptyWhenUnregistered(t *testing.T) {
	idx, _ := newTestIndex(t)
	assert.Empty(t, idx.Fields("rituals"))
}

func TestComputeReverseReferences_AcrossModules(t *testing.T) {
	idx, st := newTestIndex(t)

	_, err := st.Create(testCampaign, "locations", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "port-krellen", "name": "Port Krellen"},
	})
	require.NoError(t, err)

	_, err = st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{
			"id":       "vex",
			"name":     "Vex",
			"location": "port-krellen",
		},
	})
	require.NoError(t, err)

	_, err = st.Create(testCampaign, "ships", models.EntityInput{
		Frontmatter: models.Frontmatter{
			"id":       "sable-oath",
			"name":     "Sable Oath",
			"location": "port-krellen",
			"captain":  "vex",
		},
	})
	require.NoError(t, err)

	refs, err := idx.ComputeReverseReferences(testCampaign)
	require.NoError(t, err)

	assert.ElementsMatch(t, []Reference{
		{Module: "npcs", EntityID: "vex", Field: "location"},
		{Module: "ships", EntityID: "sable-oath", Field: "location"},
	}, refs["port-krellen"])

	assert.Equal(t, []Reference{
		{Module: "ships", EntityID: "sable-oath", Field: "captain"},
	}, refs["vex"])
}

func TestComputeReverseReferences_ListValuedField(t *testing.T) {
	idx, st := newTestIndex(t)

	_, err := st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{
			"id":      "vex",
			"name":    "Vex",
			"faction": []string{"guild", "syndicate"},
		},
	})
	require.NoError(t, err)

	refs, err := idx.ComputeReverseReferences(testCampaign)
	require.NoError(t, err)

	want := Reference{Module: "npcs", EntityID: "vex", Field: "faction"}
	assert.Equal(t, []Reference{want}, refs["guild"])
	assert.Equal(t, []Reference{want}, refs["syndicate"])
}

func TestComputeReverseReferences_SkipsModulesWithoutFolder(t *testing.T) {
	idx, st := newTestIndex(t)

	// Only npcs has a data folder; locations/ships/factions do not.
	_, err := st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "vex", "name": "Vex", "location": "ghost-port"},
	})
	require.NoError(t, err)

	refs, err := idx.ComputeReverseReferences(testCampaign)
	require.NoError(t, err)
	assert.Len(t, refs["ghost-port"], 1)
}

func TestComputeReverseReferences_UnknownCampaign(t *testing.T) {
	idx, _ := newTestIndex(t)

	_, err := idx.ComputeReverseReferences("no-such-campaign")
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))
}

func TestReferences_FiltersByTarget(t *testing.T) {
	idx, st := newTestIndex(t)

	_, err := st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "vex", "name": "Vex", "location": "port-krellen"},
	})
	require.NoError(t, err)

	refs, err := idx.References(testCampaign, "port-krellen")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "vex", refs[0].EntityID)

	none, err := idx.References(testCampaign, "unreferenced")
	require.NoError(t, err)
	assert.Empty(t, none)
}
