package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branwick/lorekeeper/internal/models"
)

func validConfig() *Config {
	return &Config{
		Campaign: CampaignConfig{Root: "/data/campaigns", Active: "iron-reach"},
		Lock:     LockConfig{StallWarnSeconds: DefaultStallWarnSeconds},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyRoot(t *testing.T) {
	cfg := validConfig()
	cfg.Campaign.Root = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeStallWarn(t *testing.T) {
	cfg := validConfig()
	cfg.Lock.StallWarnSeconds = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_DuplicateModuleIDs(t *testing.T) {
	cfg := validConfig()
	cfg.Modules = []models.Module{{ID: "rituals"}, {ID: "rituals"}}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ModuleWithoutID(t *testing.T) {
	cfg := validConfig()
	cfg.Modules = []models.Module{{DataFolder: "misc"}}
	assert.Error(t, cfg.Validate())
}

func TestModuleSet_MergesConfiguredModules(t *testing.T) {
	cfg := validConfig()
	cfg.Modules = []models.Module{
		{ID: "rituals", RelationshipFields: []string{"location"}},
		{ID: "npcs", DataFolder: "characters", RelationshipFields: []string{"location"}},
	}

	set := cfg.ModuleSet()

	rituals, ok := set.Get("rituals")
	require.True(t, ok, "configured module added")
	assert.Equal(t, "rituals", rituals.DataFolder)

	npcs, ok := set.Get("npcs")
	require.True(t, ok)
	assert.Equal(t, "characters", npcs.DataFolder, "config overrides builtin")

	_, ok = set.Get("locations")
	assert.True(t, ok, "builtins survive the merge")
}
