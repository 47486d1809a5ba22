package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontmatter_Strings(t *testing.T) {
	fm := Frontmatter{
		"scalar": "one",
		"list":   []any{"a", "b", 7, "c"},
		"typed":  []string{"x", "y"},
		"empty":  "",
		"number": 42,
	}

	assert.Equal(t, []string{"one"}, fm.Strings("scalar"))
	assert.Equal(t, []string{"a", "b", "c"}, fm.Strings("list"))
	assert.Equal(t, []string{"x", "y"}, fm.Strings("typed"))
	assert.Empty(t, fm.Strings("empty"))
	assert.Empty(t, fm.Strings("number"))
	assert.Empty(t, fm.Strings("absent"))
}

func TestFrontmatter_CloneIsIndependent(t *testing.T) {
	fm := Frontmatter{"id": "a", "name": "A"}
	cp := fm.Clone()
	cp["name"] = "B"
	delete(cp, "id")

	assert.Equal(t, "A", fm["name"])
	assert.Contains(t, fm, "id")
}

func TestModuleSet_ConfigOverridesBuiltin(t *testing.T) {
	modules := append(BuiltinModules(), Module{
		ID:                 "locations",
		DataFolder:         "places",
		RelationshipFields: []string{"parent"},
		ParentField:        "parent",
	})
	set := NewModuleSet(modules)

	loc, ok := set.Get("locations")
	require.True(t, ok)
	assert.Equal(t, "places", loc.DataFolder)
}

func TestModuleSet_DataFolderDefaultsToID(t *testing.T) {
	set := NewModuleSet([]Module{{ID: "rituals"}})
	mod, ok := set.Get("rituals")
	require.True(t, ok)
	assert.Equal(t, "rituals", mod.DataFolder)
	assert.False(t, mod.HasHierarchy())
}

func TestBuiltinModules_LocationsHaveHierarchy(t *testing.T) {
	set := NewModuleSet(BuiltinModules())

	loc, ok := set.Get("locations")
	require.True(t, ok)
	assert.True(t, loc.HasHierarchy())
	assert.Equal(t, "parent", loc.ParentField)

	npcs, ok := set.Get("npcs")
	require.True(t, ok)
	assert.False(t, npcs.HasHierarchy())
}
