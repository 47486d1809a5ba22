package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branwick/lorekeeper/internal/campaign"
	"github.com/branwick/lorekeeper/internal/lock"
	"github.com/branwick/lorekeeper/internal/models"
	"github.com/branwick/lorekeeper/internal/relindex"
	"github.com/branwick/lorekeeper/internal/store"
)

const testCampaign = "iron-reach"

// newTestServer returns a Server over an isolated temp campaign root.
func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, testCampaign), 0o755))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	campaigns := campaign.NewManager(root, testCampaign)
	locks := lock.NewManager(time.Minute, logger)
	modules := models.NewModuleSet(models.BuiltinModules())
	st := store.New(campaigns, modules, locks, logger)

	idx := relindex.New(st, logger)
	relindex.RegisterModules(idx, modules)

	return NewServer(st, idx, campaigns, logger), st
}

// makeReq builds a CallToolRequest with the given arguments.
func makeReq(toolName string, args map[string]any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	return req
}

func strPtr(v string) *string { return &v }

// textContent extracts the first TextContent string from a CallToolResult.
func textContent(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content item")
	tc, ok := result.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func TestMCPCreate_GeneratesEntity(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	result, err := srv.HandleCreate(ctx, makeReq("content_create", map[string]any{
		"module":  "npcs",
		"name":    "Vex Marrow",
		"fields":  `{"location":"port-krellen"}`,
		"content": "A dockmaster with a long memory.",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "create returned error: %s", textContent(t, result))

	var entity models.Entity
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &entity))
	assert.NotEmpty(t, entity.ID)
	assert.Equal(t, "Vex Marrow", entity.Frontmatter["name"])

	stored, err := st.Get(testCampaign, "npcs", entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "port-krellen", stored.Frontmatter["location"])
}

func TestMCPCreate_MissingName(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.HandleCreate(context.Background(), makeReq("content_create", map[string]any{
		"module": "npcs",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPGet_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	// Seed so the module dir exists.
	seed, err := srv.HandleCreate(context.Background(), makeReq("content_create", map[string]any{
		"module": "npcs",
		"name":   "seed",
	}))
	require.NoError(t, err)
	require.False(t, seed.IsError)

	result, err := srv.HandleGet(context.Background(), makeReq("content_get", map[string]any{
		"module": "npcs",
		"id":     "no-such",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "not found")
}

func TestMCPUpdate_RejectsCycle(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	for _, e := range []struct{ id, parent string }{
		{"a", "b"},
		{"b", "c"},
		{"c", ""},
	} {
		fm := models.Frontmatter{"id": e.id, "name": e.id}
		if e.parent != "" {
			fm["parent"] = e.parent
		}
		_, err := st.Create(testCampaign, "locations", models.EntityInput{Frontmatter: fm})
		require.NoError(t, err)
	}

	result, err := srv.HandleUpdate(ctx, makeReq("content_update", map[string]any{
		"module": "locations",
		"id":     "c",
		"fields": `{"parent":"a"}`,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "circular reference")

	// Nothing was written: c still has no parent.
	got, err := st.Get(testCampaign, "locations", "c")
	require.NoError(t, err)
	assert.NotContains(t, got.Frontmatter, "parent")
}

func TestMCPUpdate_UnknownParent(t *testing.T) {
	srv, st := newTestServer(t)

	_, err := st.Create(testCampaign, "locations", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "a", "name": "A"},
	})
	require.NoError(t, err)

	result, err := srv.HandleUpdate(context.Background(), makeReq("content_update", map[string]any{
		"module": "locations",
		"id":     "a",
		"fields": `{"parent":"nowhere"}`,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "not found")
}

func TestMCPList_PlayerView(t *testing.T) {
	srv, st := newTestServer(t)

	_, err := st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "ann", "name": "Ann", "dmOnly": "double agent"},
	})
	require.NoError(t, err)
	_, err = st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "bob", "name": "Bob", "hidden": true},
	})
	require.NoError(t, err)

	result, err := srv.HandleList(context.Background(), makeReq("content_list", map[string]any{
		"module": "npcs",
		"player": true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var metas []models.Metadata
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &metas))
	require.Len(t, metas, 1)
	assert.Equal(t, "ann", metas[0].ID)
	assert.NotContains(t, metas[0].Frontmatter, "dmOnly")
}

func TestMCPDelete_ReportsRemoval(t *testing.T) {
	srv, st := newTestServer(t)

	_, err := st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "vex", "name": "Vex"},
	})
	require.NoError(t, err)

	result, err := srv.HandleDelete(context.Background(), makeReq("content_delete", map[string]any{
		"module": "npcs",
		"id":     "vex",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &out))
	assert.Equal(t, true, out["deleted"])
}

func TestMCPUpdate_EmptyContentClearsBody(t *testing.T) {
	srv, st := newTestServer(t)

	_, err := st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "vex", "name": "Vex"},
		Content:     "A dockmaster with a long memory.",
	})
	require.NoError(t, err)

	result, err := srv.HandleUpdate(context.Background(), makeReq("content_update", map[string]any{
		"module":  "npcs",
		"id":      "vex",
		"content": "",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "update returned error: %s", textContent(t, result))

	stored, err := st.Get(testCampaign, "npcs", "vex")
	require.NoError(t, err)
	assert.Empty(t, stored.Content)

	// Leaving content out entirely must not touch the body.
	_, err = st.Update(testCampaign, "npcs", "vex", models.EntityUpdate{
		Frontmatter: models.Frontmatter{"name": "Vex"},
		Content:     strPtr("restored body"),
	})
	require.NoError(t, err)

	result, err = srv.HandleUpdate(context.Background(), makeReq("content_update", map[string]any{
		"module": "npcs",
		"id":     "vex",
		"fields": `{"mood":"wary"}`,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	stored, err = st.Get(testCampaign, "npcs", "vex")
	require.NoError(t, err)
	assert.Equal(t, "restored body", stored.Content)
}

func TestMCPRefs_TargetedLookup(t *testing.T) {
	srv, st := newTestServer(t)

	_, err := st.Create(testCampaign, "npcs", models.EntityInput{
		Frontmatter: models.Frontmatter{"id": "vex", "name": "Vex", "location": "port-krellen"},
	})
	require.NoError(t, err)

	result, err := srv.HandleRefs(context.Background(), makeReq("content_refs", map[string]any{
		"target": "port-krellen",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		Target     string               `json:"target"`
		References []relindex.Reference `json:"references"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &out))
	require.Len(t, out.References, 1)
	assert.Equal(t, "vex", out.References[0].EntityID)
	assert.Equal(t, "location", out.References[0].Field)
}
