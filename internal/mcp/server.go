// Package mcp implements the Model Context Protocol server for
// lorekeeper, exposing campaign content operations as tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/branwick/lorekeeper/internal/campaign"
	"github.com/branwick/lorekeeper/internal/hierarchy"
	"github.com/branwick/lorekeeper/internal/models"
	"github.com/branwick/lorekeeper/internal/playerview"
	"github.com/branwick/lorekeeper/internal/relindex"
	"github.com/branwick/lorekeeper/internal/store"
)

// Server wraps an MCPServer with lorekeeper dependencies.
type Server struct {
	mcp       *mcpserver.MCPServer
	st        *store.Store
	idx       *relindex.Index
	campaigns *campaign.Manager
	logger    *slog.Logger
}

// NewServer creates a new MCP server over the content store.
func NewServer(st *store.Store, idx *relindex.Index, campaigns *campaign.Manager, logger *slog.Logger) *Server {
	s := &Server{
		st:        st,
		idx:       idx,
		campaigns: campaigns,
		logger:    logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"lorekeeper",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildListTool(), s.handleList)
	mcpSrv.AddTool(buildGetTool(), s.handleGet)
	mcpSrv.AddTool(buildCreateTool(), s.handleCreate)
	mcpSrv.AddTool(buildUpdateTool(), s.handleUpdate)
	mcpSrv.AddTool(buildDeleteTool(), s.handleDelete)
	mcpSrv.AddTool(buildRefsTool(), s.handleRefs)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleList is the exported handler for the "content_list" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleList(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleList(ctx, req)
}

// HandleGet is the exported handler for the "content_get" tool.
func (s *Server) HandleGet(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleGet(ctx, req)
}

// HandleCreate is the exported handler for the "content_create" tool.
func (s *Server) HandleCreate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleCreate(ctx, req)
}

// HandleUpdate is the exported handler for the "content_update" tool.
func (s *Server) HandleUpdate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleUpdate(ctx, req)
}

// HandleDelete is the exported handler for the "content_delete" tool.
func (s *Server) HandleDelete(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleDelete(ctx, req)
}

// HandleRefs is the exported handler for the "content_refs" tool.
func (s *Server) HandleRefs(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRefs(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// resolveCampaign returns the explicit campaign argument, or the active
// campaign's id when the argument is absent.
func (s *Server) resolveCampaign(req mcpgo.CallToolRequest) (string, error) {
	if id := req.GetString("campaign", ""); id != "" {
		return id, nil
	}
	active, err := s.campaigns.GetActive()
	if err != nil {
		return "", err
	}
	return active.ID, nil
}

// parseFields decodes the optional "fields" JSON-object argument.
func parseFields(req mcpgo.CallToolRequest) (models.Frontmatter, error) {
	raw := req.GetString("fields", "")
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var fm models.Frontmatter
	if err := json.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("fields must be a JSON object: %w", err)
	}
	return fm, nil
}

// --- tool definitions ---

func buildListTool() mcpgo.Tool {
	return mcpgo.NewTool("content_list",
		mcpgo.WithDescription("List entities in a campaign module. Returns metadata records without body content."),
		mcpgo.WithString("module",
			mcpgo.Required(),
			mcpgo.Description("Module id: locations, npcs, ships, factions, or a configured module"),
		),
		mcpgo.WithString("campaign",
			mcpgo.Description("Campaign id (default: the active campaign)"),
		),
		mcpgo.WithBoolean("player",
			mcpgo.Description("Return the player-safe projection: hidden entities dropped, DM-only fields stripped"),
		),
	)
}

func buildGetTool() mcpgo.Tool {
	return mcpgo.NewTool("content_get",
		mcpgo.WithDescription("Get one entity with its full body content."),
		mcpgo.WithString("module",
			mcpgo.Required(),
			mcpgo.Description("Module id"),
		),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("Entity id"),
		),
		mcpgo.WithString("campaign",
			mcpgo.Description("Campaign id (default: the active campaign)"),
		),
		mcpgo.WithBoolean("player",
			mcpgo.Description("Return the player-safe projection"),
		),
	)
}

func buildCreateTool() mcpgo.Tool {
	return mcpgo.NewTool("content_create",
		mcpgo.WithDescription("Create a new entity. The id is generated from the name unless fields carries an explicit id."),
		mcpgo.WithString("module",
			mcpgo.Required(),
			mcpgo.Description("Module id"),
		),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Entity name"),
		),
		mcpgo.WithString("fields",
			mcpgo.Description("Additional frontmatter fields as a JSON object"),
		),
		mcpgo.WithString("content",
			mcpgo.Description("Free-text body content"),
		),
		mcpgo.WithString("campaign",
			mcpgo.Description("Campaign id (default: the active campaign)"),
		),
	)
}

func buildUpdateTool() mcpgo.Tool {
	return mcpgo.NewTool("content_update",
		mcpgo.WithDescription("Merge a partial update into an entity. Parent changes in hierarchical modules are validated against circular references before anything is written."),
		mcpgo.WithString("module",
			mcpgo.Required(),
			mcpgo.Description("Module id"),
		),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("Entity id"),
		),
		mcpgo.WithString("fields",
			mcpgo.Description("Frontmatter fields to merge, as a JSON object; null values remove the key"),
		),
		mcpgo.WithString("content",
			mcpgo.Description("Replacement body content; an empty string clears the body"),
		),
		mcpgo.WithString("campaign",
			mcpgo.Description("Campaign id (default: the active campaign)"),
		),
	)
}

func buildDeleteTool() mcpgo.Tool {
	return mcpgo.NewTool("content_delete",
		mcpgo.WithDescription("Delete an entity by id."),
		mcpgo.WithString("module",
			mcpgo.Required(),
			mcpgo.Description("Module id"),
		),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("Entity id"),
		),
		mcpgo.WithString("campaign",
			mcpgo.Description("Campaign id (default: the active campaign)"),
		),
	)
}

func buildRefsTool() mcpgo.Tool {
	return mcpgo.NewTool("content_refs",
		mcpgo.WithDescription("Compute reverse references: which entities reference a target, via which relationship fields. Scans current disk state."),
		mcpgo.WithString("target",
			mcpgo.Description("Target entity id; omit for the full reverse-reference map"),
		),
		mcpgo.WithString("campaign",
			mcpgo.Description("Campaign id (default: the active campaign)"),
		),
	)
}

// --- tool handlers ---

func (s *Server) handleList(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	campaignID, err := s.resolveCampaign(req)
	if err != nil {
		return mcpgo.NewToolResultErrorf("resolving campaign: %s", err.Error()), nil
	}
	moduleID := req.GetString("module", "")

	metas, err := s.st.List(campaignID, moduleID)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	if req.GetBool("player", false) {
		metas = playerview.FilterMetadataList(metas)
	}
	return toolResultJSON(metas)
}

func (s *Server) handleGet(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	campaignID, err := s.resolveCampaign(req)
	if err != nil {
		return mcpgo.NewToolResultErrorf("resolving campaign: %s", err.Error()), nil
	}
	moduleID := req.GetString("module", "")
	id := req.GetString("id", "")

	entity, err := s.st.Get(campaignID, moduleID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcpgo.NewToolResultErrorf("entity %q not found in module %q", id, moduleID), nil
		}
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	if req.GetBool("player", false) {
		if playerview.IsHiddenFromPlayers(entity.Frontmatter) {
			return mcpgo.NewToolResultErrorf("entity %q not found in module %q", id, moduleID), nil
		}
		filtered := playerview.FilterEntity(*entity)
		entity = &filtered
	}
	return toolResultJSON(entity)
}

func (s *Server) handleCreate(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	campaignID, err := s.resolveCampaign(req)
	if err != nil {
		return mcpgo.NewToolResultErrorf("resolving campaign: %s", err.Error()), nil
	}
	moduleID := req.GetString("module", "")
	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcpgo.NewToolResultError("name is required and must not be empty"), nil
	}

	fm, err := parseFields(req)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	if fm == nil {
		fm = models.Frontmatter{}
	}
	fm["name"] = name

	if err := hierarchy.ValidateUpdate(s.st, campaignID, moduleID, "", fm); err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	entity, err := s.st.Create(campaignID, moduleID, models.EntityInput{
		Frontmatter: fm,
		Content:     req.GetString("content", ""),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return toolResultJSON(entity)
}

func (s *Server) handleUpdate(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	campaignID, err := s.resolveCampaign(req)
	if err != nil {
		return mcpgo.NewToolResultErrorf("resolving campaign: %s", err.Error()), nil
	}
	moduleID := req.GetString("module", "")
	id := req.GetString("id", "")

	fm, err := parseFields(req)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	upd := models.EntityUpdate{Frontmatter: fm}
	// Presence, not emptiness: an explicit "" clears the body.
	if raw, ok := req.GetArguments()["content"]; ok {
		content, ok := raw.(string)
		if !ok {
			return mcpgo.NewToolResultError("content must be a string"), nil
		}
		upd.Content = &content
	}
	if fm == nil && upd.Content == nil {
		return mcpgo.NewToolResultError("nothing to update: provide fields or content"), nil
	}

	if err := hierarchy.ValidateUpdate(s.st, campaignID, moduleID, id, fm); err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	entity, err := s.st.Update(campaignID, moduleID, id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcpgo.NewToolResultErrorf("entity %q not found in module %q", id, moduleID), nil
		}
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return toolResultJSON(entity)
}

func (s *Server) handleDelete(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	campaignID, err := s.resolveCampaign(req)
	if err != nil {
		return mcpgo.NewToolResultErrorf("resolving campaign: %s", err.Error()), nil
	}
	moduleID := req.GetString("module", "")
	id := req.GetString("id", "")

	removed, err := s.st.Delete(campaignID, moduleID, id)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return toolResultJSON(map[string]any{"id": id, "deleted": removed})
}

func (s *Server) handleRefs(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	campaignID, err := s.resolveCampaign(req)
	if err != nil {
		return mcpgo.NewToolResultErrorf("resolving campaign: %s", err.Error()), nil
	}

	if target := req.GetString("target", ""); target != "" {
		refs, err := s.idx.References(campaignID, target)
		if err != nil {
			return mcpgo.NewToolResultError(err.Error()), nil
		}
		return toolResultJSON(map[string]any{"target": target, "references": refs})
	}

	all, err := s.idx.ComputeReverseReferences(campaignID)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return toolResultJSON(all)
}
