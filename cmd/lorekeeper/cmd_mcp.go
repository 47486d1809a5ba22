package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	lorekeepermcp "github.com/branwick/lorekeeper/internal/mcp"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  content_list    — list entities in a module (optionally player-safe)
  content_get     — get one entity with body content
  content_create  — create an entity (id generated from name)
  content_update  — merge a partial update, cycle-checked for parent changes
  content_delete  — delete an entity
  content_refs    — compute reverse references from current disk state`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := newDeps()

			srv := lorekeepermcp.NewServer(d.store, d.index, d.campaigns, d.logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			d.logger.Info("mcp: lorekeeper MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}
}
