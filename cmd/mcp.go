package cmd

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/agentic-research/nextanim/internal/config"
)

const serverVersion = "v0.1.0"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve inspect and sample as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		newLogger(cmd, cfg).Printf("MCP: serving %s over stdio", cfg.AssetRoot)
		return server.ServeStdio(newMCPServer(cfg))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// newMCPServer exposes the read-only commands as tools. Paths are resolved
// against the configured asset source, like the CLI.
func newMCPServer(cfg config.Config) *server.MCPServer {
	s := server.NewMCPServer("nextanim", serverVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("inspect",
		mcp.WithDescription("List the clips, animated types and tracks of an animation set"),
		mcp.WithString("file", mcp.Required(), mcp.Description("Animation set path")),
	), inspectTool(cfg))

	s.AddTool(mcp.NewTool("sample",
		mcp.WithDescription("Print the values a clip produces at a given time"),
		mcp.WithString("file", mcp.Required(), mcp.Description("Animation set path")),
		mcp.WithString("clip", mcp.Required(), mcp.Description("Clip name")),
		mcp.WithNumber("time", mcp.Description("Time in seconds")),
	), sampleTool(cfg))

	return s
}

func inspectTool(cfg config.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, err := req.RequireString("file")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		anims, err := loadAnimations(cfg, file)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var b strings.Builder
		writeInspect(&b, anims)
		return mcp.NewToolResultText(b.String()), nil
	}
}

func sampleTool(cfg config.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, err := req.RequireString("file")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, err := req.RequireString("clip")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		clip, err := loadClip(cfg, file, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var b strings.Builder
		writeSample(&b, clip, float32(req.GetFloat("time", 0)))
		return mcp.NewToolResultText(b.String()), nil
	}
}
