package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/outflowhq/prompt-engine/internal/domain/registry"
	editorsvc "github.com/outflowhq/prompt-engine/internal/service/editor"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"
)

// RegisterTools registers all MCP tools on the server.
// [SRP] Tool registration only.
// [OCP] Add a new tool by adding a new AddTool call — server.go never changes.
func RegisterTools(
	s *mcpserver.MCPServer,
	resolver *resolversvc.Service,
	editor *editorsvc.Service,
) {
	s.AddTool(mcpmcp.NewTool("resolve_prompt",
		mcpmcp.WithDescription("Resolve a prompt key to the effective configuration for a generation call: the owner's override if one exists, otherwise the system default, otherwise the built-in catalog text. Returns system_instruction, prompt_template, temperature, top_p, version, and source."),
		mcpmcp.WithString("prompt_key", mcpmcp.Required(), mcpmcp.Description("Catalog prompt key, e.g. sales_outreach")),
		mcpmcp.WithString("owner_id", mcpmcp.Description("Workspace owner UUID. Omit to resolve the system default.")),
	), resolvePromptHandler(resolver))

	s.AddTool(mcpmcp.NewTool("list_prompt_catalog",
		mcpmcp.WithDescription("List every prompt key the platform ships: key, category, display name, description, and template placeholders."),
	), listCatalogHandler())

	s.AddTool(mcpmcp.NewTool("get_prompt_history",
		mcpmcp.WithDescription("Read the version history for a prompt config, newest first. Each snapshot carries the full field values at that version plus the change note."),
		mcpmcp.WithString("prompt_key", mcpmcp.Required(), mcpmcp.Description("Catalog prompt key")),
		mcpmcp.WithString("owner_id", mcpmcp.Description("Workspace owner UUID. Omit for the system default's history.")),
	), getHistoryHandler(editor))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func parseOwnerArg(req mcpmcp.CallToolRequest) (*uuid.UUID, error) {
	raw := mcpmcp.ParseString(req, "owner_id", "")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid owner_id")
	}
	return &id, nil
}

func resolvePromptHandler(resolver *resolversvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		promptKey := mcpmcp.ParseString(req, "prompt_key", "")
		ownerID, err := parseOwnerArg(req)
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid owner_id"), nil
		}

		resolved, err := resolver.Resolve(ctx, promptKey, ownerID, nil)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		data, _ := json.Marshal(resolved)
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func listCatalogHandler() mcpserver.ToolHandlerFunc {
	return func(_ context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		type catalogItem struct {
			Key          string   `json:"key"`
			Category     string   `json:"category"`
			DisplayName  string   `json:"display_name"`
			Description  string   `json:"description"`
			Placeholders []string `json:"placeholders"`
		}

		entries := registry.All()
		items := make([]catalogItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, catalogItem{
				Key:          e.Key,
				Category:     string(e.Category),
				DisplayName:  e.DisplayName,
				Description:  e.Description,
				Placeholders: e.Placeholders,
			})
		}

		data, _ := json.Marshal(items)
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func getHistoryHandler(editor *editorsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		promptKey := mcpmcp.ParseString(req, "prompt_key", "")
		ownerID, err := parseOwnerArg(req)
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid owner_id"), nil
		}

		cfg, err := editor.ActiveConfig(ctx, ownerID, promptKey)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		if cfg.Synthetic() {
			return mcpmcp.NewToolResultText("[]"), nil
		}

		snapshots, err := editor.History(ctx, cfg.ID)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		data, _ := json.Marshal(snapshots)
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}
