package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/outflowhq/prompt-engine/internal/domain/registry"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"
)

// RegisterPrompts registers one MCP native prompt per catalog entry, resolved
// through the same tiers as the REST endpoint so agents and the dashboard
// always see the same text.
// [SRP] Prompt registration only — separated from server lifecycle and tool definitions.
// [OCP] A new catalog entry is picked up here automatically — no other files change.
func RegisterPrompts(s *mcpserver.MCPServer, resolver *resolversvc.Service) {
	for _, entry := range registry.All() {
		e := entry // capture loop variable
		s.AddPrompt(
			mcpmcp.NewPrompt(e.Key,
				mcpmcp.WithPromptDescription(e.Description),
				mcpmcp.WithArgument("owner_id",
					mcpmcp.ArgumentDescription("Workspace owner UUID for a per-owner override. Omit for the system default."),
				),
			),
			promptHandler(e.Key, resolver),
		)
	}
}

func promptHandler(promptKey string, resolver *resolversvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		var ownerID *uuid.UUID
		if raw := req.Params.Arguments["owner_id"]; raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid owner_id: %w", err)
			}
			ownerID = &id
		}

		resolved, err := resolver.Resolve(ctx, promptKey, ownerID, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve prompt %s: %w", promptKey, err)
		}

		return mcpmcp.NewGetPromptResult(
			resolved.SystemInstruction,
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: resolved.PromptTemplate,
					},
				),
			},
		), nil
	}
}
