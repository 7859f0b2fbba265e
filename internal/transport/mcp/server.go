package mcp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/outflowhq/prompt-engine/internal/domain/event"
	editorsvc "github.com/outflowhq/prompt-engine/internal/service/editor"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer,
// exposing the prompt catalog to generation agents over MCP.
// [SRP] HTTP/SSE server lifecycle and change notifications only.
//
//	Tools are registered in tools.go, native prompts in prompts.go.
//
// [OCP] Adding new tools or prompts never requires changes to this file.
type Server struct {
	mcpSrv  *mcpserver.MCPServer
	httpSrv *mcpserver.StreamableHTTPServer
}

func New(resolver *resolversvc.Service, editor *editorsvc.Service) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		"prompt-engine",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
	)

	RegisterTools(mcpSrv, resolver, editor)
	RegisterPrompts(mcpSrv, resolver)

	return &Server{
		mcpSrv:  mcpSrv,
		httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv),
	}
}

// Handler returns an http.Handler that serves the MCP SSE endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

// NotifyPromptChanged tells every connected agent that a prompt config was
// written, restored, or reset. Agents cache resolved prompts per session; the
// notification prompts a re-fetch so the next generation uses the new version.
func (s *Server) NotifyPromptChanged(e event.Event) {
	params, err := toParams(e)
	if err != nil {
		slog.Error("mcp: serialize prompt notification failed", "error", err)
		return
	}
	s.mcpSrv.SendNotificationToAllClients("notifications/message", params)
}

func toParams(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return params, nil
}
