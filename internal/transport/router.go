package transport

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/outflowhq/prompt-engine/internal/domain/event"
	porteventbus "github.com/outflowhq/prompt-engine/internal/port/eventbus"
	portidem "github.com/outflowhq/prompt-engine/internal/port/idempotency"
	editorsvc "github.com/outflowhq/prompt-engine/internal/service/editor"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"

	mcptransport "github.com/outflowhq/prompt-engine/internal/transport/mcp"
	prompthandler "github.com/outflowhq/prompt-engine/internal/transport/prompt"
	wshandler "github.com/outflowhq/prompt-engine/internal/transport/ws"
)

func NewRouter(
	ctx context.Context,
	editorSvc *editorsvc.Service,
	resolverSvc *resolversvc.Service,
	mcpServer *mcptransport.Server,
	idemStore portidem.Store,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())
	r.Use(IdempotencyMiddleware(idemStore))

	api := r.Group("/api")

	prompthandler.Register(api.Group("/prompts"), editorSvc, resolverSvc)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// MCP endpoint for generation agents (streamable HTTP transport).
	r.Any("/mcp", gin.WrapH(mcpServer.Handler()))

	// Bridge: every prompt event reaches both audiences — dashboards via WS
	// (optimistic-UI reconciliation) and agents via MCP notification (resolved
	// prompt re-fetch). Other replicas' writes arrive through the same
	// subscription, so local clients see cluster-wide changes.
	if _, err := eventBus.Subscribe(ctx, event.ChannelPrompt, func(_ context.Context, e event.Event) {
		hub.Broadcast(e)
		mcpServer.NotifyPromptChanged(e)
	}); err != nil {
		slog.Error("failed to subscribe prompt channel", "error", err)
	}

	return r
}
