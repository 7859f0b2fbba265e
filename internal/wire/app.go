package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/outflowhq/prompt-engine/internal/adapter/memory"
	pgdb "github.com/outflowhq/prompt-engine/internal/adapter/postgres"
	pgeventbus "github.com/outflowhq/prompt-engine/internal/adapter/postgres/eventbus"
	pghistory "github.com/outflowhq/prompt-engine/internal/adapter/postgres/history"
	pgidempotency "github.com/outflowhq/prompt-engine/internal/adapter/postgres/idempotency"
	pglocker "github.com/outflowhq/prompt-engine/internal/adapter/postgres/locker"
	pgpromptcfg "github.com/outflowhq/prompt-engine/internal/adapter/postgres/promptcfg"

	editorsvc "github.com/outflowhq/prompt-engine/internal/service/editor"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"

	"github.com/outflowhq/prompt-engine/internal/transport"
	mcptransport "github.com/outflowhq/prompt-engine/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool
	Server    *http.Server
	EditorSvc *editorsvc.Service
	MCPServer *mcptransport.Server
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context) (*App, error) {
	// ── Database ─────────────────────────────────────────────────────────────
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	pool, err := pgdb.Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	configRepo := pgpromptcfg.New(pool)
	historyRepo := pghistory.New(pool)
	eventBus := pgeventbus.New(pool)
	locker := pglocker.New(pool)
	idemStore := pgidempotency.New(pool)
	cache := memory.NewCache(cacheTTL(), nil)

	// ── Services ─────────────────────────────────────────────────────────────
	resolverSvcInstance := resolversvc.NewService(configRepo, cache)
	editorSvcInstance := editorsvc.NewService(configRepo, historyRepo, cache, eventBus, locker)

	// Seed failures are non-fatal: resolution still works from the registry
	// tier, and the next restart retries.
	if err := editorSvcInstance.SeedDefaults(ctx); err != nil {
		slog.Error("failed to seed system default prompts", "error", err)
	}

	mcpServer := mcptransport.New(resolverSvcInstance, editorSvcInstance)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(
		ctx,
		editorSvcInstance,
		resolverSvcInstance,
		mcpServer,
		idemStore,
		eventBus,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	slog.Info("application wired", "port", port, "cache_ttl", cacheTTL().String())

	return &App{
		Pool:      pool,
		Server:    server,
		EditorSvc: editorSvcInstance,
		MCPServer: mcpServer,
	}, nil
}

// cacheTTL reads PROMPT_CACHE_TTL (Go duration syntax, e.g. "30s"). Unset or
// unparseable values fall back to the built-in default.
func cacheTTL() time.Duration {
	raw := os.Getenv("PROMPT_CACHE_TTL")
	if raw == "" {
		return memory.DefaultTTL
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid PROMPT_CACHE_TTL, using default", "value", raw)
		return memory.DefaultTTL
	}
	return d
}
