package transport

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	portidem "github.com/outflowhq/prompt-engine/internal/port/idempotency"
)

// noisyPaths are high-frequency read paths logged at Debug to keep Info clean.
// Resolution runs on every generation call, so it dominates traffic.
var noisyPaths = map[string]bool{
	"/api/ws": true,
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == "OPTIONS" {
			return
		}
		if c.Request.Method == "GET" && (noisyPaths[c.Request.URL.Path] || isResolvePath(c)) {
			return
		}

		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func isResolvePath(c *gin.Context) bool {
	return c.FullPath() == "/api/prompts/:key/resolve"
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS, PUT")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// idempotencyHeader is set by editor clients that retry submitted commands
// after a timeout: the first processed result is replayed instead of running
// the command again, so an optimistic UI can reconcile without double-writes.
const idempotencyHeader = "Idempotency-Key"

type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

func IdempotencyMiddleware(store portidem.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if result, found, err := store.Check(c.Request.Context(), key); err != nil {
			// Degrade to processing the command — a duplicate write is better
			// than rejecting an operator's save outright.
			slog.ErrorContext(c.Request.Context(), "idempotency check failed", "error", err)
		} else if found {
			c.Header("Idempotency-Replayed", "true")
			c.Data(http.StatusOK, "application/json", result)
			c.Abort()
			return
		}

		w := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if c.Writer.Status() >= 300 {
			return // only confirmed commands are replayable
		}

		var ownerID *uuid.UUID
		if raw := c.Query("owner_id"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				ownerID = &id
			}
		}
		commandType := c.Request.Method + " " + c.FullPath()
		if err := store.Record(c.Request.Context(), key, ownerID, commandType, w.body.Bytes()); err != nil {
			slog.ErrorContext(c.Request.Context(), "idempotency record failed", "error", err)
		}
	}
}
