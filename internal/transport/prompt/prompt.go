package prompt

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
	"github.com/outflowhq/prompt-engine/internal/domain/registry"
	editorsvc "github.com/outflowhq/prompt-engine/internal/service/editor"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"
)

// Register mounts the prompt catalog, resolution, and editor REST endpoints.
// [SRP] HTTP handlers only — services own all business logic.
func Register(rg *gin.RouterGroup, editor *editorsvc.Service, resolver *resolversvc.Service) {
	rg.GET("", listCatalog())
	rg.GET("/:key", getConfig(editor))
	rg.GET("/:key/resolve", resolvePrompt(resolver))
	rg.PUT("/:key", upsertConfig(editor))
	rg.POST("/:key/restore", restoreVersion(editor))
	rg.DELETE("/:key", resetToDefault(editor))
	rg.GET("/:key/history", listHistory(editor))
}

// ownerFromQuery parses the optional owner_id query parameter.
// (nil, true) means "no owner given" — the system scope.
func ownerFromQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("owner_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner_id"})
		return nil, false
	}
	return &id, true
}

func writeError(c *gin.Context, err error) {
	var vErr *domainprompt.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, domainprompt.ErrUnknownKey), errors.Is(err, domainprompt.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainprompt.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "changed elsewhere, please reload"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func listCatalog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.All())
	}
}

func getConfig(editor *editorsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := ownerFromQuery(c)
		if !ok {
			return
		}

		cfg, err := editor.ActiveConfig(c.Request.Context(), ownerID, c.Param("key"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

func resolvePrompt(resolver *resolversvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := ownerFromQuery(c)
		if !ok {
			return
		}

		resolved, err := resolver.Resolve(c.Request.Context(), c.Param("key"), ownerID, nil)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resolved)
	}
}

type upsertReq struct {
	OwnerID           *uuid.UUID `json:"owner_id"`
	SystemInstruction string     `json:"system_instruction" binding:"required"`
	PromptTemplate    string     `json:"prompt_template" binding:"required"`
	Temperature       float64    `json:"temperature"`
	TopP              float64    `json:"top_p"`
	ExpectedVersion   int        `json:"expected_version"`
	ChangeNote        string     `json:"change_note"`
}

func upsertConfig(editor *editorsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req upsertReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		d := domainprompt.Draft{
			SystemInstruction: req.SystemInstruction,
			PromptTemplate:    req.PromptTemplate,
			Temperature:       req.Temperature,
			TopP:              req.TopP,
		}
		cfg, err := editor.Upsert(c.Request.Context(), req.OwnerID, c.Param("key"), d, req.ExpectedVersion, req.ChangeNote)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

type restoreReq struct {
	OwnerID *uuid.UUID `json:"owner_id"`
	Version int        `json:"version" binding:"required,min=1"`
}

func restoreVersion(editor *editorsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req restoreReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cfg, err := editor.Restore(c.Request.Context(), req.OwnerID, c.Param("key"), req.Version)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

func resetToDefault(editor *editorsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := ownerFromQuery(c)
		if !ok {
			return
		}

		if err := editor.Reset(c.Request.Context(), ownerID, c.Param("key")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listHistory(editor *editorsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := ownerFromQuery(c)
		if !ok {
			return
		}

		cfg, err := editor.ActiveConfig(c.Request.Context(), ownerID, c.Param("key"))
		if err != nil {
			writeError(c, err)
			return
		}
		if cfg.Synthetic() {
			// Nothing persisted yet — no history to show.
			c.JSON(http.StatusOK, []domainprompt.Snapshot{})
			return
		}

		snapshots, err := editor.History(c.Request.Context(), cfg.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshots)
	}
}
