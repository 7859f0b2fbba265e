package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/outflowhq/prompt-engine/internal/adapter/memory"
	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
	"github.com/outflowhq/prompt-engine/internal/domain/registry"
	"github.com/outflowhq/prompt-engine/internal/mocks"
	editorsvc "github.com/outflowhq/prompt-engine/internal/service/editor"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type mcpDeps struct {
	repo    *mocks.MockConfigRepository
	history *mocks.MockHistoryRepository
	cache   *mocks.MockResolutionCache
	bus     *mocks.MockEventBus
	locker  *mocks.MockAdvisoryLocker
}

func newMCPDeps(t *testing.T) (*resolversvc.Service, *editorsvc.Service, mcpDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := mcpDeps{
		repo:    mocks.NewMockConfigRepository(ctrl),
		history: mocks.NewMockHistoryRepository(ctrl),
		cache:   mocks.NewMockResolutionCache(ctrl),
		bus:     mocks.NewMockEventBus(ctrl),
		locker:  mocks.NewMockAdvisoryLocker(ctrl),
	}
	resolver := resolversvc.NewService(d.repo, memory.NewCache(0, nil))
	editor := editorsvc.NewService(d.repo, d.history, d.cache, d.bus, d.locker)
	return resolver, editor, d
}

func makeReq(args map[string]any) mcpmcp.CallToolRequest {
	var req mcpmcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(r *mcpmcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	b, _ := json.Marshal(r.Content[0])
	var m map[string]interface{}
	json.Unmarshal(b, &m) //nolint:errcheck
	if t, ok := m["text"].(string); ok {
		return t
	}
	return ""
}

// ── resolve_prompt ────────────────────────────────────────────────────────────

func TestResolvePromptTool(t *testing.T) {
	resolver, _, d := newMCPDeps(t)
	owner := uuid.New()

	d.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").
		Return(domainprompt.Config{
			ID:                uuid.New(),
			OwnerID:           &owner,
			PromptKey:         "sales_outreach",
			SystemInstruction: "custom instruction",
			PromptTemplate:    "custom template",
			Temperature:       0.5,
			TopP:              0.8,
			Version:           3,
			IsActive:          true,
		}, nil)

	handler := resolvePromptHandler(resolver)
	res, err := handler(context.Background(), makeReq(map[string]any{
		"prompt_key": "sales_outreach",
		"owner_id":   owner.String(),
	}))
	require.NoError(t, err)

	var got domainprompt.Resolved
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	assert.Equal(t, domainprompt.SourceOverride, got.Source)
	assert.Equal(t, 3, got.Version)
}

func TestResolvePromptTool_InvalidOwner(t *testing.T) {
	resolver, _, _ := newMCPDeps(t)

	handler := resolvePromptHandler(resolver)
	res, err := handler(context.Background(), makeReq(map[string]any{
		"prompt_key": "sales_outreach",
		"owner_id":   "not-a-uuid",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "error:")
}

func TestResolvePromptTool_UnknownKey(t *testing.T) {
	resolver, _, d := newMCPDeps(t)

	d.repo.EXPECT().GetActive(gomock.Any(), nil, "no_such_prompt").
		Return(domainprompt.Config{}, domainprompt.ErrNotFound)

	handler := resolvePromptHandler(resolver)
	res, err := handler(context.Background(), makeReq(map[string]any{
		"prompt_key": "no_such_prompt",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "error:")
}

// ── list_prompt_catalog ───────────────────────────────────────────────────────

func TestListCatalogTool(t *testing.T) {
	handler := listCatalogHandler()
	res, err := handler(context.Background(), makeReq(nil))
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &items))
	assert.Len(t, items, len(registry.All()))
	assert.Equal(t, "sales_outreach", items[0]["key"])
	// Catalog listings must not leak full default text — agents resolve for that.
	_, hasText := items[0]["default_system_instruction"]
	assert.False(t, hasText)
}

// ── get_prompt_history ────────────────────────────────────────────────────────

func TestGetHistoryTool(t *testing.T) {
	_, editor, d := newMCPDeps(t)
	owner := uuid.New()
	configID := uuid.New()

	d.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").
		Return(domainprompt.Config{ID: configID, OwnerID: &owner, PromptKey: "sales_outreach", Version: 3, IsActive: true}, nil)
	d.history.EXPECT().ListByConfig(gomock.Any(), configID).
		Return([]domainprompt.Snapshot{{ConfigID: configID, Version: 2}, {ConfigID: configID, Version: 1}}, nil)

	handler := getHistoryHandler(editor)
	res, err := handler(context.Background(), makeReq(map[string]any{
		"prompt_key": "sales_outreach",
		"owner_id":   owner.String(),
	}))
	require.NoError(t, err)

	var got []domainprompt.Snapshot
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Version)
}

func TestGetHistoryTool_SyntheticConfigHasNoHistory(t *testing.T) {
	_, editor, d := newMCPDeps(t)

	d.repo.EXPECT().GetActive(gomock.Any(), nil, "ad_copy").
		Return(domainprompt.Config{}, domainprompt.ErrNotFound)

	handler := getHistoryHandler(editor)
	res, err := handler(context.Background(), makeReq(map[string]any{
		"prompt_key": "ad_copy",
	}))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(res))
}

// ── native prompts ────────────────────────────────────────────────────────────

func TestPromptHandler_ResolvesThroughTiers(t *testing.T) {
	resolver, _, d := newMCPDeps(t)

	// Nothing stored — the registry tier answers.
	d.repo.EXPECT().GetActive(gomock.Any(), nil, "content_blog").
		Return(domainprompt.Config{}, domainprompt.ErrNotFound)

	handler := promptHandler("content_blog", resolver)
	var req mcpmcp.GetPromptRequest
	req.Params.Arguments = map[string]string{}

	res, err := handler(context.Background(), req)
	require.NoError(t, err)

	entry, ok := registry.Lookup("content_blog")
	require.True(t, ok)
	assert.Equal(t, entry.DefaultSystemInstruction, res.Description)
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(mcpmcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, entry.DefaultPromptTemplate, text.Text)
}

func TestPromptHandler_InvalidOwnerFails(t *testing.T) {
	resolver, _, _ := newMCPDeps(t)

	handler := promptHandler("content_blog", resolver)
	var req mcpmcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"owner_id": "nope"}

	_, err := handler(context.Background(), req)
	assert.Error(t, err)
}
