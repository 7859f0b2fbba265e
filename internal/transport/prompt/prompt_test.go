package prompt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/outflowhq/prompt-engine/internal/adapter/memory"
	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
	"github.com/outflowhq/prompt-engine/internal/domain/registry"
	"github.com/outflowhq/prompt-engine/internal/mocks"
	editorsvc "github.com/outflowhq/prompt-engine/internal/service/editor"
	resolversvc "github.com/outflowhq/prompt-engine/internal/service/resolver"
	transportprompt "github.com/outflowhq/prompt-engine/internal/transport/prompt"
)

func init() { gin.SetMode(gin.TestMode) }

type handlerMocks struct {
	repo    *mocks.MockConfigRepository
	history *mocks.MockHistoryRepository
	cache   *mocks.MockResolutionCache
	bus     *mocks.MockEventBus
	locker  *mocks.MockAdvisoryLocker
}

func newHandler(t *testing.T) (*gin.Engine, *handlerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &handlerMocks{
		repo:    mocks.NewMockConfigRepository(ctrl),
		history: mocks.NewMockHistoryRepository(ctrl),
		cache:   mocks.NewMockResolutionCache(ctrl),
		bus:     mocks.NewMockEventBus(ctrl),
		locker:  mocks.NewMockAdvisoryLocker(ctrl),
	}

	editor := editorsvc.NewService(m.repo, m.history, m.cache, m.bus, m.locker)
	// Resolver tests use a real cache so GETs don't need cache expectations.
	resolver := resolversvc.NewService(m.repo, memory.NewCache(0, nil))

	r := gin.New()
	transportprompt.Register(r.Group("/prompts"), editor, resolver)
	return r, m
}

func (m *handlerMocks) expectLock() {
	m.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ int64, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func storedConfig(ownerID *uuid.UUID, key string, version int) domainprompt.Config {
	return domainprompt.Config{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		PromptKey:         key,
		Category:          "outreach",
		SystemInstruction: "stored instruction",
		PromptTemplate:    "stored template",
		Temperature:       0.7,
		TopP:              0.9,
		Version:           version,
		IsActive:          true,
		IsDefault:         ownerID == nil,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ── GET / (catalog) ───────────────────────────────────────────────────────────

func TestListCatalog(t *testing.T) {
	r, _ := newHandler(t)

	w := doJSON(t, r, http.MethodGet, "/prompts", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got []registry.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, len(registry.All()))
}

// ── GET /:key/resolve ─────────────────────────────────────────────────────────

func TestResolvePrompt_SystemDefault(t *testing.T) {
	r, m := newHandler(t)

	m.repo.EXPECT().GetActive(gomock.Any(), nil, "sales_outreach").
		Return(storedConfig(nil, "sales_outreach", 2), nil)

	w := doJSON(t, r, http.MethodGet, "/prompts/sales_outreach/resolve", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got domainprompt.Resolved
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domainprompt.SourceDefault, got.Source)
	assert.Equal(t, 2, got.Version)
}

func TestResolvePrompt_OwnerOverride(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()

	m.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").
		Return(storedConfig(&owner, "sales_outreach", 4), nil)

	w := doJSON(t, r, http.MethodGet, "/prompts/sales_outreach/resolve?owner_id="+owner.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got domainprompt.Resolved
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domainprompt.SourceOverride, got.Source)
}

func TestResolvePrompt_InvalidOwnerID(t *testing.T) {
	r, _ := newHandler(t)

	w := doJSON(t, r, http.MethodGet, "/prompts/sales_outreach/resolve?owner_id=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolvePrompt_UnknownKey(t *testing.T) {
	r, m := newHandler(t)

	m.repo.EXPECT().GetActive(gomock.Any(), nil, "no_such_prompt").
		Return(domainprompt.Config{}, domainprompt.ErrNotFound)

	w := doJSON(t, r, http.MethodGet, "/prompts/no_such_prompt/resolve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── GET /:key (config) ────────────────────────────────────────────────────────

func TestGetConfig_SyntheticWhenNothingStored(t *testing.T) {
	r, m := newHandler(t)

	m.repo.EXPECT().GetActive(gomock.Any(), nil, "content_blog").
		Return(domainprompt.Config{}, domainprompt.ErrNotFound)

	w := doJSON(t, r, http.MethodGet, "/prompts/content_blog", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got domainprompt.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 0, got.Version)
	assert.Equal(t, "content_blog", got.PromptKey)
}

// ── PUT /:key (upsert) ────────────────────────────────────────────────────────

func TestUpsertConfig_Success(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()
	cur := storedConfig(&owner, "sales_outreach", 2)

	m.expectLock()
	m.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").Return(cur, nil)

	updated := cur
	updated.Version = 3
	m.repo.EXPECT().SnapshotAndUpdate(gomock.Any(), cur.ID, 2, gomock.Any(), "shorter opener").Return(updated, nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil)
	m.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodPut, "/prompts/sales_outreach", map[string]any{
		"owner_id":           owner.String(),
		"system_instruction": "new instruction",
		"prompt_template":    "new template",
		"temperature":        0.6,
		"top_p":              0.85,
		"expected_version":   2,
		"change_note":        "shorter opener",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var got domainprompt.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Version)
}

func TestUpsertConfig_MissingRequiredFields(t *testing.T) {
	r, _ := newHandler(t)

	w := doJSON(t, r, http.MethodPut, "/prompts/sales_outreach", map[string]any{
		"temperature": 0.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpsertConfig_OutOfRangeParams(t *testing.T) {
	r, _ := newHandler(t)

	w := doJSON(t, r, http.MethodPut, "/prompts/sales_outreach", map[string]any{
		"system_instruction": "x",
		"prompt_template":    "y",
		"temperature":        1.7,
		"top_p":              0.9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpsertConfig_VersionConflict(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()
	cur := storedConfig(&owner, "sales_outreach", 5)

	m.expectLock()
	m.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").Return(cur, nil)
	m.repo.EXPECT().SnapshotAndUpdate(gomock.Any(), cur.ID, 4, gomock.Any(), gomock.Any()).
		Return(domainprompt.Config{}, domainprompt.ErrVersionConflict)

	w := doJSON(t, r, http.MethodPut, "/prompts/sales_outreach", map[string]any{
		"owner_id":           owner.String(),
		"system_instruction": "new instruction",
		"prompt_template":    "new template",
		"temperature":        0.6,
		"top_p":              0.85,
		"expected_version":   4,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpsertConfig_UnknownKey(t *testing.T) {
	r, _ := newHandler(t)

	w := doJSON(t, r, http.MethodPut, "/prompts/no_such_prompt", map[string]any{
		"system_instruction": "x",
		"prompt_template":    "y",
		"temperature":        0.5,
		"top_p":              0.9,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── POST /:key/restore ────────────────────────────────────────────────────────

func TestRestoreVersion_Success(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()
	cur := storedConfig(&owner, "sales_outreach", 5)

	snap := domainprompt.Snapshot{
		ConfigID:          cur.ID,
		Version:           2,
		SystemInstruction: "old instruction",
		PromptTemplate:    "old template",
		Temperature:       0.4,
		TopP:              0.8,
	}

	m.expectLock()
	m.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").Return(cur, nil)
	m.history.EXPECT().GetByVersion(gomock.Any(), cur.ID, 2).Return(snap, nil)

	restored := cur
	restored.Version = 6
	m.repo.EXPECT().SnapshotAndUpdate(gomock.Any(), cur.ID, 5, gomock.Any(), "restored version 2").Return(restored, nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil)
	m.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodPost, "/prompts/sales_outreach/restore", map[string]any{
		"owner_id": owner.String(),
		"version":  2,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var got domainprompt.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 6, got.Version)
}

func TestRestoreVersion_MissingVersion(t *testing.T) {
	r, _ := newHandler(t)

	w := doJSON(t, r, http.MethodPost, "/prompts/sales_outreach/restore", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestoreVersion_VersionNotFound(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()
	cur := storedConfig(&owner, "sales_outreach", 5)

	m.expectLock()
	m.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").Return(cur, nil)
	m.history.EXPECT().GetByVersion(gomock.Any(), cur.ID, 42).
		Return(domainprompt.Snapshot{}, domainprompt.ErrNotFound)

	w := doJSON(t, r, http.MethodPost, "/prompts/sales_outreach/restore", map[string]any{
		"owner_id": owner.String(),
		"version":  42,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── DELETE /:key (reset) ──────────────────────────────────────────────────────

func TestResetToDefault_Success(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()

	m.expectLock()
	m.repo.EXPECT().Delete(gomock.Any(), &owner, "sales_outreach").Return(uuid.New(), true, nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil)
	m.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodDelete, "/prompts/sales_outreach?owner_id="+owner.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestResetToDefault_Idempotent(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()

	m.expectLock()
	m.repo.EXPECT().Delete(gomock.Any(), &owner, "sales_outreach").Return(uuid.Nil, false, nil)

	w := doJSON(t, r, http.MethodDelete, "/prompts/sales_outreach?owner_id="+owner.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestResetToDefault_SystemDefaultRejected(t *testing.T) {
	r, _ := newHandler(t)

	w := doJSON(t, r, http.MethodDelete, "/prompts/sales_outreach", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── GET /:key/history ─────────────────────────────────────────────────────────

func TestListHistory_ReturnsSnapshots(t *testing.T) {
	r, m := newHandler(t)
	owner := uuid.New()
	cur := storedConfig(&owner, "sales_outreach", 3)

	snaps := []domainprompt.Snapshot{
		{ConfigID: cur.ID, Version: 2, ChangeNote: "second pass"},
		{ConfigID: cur.ID, Version: 1, ChangeNote: ""},
	}

	m.repo.EXPECT().GetActive(gomock.Any(), &owner, "sales_outreach").Return(cur, nil)
	m.history.EXPECT().ListByConfig(gomock.Any(), cur.ID).Return(snaps, nil)

	w := doJSON(t, r, http.MethodGet, "/prompts/sales_outreach/history?owner_id="+owner.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got []domainprompt.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Version)
}

func TestListHistory_EmptyForSyntheticConfig(t *testing.T) {
	r, m := newHandler(t)

	m.repo.EXPECT().GetActive(gomock.Any(), nil, "social_post").
		Return(domainprompt.Config{}, domainprompt.ErrNotFound)

	w := doJSON(t, r, http.MethodGet, "/prompts/social_post/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got []domainprompt.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got)
}
