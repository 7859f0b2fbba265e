package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outflowhq/prompt-engine/internal/adapter/memory"
	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
	portcache "github.com/outflowhq/prompt-engine/internal/port/cache"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newCache(t *testing.T, ttl time.Duration) (*memory.Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return memory.NewCache(ttl, clock.Now), clock
}

func resolved(key string) domainprompt.Resolved {
	return domainprompt.Resolved{
		PromptKey:      key,
		PromptTemplate: "template for " + key,
		Temperature:    0.7,
		TopP:           0.9,
		Version:        1,
		Source:         domainprompt.SourceDefault,
	}
}

func TestGet_Miss(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	_, err := c.Get(context.Background(), "system_sales_outreach")
	assert.ErrorIs(t, err, portcache.ErrMiss)
}

func TestSetGet_RoundTrip(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	want := resolved("sales_outreach")
	require.NoError(t, c.Set(context.Background(), "system_sales_outreach", want))

	got, err := c.Get(context.Background(), "system_sales_outreach")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGet_TTLBoundary(t *testing.T) {
	ttl := 5 * time.Minute
	c, clock := newCache(t, ttl)
	require.NoError(t, c.Set(context.Background(), "system_content_blog", resolved("content_blog")))

	// Just inside the window: still served verbatim.
	clock.Advance(ttl - time.Millisecond)
	got, err := c.Get(context.Background(), "system_content_blog")
	require.NoError(t, err)
	assert.Equal(t, "content_blog", got.PromptKey)

	// At and past the boundary: expired.
	clock.Advance(2 * time.Millisecond)
	_, err = c.Get(context.Background(), "system_content_blog")
	assert.ErrorIs(t, err, portcache.ErrMiss)

	// Lazy expiry removed the entry on access.
	assert.Equal(t, 0, c.Len())
}

func TestGet_ExpiredExactlyAtTTL(t *testing.T) {
	ttl := 5 * time.Minute
	c, clock := newCache(t, ttl)
	require.NoError(t, c.Set(context.Background(), "k_a", resolved("a")))

	clock.Advance(ttl)
	_, err := c.Get(context.Background(), "k_a")
	assert.ErrorIs(t, err, portcache.ErrMiss)
}

func TestSet_RefreshesTTL(t *testing.T) {
	ttl := time.Minute
	c, clock := newCache(t, ttl)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k_a", resolved("a")))

	clock.Advance(50 * time.Second)
	require.NoError(t, c.Set(ctx, "k_a", resolved("a")))

	// 70s after the first Set, 20s after the second: still live.
	clock.Advance(20 * time.Second)
	_, err := c.Get(ctx, "k_a")
	assert.NoError(t, err)
}

func TestInvalidate_ExactKey(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "system_sales_outreach", resolved("sales_outreach")))
	require.NoError(t, c.Set(ctx, "system_content_blog", resolved("content_blog")))

	require.NoError(t, c.Invalidate(ctx, "system_sales_outreach"))

	_, err := c.Get(ctx, "system_sales_outreach")
	assert.ErrorIs(t, err, portcache.ErrMiss)
	_, err = c.Get(ctx, "system_content_blog")
	assert.NoError(t, err)
}

func TestInvalidateOwner_RemovesOnlyThatOwner(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	require.NoError(t, c.Set(ctx, domainprompt.CacheKey(&owner, "sales_outreach"), resolved("sales_outreach")))
	require.NoError(t, c.Set(ctx, domainprompt.CacheKey(&owner, "content_blog"), resolved("content_blog")))
	require.NoError(t, c.Set(ctx, domainprompt.CacheKey(&other, "sales_outreach"), resolved("sales_outreach")))
	require.NoError(t, c.Set(ctx, domainprompt.CacheKey(nil, "sales_outreach"), resolved("sales_outreach")))

	require.NoError(t, c.InvalidateOwner(ctx, domainprompt.OwnerCachePrefix(&owner)))

	_, err := c.Get(ctx, domainprompt.CacheKey(&owner, "sales_outreach"))
	assert.ErrorIs(t, err, portcache.ErrMiss)
	_, err = c.Get(ctx, domainprompt.CacheKey(&owner, "content_blog"))
	assert.ErrorIs(t, err, portcache.ErrMiss)

	_, err = c.Get(ctx, domainprompt.CacheKey(&other, "sales_outreach"))
	assert.NoError(t, err, "other owner's entries must survive")
	_, err = c.Get(ctx, domainprompt.CacheKey(nil, "sales_outreach"))
	assert.NoError(t, err, "system entries must survive")
}

func TestClear(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k_a", resolved("a")))
	require.NoError(t, c.Set(ctx, "k_b", resolved("b")))

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}
