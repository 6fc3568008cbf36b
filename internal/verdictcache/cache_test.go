package verdictcache

import (
	"context"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/resilience"
)

type fakeBackend struct {
	data     map[string]string
	mgets    int
	keysRead int
	ttl      time.Duration
	err      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string]string)}
}

func (f *fakeBackend) MGet(_ context.Context, keys ...string) ([]string, []bool, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.mgets++
	f.keysRead += len(keys)
	vals := make([]string, len(keys))
	found := make([]bool, len(keys))
	for i, k := range keys {
		vals[i], found[i] = f.data[k]
	}
	return vals, found, nil
}

func (f *fakeBackend) SetMany(_ context.Context, values map[string]string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.ttl = ttl
	for k, v := range values {
		f.data[k] = v
	}
	return nil
}

func (f *fakeBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	var n int64
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(f.data, k)
			n++
		}
	}
	return n, nil
}

func TestStoreAndLookup(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	c, err := New(backend, 0, time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Store(ctx, "fp1", map[string]bool{"teh": true, "the": false}))
	assert.Equal(t, "1", backend.data[Key("fp1", "teh")])
	assert.Equal(t, "0", backend.data[Key("fp1", "the")])
	assert.Equal(t, time.Hour, backend.ttl)

	got, err := c.Lookup(ctx, "fp1", []string{"teh", "the", "spred"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"teh": true, "the": false}, got)

	got, err = c.Lookup(ctx, "fp2", []string{"teh"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalLayerAvoidsBackend(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	c, err := New(backend, 16, time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Store(ctx, "fp", map[string]bool{"teh": true}))
	got, err := c.Lookup(ctx, "fp", []string{"teh"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"teh": true}, got)
	assert.Zero(t, backend.mgets)

	backend.data[Key("fp", "spred")] = "1"
	got, err = c.Lookup(ctx, "fp", []string{"teh", "spred"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, backend.keysRead)

	_, err = c.Lookup(ctx, "fp", []string{"spred"})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.keysRead, "remote hit is promoted into the local layer")
}

func TestLookupBatches(t *testing.T) {
	backend := newFakeBackend()
	c, err := New(backend, 0, time.Minute)
	require.NoError(t, err)

	tokens := make([]string, 2500)
	for i := range tokens {
		tokens[i] = string(rune('a'+i%26)) + string(rune('a'+i/26%26)) + string(rune('a'+i/676))
	}
	_, err = c.Lookup(context.Background(), "fp", tokens)
	require.NoError(t, err)
	assert.Equal(t, 3, backend.mgets)
	assert.Equal(t, 2500, backend.keysRead)
}

func TestBackendErrors(t *testing.T) {
	backend := newFakeBackend()
	backend.err = errors.New("connection refused")
	c, err := New(backend, 0, time.Minute)
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "fp", []string{"teh"})
	assert.ErrorIs(t, err, backend.err)
	err = c.Store(context.Background(), "fp", map[string]bool{"teh": true})
	assert.ErrorIs(t, err, backend.err)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	c, err := New(backend, 8, time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Store(ctx, "old", map[string]bool{"a": true, "b": false}))
	require.NoError(t, c.Store(ctx, "new", map[string]bool{"a": false}))

	n, err := c.Purge(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	got, err := c.Lookup(ctx, "old", []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = c.Lookup(ctx, "new", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": false}, got)

	n, err = c.Purge(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBreakerStopsCallingFailingBackend(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	c, err := New(backend, 8, time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Store(ctx, "fp", map[string]bool{"teh": true}))

	c.UseBreaker(resilience.NewBreaker("redis", resilience.BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour}))
	backend.err = errors.New("connection refused")
	for range 2 {
		_, err = c.Lookup(ctx, "fp", []string{"spred"})
		assert.ErrorIs(t, err, backend.err)
	}

	got, err := c.Lookup(ctx, "fp", []string{"teh", "spred"})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, map[string]bool{"teh": true}, got, "local hits survive an open circuit")
}
