// Package verdictcache keeps spelling verdicts across runs. An in-process LRU
// sits in front of Redis; keys are scoped by classifier fingerprint so a
// changed dictionary or exception list never reuses stale verdicts.
package verdictcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/resilience"
)

const (
	keyPrefix = "spell:verdict:"
	batchSize = 1000
)

// Backend is the remote key-value store behind the cache.
type Backend interface {
	MGet(ctx context.Context, keys ...string) ([]string, []bool, error)
	SetMany(ctx context.Context, values map[string]string, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Cache implements spell.VerdictStore.
type Cache struct {
	backend Backend
	local   *lru.Cache[string, bool]
	ttl     time.Duration
	breaker *resilience.Breaker
	logger  *slog.Logger
}

// New creates a cache over backend. localSize bounds the in-process layer;
// zero disables it.
func New(backend Backend, localSize int, ttl time.Duration) (*Cache, error) {
	c := &Cache{
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default().With("component", "verdict-cache"),
	}
	if localSize > 0 {
		local, err := lru.New[string, bool](localSize)
		if err != nil {
			return nil, fmt.Errorf("creating local verdict cache: %w", err)
		}
		c.local = local
	}
	return c, nil
}

// UseBreaker routes every backend call through b. While b is open the cache
// answers from the local layer only and reports resilience.ErrCircuitOpen.
func (c *Cache) UseBreaker(b *resilience.Breaker) {
	c.breaker = b
}

func (c *Cache) guard(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Do(fn)
}

// Key returns the backend key of token under fingerprint.
func Key(fingerprint, token string) string {
	return keyPrefix + fingerprint + ":" + token
}

// Lookup returns the stored verdicts for the tokens it knows.
func (c *Cache) Lookup(ctx context.Context, fingerprint string, tokens []string) (map[string]bool, error) {
	out := make(map[string]bool)
	remote := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if c.local != nil {
			if v, ok := c.local.Get(Key(fingerprint, t)); ok {
				out[t] = v
				continue
			}
		}
		remote = append(remote, t)
	}

	for start := 0; start < len(remote); start += batchSize {
		end := min(start+batchSize, len(remote))
		keys := make([]string, 0, end-start)
		for _, t := range remote[start:end] {
			keys = append(keys, Key(fingerprint, t))
		}
		var (
			vals  []string
			found []bool
		)
		err := c.guard(func() error {
			var err error
			vals, found, err = c.backend.MGet(ctx, keys...)
			return err
		})
		if err != nil {
			return out, fmt.Errorf("looking up verdicts: %w", err)
		}
		for i, t := range remote[start:end] {
			if !found[i] {
				continue
			}
			v := vals[i] == "1"
			out[t] = v
			if c.local != nil {
				c.local.Add(keys[i], v)
			}
		}
	}
	c.logger.Debug("verdict lookup",
		"fingerprint", fingerprint,
		"tokens", len(tokens),
		"hits", len(out),
	)
	return out, nil
}

// Store writes verdicts to both layers.
func (c *Cache) Store(ctx context.Context, fingerprint string, verdicts map[string]bool) error {
	batch := make(map[string]string, min(len(verdicts), batchSize))
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.guard(func() error { return c.backend.SetMany(ctx, batch, c.ttl) }); err != nil {
			return fmt.Errorf("storing verdicts: %w", err)
		}
		clear(batch)
		return nil
	}
	for t, v := range verdicts {
		key := Key(fingerprint, t)
		if c.local != nil {
			c.local.Add(key, v)
		}
		batch[key] = encode(v)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Purge removes the verdicts of one fingerprint, or all verdicts when
// fingerprint is empty, and returns the number of remote keys deleted.
func (c *Cache) Purge(ctx context.Context, fingerprint string) (int64, error) {
	pattern := keyPrefix + "*"
	if fingerprint != "" {
		pattern = keyPrefix + fingerprint + ":*"
	}
	if c.local != nil {
		c.local.Purge()
	}
	n, err := c.backend.FlushByPattern(ctx, pattern)
	if err != nil {
		return n, fmt.Errorf("purging verdicts: %w", err)
	}
	c.logger.Info("verdicts purged", "pattern", pattern, "deleted", n)
	return n, nil
}

func encode(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
