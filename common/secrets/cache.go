package secrets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erieironllc/erieiron-public-common/common/backoff"
	"github.com/erieironllc/erieiron-public-common/common/circuitbreaker"
	"github.com/erieironllc/erieiron-public-common/common/log"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is used when no TTL option or env override is set.
const DefaultTTL = 300 * time.Second

// Clock returns a monotonic reading. Only differences between readings are
// meaningful.
type Clock func() time.Duration

func monotonicClock() Clock {
	start := time.Now()

	return func() time.Duration { return time.Since(start) }
}

type cacheKey struct {
	secretID string
	region   string
}

type cacheEntry struct {
	secret    Secret
	arn       string
	fetchedAt time.Duration
}

// Cache is a TTL cache in front of a Fetcher. It is safe for concurrent use.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     Clock
	logger  log.Logger
	breaker *circuitbreaker.Breaker
	retry   backoff.Policy

	breakerSet bool

	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a fetched secret is served from memory. Zero
// disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces the monotonic clock.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Cache) {
		c.logger = log.OrNop(logger)
	}
}

// WithBreaker guards store calls with b. Nil disables the breaker.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(c *Cache) {
		c.breaker = b
		c.breakerSet = true
	}
}

// WithRetry sets the retry policy for store calls.
func WithRetry(p backoff.Policy) Option {
	return func(c *Cache) {
		c.retry = p
	}
}

// NewCache builds a cache over fetcher. By default it retries transient
// failures with backoff.DefaultPolicy and guards the store with a circuit
// breaker.
func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     DefaultTTL,
		now:     monotonicClock(),
		logger:  log.NewNop(),
		retry:   backoff.DefaultPolicy(),
		entries: make(map[cacheKey]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !c.breakerSet {
		c.breaker = circuitbreaker.New("secretsmanager", storeBreakerConfig(), c.logger)
	}

	return c
}

func storeBreakerConfig() circuitbreaker.Config {
	cfg := circuitbreaker.SecretStoreConfig()
	cfg.IsSuccessful = permanent

	return cfg
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the secret for secretID in region. A cached value younger than
// the TTL is returned unless forceRefresh is set. A failed fetch leaves any
// cached value in place.
func (c *Cache) Get(ctx context.Context, secretID, region string, forceRefresh bool) (Secret, error) {
	entry, err := c.get(ctx, secretID, region, forceRefresh)
	if err != nil {
		return nil, err
	}

	return entry.secret.Clone(), nil
}

// ARN returns the full ARN of secretID, which may be a friendly name.
func (c *Cache) ARN(ctx context.Context, secretID, region string) (string, error) {
	entry, err := c.get(ctx, secretID, region, false)
	if err != nil {
		return "", err
	}

	return entry.arn, nil
}

// Invalidate drops the cached entry for secretID in region.
func (c *Cache) Invalidate(secretID, region string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, cacheKey{secretID: secretID, region: ResolveRegion(region)})
}

func (c *Cache) get(ctx context.Context, secretID, region string, forceRefresh bool) (cacheEntry, error) {
	if c == nil || c.fetcher == nil {
		return cacheEntry{}, ErrNilFetcher
	}

	key := cacheKey{secretID: secretID, region: ResolveRegion(region)}
	now := c.now()

	if !forceRefresh {
		if entry, ok := c.lookup(key, now); ok {
			c.logger.Log(ctx, log.LevelDebug, "secret cache hit", log.String("secret_id", secretID))
			return entry, nil
		}
	}

	res, err, _ := c.group.Do(key.secretID+"\x00"+key.region, func() (any, error) {
		return c.fetch(ctx, key, now)
	})
	if err != nil {
		return cacheEntry{}, err
	}

	return res.(cacheEntry), nil
}

func (c *Cache) lookup(key cacheKey, now time.Duration) (cacheEntry, bool) {
	if c.ttl <= 0 {
		return cacheEntry{}, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || now-entry.fetchedAt >= c.ttl {
		return cacheEntry{}, false
	}

	return entry, true
}

func (c *Cache) fetch(ctx context.Context, key cacheKey, now time.Duration) (cacheEntry, error) {
	var value Value

	err := backoff.Retry(ctx, c.retryPolicy(), func(ctx context.Context) error {
		call := func() error {
			var err error
			value, err = c.fetcher.Fetch(ctx, key.secretID, key.region)

			return err
		}

		if c.breaker == nil {
			return call()
		}

		return c.breaker.Execute(call)
	})
	if err != nil {
		c.logger.Log(ctx, log.LevelWarn, "secret fetch failed",
			log.String("secret_id", key.secretID),
			log.String("region", key.region),
			log.Err(err),
		)

		return cacheEntry{}, err
	}

	secret, err := decodeSecret(key.secretID, value)
	if err != nil {
		return cacheEntry{}, err
	}

	entry := cacheEntry{secret: secret, arn: value.ARN, fetchedAt: now}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	c.logger.Log(ctx, log.LevelInfo, "secret fetched",
		log.String("secret_id", key.secretID),
		log.String("region", key.region),
	)

	return entry, nil
}

func (c *Cache) retryPolicy() backoff.Policy {
	p := c.retry
	p.Retryable = func(err error) bool {
		return !permanent(err) && !errors.Is(err, circuitbreaker.ErrOpen)
	}

	return p
}
