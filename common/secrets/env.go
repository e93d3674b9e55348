package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/erieironllc/erieiron-public-common/common"
)

// EnvCacheTTL overrides the default cache TTL, in whole seconds.
const EnvCacheTTL = "ERIEIRON_SECRET_CACHE_TTL_SECONDS"

var (
	defaultMu    sync.Mutex
	defaultCache *Cache
)

// Default returns the process-wide cache, creating it on first use with an
// AWSFetcher and the TTL from EnvCacheTTL.
func Default() *Cache {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultCache == nil {
		defaultCache = NewCache(NewAWSFetcher(nil), WithTTL(TTLFromEnv()))
	}

	return defaultCache
}

// SetDefault replaces the process-wide cache. Passing nil resets it so the
// next Default call builds a fresh one.
func SetDefault(c *Cache) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultCache = c
}

// TTLFromEnv returns the TTL configured by EnvCacheTTL, or DefaultTTL.
func TTLFromEnv() time.Duration {
	return common.GetenvSecondsOrDefault(EnvCacheTTL, DefaultTTL)
}

// ResolveRegion returns region, falling back to AWS_REGION and then
// AWS_DEFAULT_REGION.
func ResolveRegion(region string) string {
	if r := strings.TrimSpace(region); r != "" {
		return r
	}

	return common.GetenvFirst("AWS_REGION", "AWS_DEFAULT_REGION")
}

// FromEnvARN reads the secret whose ARN is stored in envVar.
func (c *Cache) FromEnvARN(ctx context.Context, envVar, region string, forceRefresh bool) (Secret, error) {
	arn := strings.TrimSpace(os.Getenv(envVar))
	if arn == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, envVar)
	}

	secret, err := c.Get(ctx, arn, region, forceRefresh)
	if err != nil {
		return nil, err
	}

	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSecretEmpty, arn)
	}

	return secret, nil
}

// FromEnvARN reads the secret named by envVar through the default cache.
func FromEnvARN(ctx context.Context, envVar, region string, forceRefresh bool) (Secret, error) {
	return Default().FromEnvARN(ctx, envVar, region, forceRefresh)
}

// ResolveARN returns the full ARN for a friendly secret name through the
// default cache.
func ResolveARN(ctx context.Context, secretID, region string) (string, error) {
	return Default().ARN(ctx, secretID, region)
}
