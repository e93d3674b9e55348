//go:build unit || integration

package postgres

import (
	"context"
	"sync"

	"github.com/erieironllc/erieiron-public-common/common/backoff"
	"github.com/erieironllc/erieiron-public-common/common/secrets"
)

// rotatingFetcher serves secret strings in order and repeats the last one.
type rotatingFetcher struct {
	mu     sync.Mutex
	values []string
	calls  int
}

func (f *rotatingFetcher) Fetch(_ context.Context, secretID, _ string) (secrets.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	if i >= len(f.values) {
		i = len(f.values) - 1
	}

	f.calls++

	return secrets.Value{ARN: secretID, SecretString: f.values[i]}, nil
}

func (f *rotatingFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func newTestCache(f secrets.Fetcher) *secrets.Cache {
	return secrets.NewCache(f, secrets.WithRetry(backoff.Policy{Attempts: 1}), secrets.WithBreaker(nil))
}
