//go:build unit

package secrets

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type fetchResult struct {
	value Value
	err   error
}

// scriptedFetcher replays results in order and repeats the last one.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []fetchResult
	calls   atomic.Int32
	seen    []string
	gate    chan struct{}
}

func (f *scriptedFetcher) Fetch(_ context.Context, secretID, region string) (Value, error) {
	if f.gate != nil {
		<-f.gate
	}

	n := int(f.calls.Add(1)) - 1

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seen = append(f.seen, secretID+"@"+region)

	if n >= len(f.results) {
		n = len(f.results) - 1
	}

	return f.results[n].value, f.results[n].err
}

func jsonValue(s string) fetchResult {
	return fetchResult{value: Value{ARN: "arn:aws:secretsmanager:us-west-2:123456789012:secret:app-AbCdEf", SecretString: s}}
}

func errResult(err error) fetchResult {
	return fetchResult{err: err}
}

// sequenceClock returns the given readings in order, then repeats the last.
func sequenceClock(readings ...time.Duration) Clock {
	var mu sync.Mutex

	i := 0

	return func() time.Duration {
		mu.Lock()
		defer mu.Unlock()

		r := readings[i]
		if i < len(readings)-1 {
			i++
		}

		return r
	}
}
