// Package circuitbreaker wraps sony/gobreaker for calls to external credential
// stores. Once a store keeps failing the breaker opens and callers fail fast
// instead of stacking up slow SDK retries during an outage.
package circuitbreaker
