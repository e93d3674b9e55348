// Package backoff provides exponential delays with full jitter and a small
// retry loop used around Secrets Manager calls.
package backoff
