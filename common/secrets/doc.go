// Package secrets reads JSON secrets from AWS Secrets Manager through a
// process-local TTL cache.
//
// A Cache keys entries by secret id and region. Lookups younger than the TTL
// are served from memory, a forced lookup always goes to the store, and
// concurrent misses for the same key share one upstream call. Secret values
// are never logged.
//
// Typical usage:
//
//	secret, err := secrets.FromEnvARN(ctx, "RDS_SECRET_ARN", "", false)
//	user := secret.String("username")
//
// The TTL of the package default cache comes from
// ERIEIRON_SECRET_CACHE_TTL_SECONDS (300 when unset, 0 disables caching).
package secrets
