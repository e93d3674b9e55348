package postgres

import (
	"context"
	"fmt"

	"github.com/erieironllc/erieiron-public-common/common/secrets"
	"github.com/jackc/pgx/v5"
)

// connectFn is swapped in tests.
var connectFn = pgx.ConnectConfig

// OpenConn opens a single pgx connection to cfg.Primary with credentials
// from the secret. forceRefresh bypasses the secrets cache, which callers use
// after an authentication failure.
func OpenConn(ctx context.Context, cfg Config, forceRefresh bool) (*pgx.Conn, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cache := cfg.Secrets
	if cache == nil {
		cache = secrets.Default()
	}

	secret, err := cache.FromEnvARN(ctx, cfg.SecretEnvVar, cfg.SecretRegion, forceRefresh)
	if err != nil {
		return nil, fmt.Errorf("load database credentials: %w", err)
	}

	connCfg, err := InjectCredentials(cfg.Primary, secret).connConfig()
	if err != nil {
		return nil, err
	}

	conn, err := connectFn(ctx, connCfg)
	if err != nil {
		return nil, sanitize(err)
	}

	return conn, nil
}
