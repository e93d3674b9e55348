package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/erieironllc/erieiron-public-common/common/log"
	"github.com/erieironllc/erieiron-public-common/common/secrets"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// dialFn opens one driver connection. Tests replace it.
var dialFn = func(ctx context.Context, cfg *pgx.ConnConfig) (driver.Conn, error) {
	return stdlib.GetConnector(*cfg).Connect(ctx)
}

// Connector is a driver.Connector that resolves credentials from Secrets
// Manager for every new connection.
type Connector struct {
	settings     Settings
	secretEnvVar string
	region       string
	cache        *secrets.Cache
	logger       log.Logger
}

var _ driver.Connector = (*Connector)(nil)

// NewConnector returns a connector for settings. Credentials come from the
// secret whose ARN is in secretEnvVar.
func NewConnector(settings Settings, cache *secrets.Cache, secretEnvVar, region string, logger log.Logger) (*Connector, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}

	if cache == nil {
		cache = secrets.Default()
	}

	if secretEnvVar == "" {
		secretEnvVar = DefaultSecretEnvVar
	}

	return &Connector{
		settings:     settings,
		secretEnvVar: secretEnvVar,
		region:       region,
		cache:        cache,
		logger:       log.OrNop(logger),
	}, nil
}

// Connect opens a connection with cached credentials. If that fails for any
// reason other than ctx ending, the secret is fetched again and one more
// attempt is made.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	cfg, err := c.connConfig(ctx, false)
	if err != nil {
		return nil, err
	}

	conn, err := dialFn(ctx, cfg)
	if err == nil {
		return conn, nil
	}

	if ctx.Err() != nil {
		return nil, sanitize(err)
	}

	c.logger.Log(ctx, log.LevelWarn, "database connection failed; refreshing Secrets Manager credentials and retrying",
		log.String("address", c.settings.Address()),
		log.Err(sanitize(err)),
	)

	cfg, refreshErr := c.connConfig(ctx, true)
	if refreshErr != nil {
		return nil, fmt.Errorf("refresh credentials after %v: %w", sanitize(err), refreshErr)
	}

	conn, err = dialFn(ctx, cfg)
	if err != nil {
		return nil, sanitize(err)
	}

	return conn, nil
}

// Driver implements driver.Connector.
func (c *Connector) Driver() driver.Driver {
	return stdlib.GetDefaultDriver()
}

func (c *Connector) connConfig(ctx context.Context, forceRefresh bool) (*pgx.ConnConfig, error) {
	secret, err := c.cache.FromEnvARN(ctx, c.secretEnvVar, c.region, forceRefresh)
	if err != nil {
		return nil, fmt.Errorf("load database credentials: %w", err)
	}

	return InjectCredentials(c.settings, secret).connConfig()
}
