package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bxcodec/dbresolver/v2"
	"github.com/erieironllc/erieiron-public-common/common/log"
	"github.com/erieironllc/erieiron-public-common/common/secrets"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 5 * time.Minute
)

var (
	// ErrInvalidConfig indicates the client configuration is unusable.
	ErrInvalidConfig = errors.New("invalid postgres config")
	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("context is nil")
	// ErrNilClient is returned when a method is called on a nil client.
	ErrNilClient = errors.New("postgres client is nil")
)

var (
	openDBFn = func(c driver.Connector) *sql.DB {
		return sql.OpenDB(c)
	}

	createResolverFn = func(primary, replica *sql.DB, _ log.Logger) (_ dbresolver.DB, err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("failed to create resolver: %v", recovered)
			}
		}()

		opts := []dbresolver.OptionFunc{dbresolver.WithPrimaryDBs(primary)}
		if replica != nil {
			opts = append(opts, dbresolver.WithReplicaDBs(replica), dbresolver.WithLoadBalancer(dbresolver.RoundRobinLB))
		}

		db := dbresolver.New(opts...)
		if db == nil {
			return nil, errors.New("resolver returned nil connection")
		}

		return db, nil
	}
)

// Config configures a Client.
type Config struct {
	Primary Settings
	// Replica is optional. Reads go to the primary when it is nil.
	Replica *Settings
	// SecretEnvVar names the env var holding the credentials secret ARN.
	SecretEnvVar string
	SecretRegion string
	// Secrets defaults to secrets.Default().
	Secrets            *secrets.Cache
	Logger             log.Logger
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxIdleTime    time.Duration
}

func (c Config) withDefaults() Config {
	c.Logger = log.OrNop(c.Logger)

	if c.SecretEnvVar == "" {
		c.SecretEnvVar = DefaultSecretEnvVar
	}

	if c.MaxOpenConnections <= 0 {
		c.MaxOpenConnections = defaultMaxOpenConns
	}

	if c.MaxIdleConnections <= 0 {
		c.MaxIdleConnections = defaultMaxIdleConns
	}

	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = defaultConnMaxIdleTime
	}

	return c
}

func (c Config) validate() error {
	if err := c.Primary.validate(); err != nil {
		return fmt.Errorf("%w: primary: %w", ErrInvalidConfig, err)
	}

	if c.Replica != nil {
		if err := c.Replica.validate(); err != nil {
			return fmt.Errorf("%w: replica: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// ConfigFromEnv builds a Config from SettingsFromEnv and the default secret
// env var.
func ConfigFromEnv(region string) Config {
	return Config{Primary: SettingsFromEnv(), SecretRegion: region}
}

// Client owns the connection pools for a primary and an optional replica.
type Client struct {
	cfg      Config
	mu       sync.RWMutex
	resolver dbresolver.DB
}

// New validates cfg and returns an unconnected client.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Secrets == nil {
		cfg.Secrets = secrets.Default()
	}

	return &Client{cfg: cfg}, nil
}

// Connect builds fresh pools and verifies them with a ping. On success the
// previous pools are closed; on failure they stay in place.
func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return ErrNilClient
	}

	if ctx == nil {
		return ErrNilContext
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context done before database connection: %w", err)
	}

	logger := c.cfg.Logger
	logger.Log(ctx, log.LevelInfo, "connecting to postgres", log.String("address", c.cfg.Primary.Address()))

	primary, err := c.open(c.cfg.Primary)
	if err != nil {
		return err
	}

	var replica *sql.DB
	if c.cfg.Replica != nil {
		if replica, err = c.open(*c.cfg.Replica); err != nil {
			_ = primary.Close()
			return err
		}
	}

	resolver, err := createResolverFn(primary, replica, logger)
	if err != nil {
		_ = primary.Close()

		if replica != nil {
			_ = replica.Close()
		}

		logger.Log(ctx, log.LevelError, "failed to create resolver", log.Err(err))

		return fmt.Errorf("failed to create resolver: %w", err)
	}

	if err := resolver.PingContext(ctx); err != nil {
		_ = resolver.Close()
		err = sanitize(err)
		logger.Log(ctx, log.LevelError, "failed to ping database", log.Err(err))

		return fmt.Errorf("failed to ping database: %w", err)
	}

	if c.resolver != nil {
		if err := c.resolver.Close(); err != nil {
			logger.Log(ctx, log.LevelWarn, "failed to close previous connection", log.Err(sanitize(err)))
		}
	}

	c.resolver = resolver
	logger.Log(ctx, log.LevelInfo, "connected to postgres")

	return nil
}

func (c *Client) open(settings Settings) (*sql.DB, error) {
	connector, err := NewConnector(settings, c.cfg.Secrets, c.cfg.SecretEnvVar, c.cfg.SecretRegion, c.cfg.Logger)
	if err != nil {
		return nil, err
	}

	db := openDBFn(connector)
	db.SetMaxOpenConns(c.cfg.MaxOpenConnections)
	db.SetConnMaxIdleTime(c.cfg.ConnMaxIdleTime)

	switch {
	case settings.ConnMaxAge == 0:
		db.SetMaxIdleConns(0)
	case settings.ConnMaxAge == Unlimited:
		db.SetMaxIdleConns(c.cfg.MaxIdleConnections)
	default:
		db.SetMaxIdleConns(c.cfg.MaxIdleConnections)
		db.SetConnMaxLifetime(settings.ConnMaxAge)
	}

	return db, nil
}

// Resolver returns the connected resolver, connecting on first use.
func (c *Client) Resolver(ctx context.Context) (dbresolver.DB, error) {
	if c == nil {
		return nil, ErrNilClient
	}

	if ctx == nil {
		return nil, ErrNilContext
	}

	c.mu.RLock()
	if c.resolver != nil {
		db := c.resolver
		c.mu.RUnlock()

		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolver != nil {
		return c.resolver, nil
	}

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	return c.resolver, nil
}

// Primary returns the primary *sql.DB, connecting on first use.
func (c *Client) Primary(ctx context.Context) (*sql.DB, error) {
	resolver, err := c.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	dbs := resolver.PrimaryDBs()
	if len(dbs) == 0 {
		return nil, fmt.Errorf("%w: no primary database", ErrInvalidConfig)
	}

	return dbs[0], nil
}

// IsConnected reports whether the client holds a resolver.
func (c *Client) IsConnected() (bool, error) {
	if c == nil {
		return false, ErrNilClient
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.resolver != nil, nil
}

// Close releases the pools. It is safe to call more than once.
func (c *Client) Close() error {
	if c == nil {
		return ErrNilClient
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolver == nil {
		return nil
	}

	err := c.resolver.Close()
	c.resolver = nil

	return err
}
