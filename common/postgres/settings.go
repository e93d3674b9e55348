package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/erieironllc/erieiron-public-common/common"
	"github.com/erieironllc/erieiron-public-common/common/secrets"
	"github.com/jackc/pgx/v5"
)

// Environment variables read by SettingsFromEnv and ConnMaxAgeFromEnv.
const (
	EnvHost             = "ERIEIRON_DB_HOST"
	EnvPort             = "ERIEIRON_DB_PORT"
	EnvName             = "ERIEIRON_DB_NAME"
	EnvSSLMode          = "ERIEIRON_DB_SSLMODE"
	EnvConnMaxAge       = "ERIEIRON_DB_CONN_MAX_AGE"
	EnvConnMaxAgeLegacy = "DJANGO_DB_CONN_MAX_AGE"
	DefaultSecretEnvVar = "RDS_SECRET_ARN"
	defaultPort         = 5432
	defaultSSLMode      = "prefer"
	defaultConnMaxAge   = 60 * time.Second
)

// Unlimited as a ConnMaxAge keeps connections open forever.
const Unlimited time.Duration = -1

var (
	// ErrInvalidSettings is returned when settings cannot describe a connection.
	ErrInvalidSettings = errors.New("invalid postgres settings")
	// ErrIncompleteSecret is returned when a secret lacks connection fields.
	ErrIncompleteSecret = errors.New("database secret is incomplete")
)

// Settings describes one PostgreSQL endpoint.
//
// ConnMaxAge is the longest a pooled connection is reused. Zero disables
// reuse entirely, Unlimited never recycles.
type Settings struct {
	Host       string
	Port       int
	Database   string
	User       string
	Password   string
	SSLMode    string
	ConnMaxAge time.Duration
	Options    map[string]string
}

// String redacts the password.
func (s Settings) String() string {
	return fmt.Sprintf("Settings{Host:%s, Port:%d, Database:%s, User:%s, Password:REDACTED}", s.Host, s.Port, s.Database, s.User)
}

// GoString redacts the password for %#v.
func (s Settings) GoString() string { return s.String() }

func (s Settings) validate() error {
	if strings.TrimSpace(s.Host) == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidSettings)
	}

	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, s.Port)
	}

	return nil
}

// SettingsFromEnv reads host, port, database name and sslmode from the
// ERIEIRON_DB_* variables.
func SettingsFromEnv() Settings {
	return Settings{
		Host:       common.GetenvOrDefault(EnvHost, ""),
		Port:       int(common.GetenvIntOrDefault(EnvPort, defaultPort)),
		Database:   common.GetenvOrDefault(EnvName, ""),
		SSLMode:    common.GetenvOrDefault(EnvSSLMode, defaultSSLMode),
		ConnMaxAge: ConnMaxAgeFromEnv(),
	}
}

// ConnMaxAgeFromEnv returns the connection max age in seconds from
// ERIEIRON_DB_CONN_MAX_AGE, or DJANGO_DB_CONN_MAX_AGE when the former is not
// set. "none" or "unlimited" yield Unlimited. The default is 60 seconds.
func ConnMaxAgeFromEnv() time.Duration {
	raw := common.GetenvFirst(EnvConnMaxAge, EnvConnMaxAgeLegacy)

	switch strings.ToLower(raw) {
	case "":
		return defaultConnMaxAge
	case "none", "unlimited":
		return Unlimited
	}

	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds < 0 {
		return defaultConnMaxAge
	}

	return common.SecondsToDuration(seconds)
}

// SettingsFromSecret builds settings entirely from the RDS secret named by
// envVar (dbname, username, password, host, port).
func SettingsFromSecret(ctx context.Context, cache *secrets.Cache, envVar, region string) (Settings, error) {
	if envVar == "" {
		envVar = DefaultSecretEnvVar
	}

	secret, err := cache.FromEnvARN(ctx, envVar, region, false)
	if err != nil {
		return Settings{}, err
	}

	var missing []string

	for _, key := range []string{"dbname", "username", "password", "host", "port"} {
		if secret.String(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return Settings{}, fmt.Errorf("%w: missing %s", ErrIncompleteSecret, strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(secret.String("port"))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: port is not a number", ErrIncompleteSecret)
	}

	return Settings{
		Host:       secret.String("host"),
		Port:       port,
		Database:   secret.String("dbname"),
		User:       secret.String("username"),
		Password:   secret.String("password"),
		SSLMode:    common.GetenvOrDefault(EnvSSLMode, defaultSSLMode),
		ConnMaxAge: ConnMaxAgeFromEnv(),
	}, nil
}

// InjectCredentials overlays username and password from secret onto s. Blank
// secret fields leave the existing values alone. dbname only fills an empty
// Database.
func InjectCredentials(s Settings, secret secrets.Secret) Settings {
	if user := secret.String("username"); user != "" {
		s.User = user
	}

	if password := secret.String("password"); password != "" {
		s.Password = password
	}

	if s.Database == "" {
		s.Database = secret.String("dbname")
	}

	return s
}

// connConfig converts s to a pgx config. Credentials are set on the parsed
// config rather than in the connection string so they need no quoting.
func (s Settings) connConfig() (*pgx.ConnConfig, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	port := s.Port
	if port == 0 {
		port = defaultPort
	}

	sslMode := s.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	parts := []string{
		"host=" + quoteValue(s.Host),
		"port=" + strconv.Itoa(port),
		"sslmode=" + quoteValue(sslMode),
	}

	if s.Database != "" {
		parts = append(parts, "dbname="+quoteValue(s.Database))
	}

	keys := make([]string, 0, len(s.Options))
	for k := range s.Options {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		parts = append(parts, k+"="+quoteValue(s.Options[k]))
	}

	cfg, err := pgx.ParseConfig(strings.Join(parts, " "))
	if err != nil {
		return nil, &SanitizedError{err: err}
	}

	if s.User != "" {
		cfg.User = s.User
	}

	if s.Password != "" {
		cfg.Password = s.Password
	}

	return cfg, nil
}

// Address returns host:port.
func (s Settings) Address() string {
	port := s.Port
	if port == 0 {
		port = defaultPort
	}

	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}

	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)

	return "'" + v + "'"
}
