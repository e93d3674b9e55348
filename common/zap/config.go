package zap

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const callerSkipFrames = 1

// Environment controls the baseline logger profile.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
	EnvironmentLocal       Environment = "local"
)

// Config contains the logger initialization inputs.
type Config struct {
	Environment Environment
	Level       string
	// Console switches to the human readable encoder. Used by the CLI.
	Console bool
}

// ParseEnvironment maps s to an Environment. Blank means production. Unknown
// values also yield production, together with an error the caller can log.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToLower(strings.TrimSpace(s)))
	if env == "" {
		return EnvironmentProduction, nil
	}

	if err := (Config{Environment: env}).validate(); err != nil {
		return EnvironmentProduction, err
	}

	return env, nil
}

func (c Config) validate() error {
	switch c.Environment {
	case EnvironmentProduction, EnvironmentStaging, EnvironmentDevelopment, EnvironmentLocal:
		return nil
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	if cfg.Environment == "" {
		cfg.Environment = EnvironmentProduction
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid zap config: %w", err)
	}

	level, err := resolveLevel(cfg)
	if err != nil {
		return nil, err
	}

	base := buildConfig(cfg)
	base.Level = level
	base.DisableStacktrace = true

	built, err := base.Build(zap.AddCallerSkip(callerSkipFrames))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{logger: built}, nil
}

func resolveLevel(cfg Config) (zap.AtomicLevel, error) {
	if strings.TrimSpace(cfg.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(strings.TrimSpace(cfg.Level)); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid level %q: %w", cfg.Level, err)
		}

		return zap.NewAtomicLevelAt(parsed), nil
	}

	if cfg.Environment == EnvironmentDevelopment || cfg.Environment == EnvironmentLocal {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}

	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}

func buildConfig(cfg Config) zap.Config {
	var zc zap.Config
	if cfg.Environment == EnvironmentDevelopment || cfg.Environment == EnvironmentLocal {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	zc.Encoding = "json"
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if cfg.Console {
		zc.Encoding = "console"
		zc.EncoderConfig.TimeKey = ""
		zc.EncoderConfig.CallerKey = ""
		zc.OutputPaths = []string{"stderr"}
	}

	return zc
}
