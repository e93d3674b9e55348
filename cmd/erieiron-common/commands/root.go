package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erieironllc/erieiron-public-common/common"
	"github.com/erieironllc/erieiron-public-common/common/log"
	"github.com/erieironllc/erieiron-public-common/common/secrets"
	"github.com/erieironllc/erieiron-public-common/common/zap"
	"github.com/erieironllc/erieiron-public-common/internal/release"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	// EnvEnvironment selects the logger profile. Unknown values fall back to
	// production with a warning.
	EnvEnvironment = "ERIEIRON_ENV"
	// EnvLogJSON switches the CLI from console to JSON log encoding.
	EnvLogJSON = "ERIEIRON_LOG_JSON"
)

// Swapped in tests.
var (
	newGit      = func() release.Git { return &release.ExecGit{} }
	secretCache = secrets.Default
	newLogger   = newZapLogger
)

func newZapLogger(level string) (log.Logger, error) {
	raw := common.GetenvOrDefault(EnvEnvironment, "")
	env, envErr := zap.ParseEnvironment(raw)

	logger, err := zap.New(zap.Config{
		Environment: env,
		Level:       level,
		Console:     !common.GetenvBoolOrDefault(EnvLogJSON, false),
	})
	if err != nil {
		return nil, err
	}

	if envErr != nil {
		logger.Log(context.Background(), log.LevelWarn, "unknown environment, using production",
			log.String("env", EnvEnvironment),
			log.String("value", raw),
		)
	}

	return logger, nil
}

type rootOptions struct {
	envFile  string
	logLevel string
	logger   log.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{logger: log.NewNop()}

	root := &cobra.Command{
		Use:           "erieiron-common",
		Short:         "Release and credential tooling for erieiron services",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil {
					return fmt.Errorf("load env file %s: %w", opts.envFile, err)
				}
			}

			logger, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}

			opts.logger = logger

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			_ = opts.logger.Sync(cmd.Context())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file loaded before running")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		releaseTagCmd(opts),
		secretARNCmd(opts),
		dbCheckCmd(opts),
		chatCmd(opts),
		versionCmd(),
	)

	return root
}

// Execute runs the CLI and prints "Error: ..." to stderr on failure.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, NewRootCmd())
}

func run(ctx context.Context, root *cobra.Command) error {
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}

	return nil
}
