package commands

import (
	"fmt"

	"github.com/erieironllc/erieiron-public-common/common/postgres"
	"github.com/spf13/cobra"
)

func dbCheckCmd(root *rootOptions) *cobra.Command {
	var (
		region       string
		secretEnv    string
		forceRefresh bool
	)

	cmd := &cobra.Command{
		Use:   "db-check",
		Short: "Connect to postgres using Secrets Manager credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg := postgres.ConfigFromEnv(region)
			cfg.SecretEnvVar = secretEnv
			cfg.Secrets = secretCache()
			cfg.Logger = root.logger

			conn, err := postgres.OpenConn(ctx, cfg, forceRefresh)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			if err := conn.Ping(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", cfg.Primary.Address())

			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region of the secret")
	cmd.Flags().StringVar(&secretEnv, "secret-env", postgres.DefaultSecretEnvVar, "env var holding the credentials secret ARN")
	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "bypass the secrets cache")

	return cmd
}
