package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func secretARNCmd(_ *rootOptions) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "secret-arn <secret-id>",
		Short: "Print the ARN of a Secrets Manager secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arn, err := secretCache().ARN(cmd.Context(), args[0], region)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), arn)

			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region (default AWS_REGION)")

	return cmd
}
