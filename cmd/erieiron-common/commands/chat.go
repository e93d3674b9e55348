package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/erieironllc/erieiron-public-common/common/llm"
	"github.com/spf13/cobra"
)

// newLLMClient is swapped in tests.
var newLLMClient = func(root *rootOptions, region string) *llm.Client {
	return llm.New(llm.WithSecrets(secretCache()), llm.WithRegion(region), llm.WithLogger(root.logger))
}

func chatCmd(root *rootOptions) *cobra.Command {
	var (
		tag          string
		intelligence string
		system       string
		schemaFile   string
		region       string
	)

	cmd := &cobra.Command{
		Use:   "chat <prompt>...",
		Short: "Send prompts to the LLM and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := llm.ParseIntelligence(intelligence)
			if err != nil {
				return err
			}

			req := llm.Request{Tag: tag, Intelligence: tier, SystemPrompt: system, UserPrompts: args}

			if schemaFile != "" {
				schema, err := os.ReadFile(schemaFile)
				if err != nil {
					return fmt.Errorf("read schema: %w", err)
				}

				req.ResponseSchema = json.RawMessage(schema)
			}

			resp, err := newLLMClient(root, region).Chat(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)

			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "cli", "billing tag")
	cmd.Flags().StringVar(&intelligence, "intelligence", string(llm.IntelligenceMedium), "low, medium or high")
	cmd.Flags().StringVar(&system, "system", "", "system prompt")
	cmd.Flags().StringVar(&schemaFile, "schema-file", "", "JSON schema the reply must follow")
	cmd.Flags().StringVar(&region, "region", "", "AWS region of the API keys secret")

	return cmd
}
