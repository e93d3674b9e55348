package commands

import (
	"fmt"

	"github.com/erieironllc/erieiron-public-common/internal/release"
	"github.com/spf13/cobra"
)

func releaseTagCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		remote string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "release-tag",
		Short: "Create and push the v<version> tag for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := release.ReadVersion(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if dryRun {
				fmt.Fprintln(out, release.TagName(version))
				return nil
			}

			tagger := &release.Tagger{Git: newGit(), Remote: remote, Logger: root.logger}

			res, err := tagger.Release(cmd.Context(), version)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Tagged %s and pushed to %s\n", res.Tag, remote)

			for _, tag := range res.Tags {
				fmt.Fprintln(out, tag)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", release.DefaultMetadataFile, "project metadata file")
	cmd.Flags().StringVar(&remote, "remote", release.DefaultRemote, "remote to push the tag to")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the tag without touching git")

	return cmd
}
