package main

import (
	"context"

	"github.com/aretw0/unparse/internal/cli"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <tree>",
	Short: "Render a tree file to stdout",
	Long: `Renders a syntax tree file (YAML or JSON, "-" for stdin) with the selected
grammar. With --watch, renders again whenever the tree or grammar files change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.CacheDir, _ = cmd.Flags().GetString("cache-dir")

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()
			return cli.Watch(ctx, cmd.OutOrStdout(), args[0], opts)
		}
		return cli.Render(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addOutputFlags(renderCmd)
	renderCmd.Flags().Int("limit", 0, "Stop after this many bytes")
	renderCmd.Flags().String("cache-dir", "", "Cache renders in this directory")
	renderCmd.Flags().BoolP("watch", "w", false, "Render again on file changes")
}
