package main

import (
	"github.com/aretw0/unparse/internal/cli"
	"github.com/spf13/cobra"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks <tree>",
	Short: "List the chunks the walk yields for a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Chunks(cmd.OutOrStdout(), args[0], options(cmd))
	},
}

func init() {
	rootCmd.AddCommand(chunksCmd)
	addOutputFlags(chunksCmd)
}
