package main

import (
	"github.com/aretw0/unparse/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <tree>",
	Short: "Check that the grammar covers every node type of a tree",
	Long:  `Reports every node type in the tree that the grammar has no rule for, without rendering.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.OutOrStdout(), args[0], options(cmd))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
