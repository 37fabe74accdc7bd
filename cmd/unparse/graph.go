package main

import (
	"github.com/aretw0/unparse/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <tree>",
	Short: "Export the syntax tree visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the tree. Nodes whose type the grammar has no rule for are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Graph(cmd.OutOrStdout(), args[0], options(cmd))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
