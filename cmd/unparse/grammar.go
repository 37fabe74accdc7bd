package main

import (
	"fmt"

	"github.com/aretw0/unparse/internal/cli"
	"github.com/spf13/cobra"
)

var grammarCmd = &cobra.Command{
	Use:   "grammar [name]",
	Short: "Show a grammar reference",
	Long:  `Prints the node types of a grammar and what each renders to, as Markdown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		if len(args) > 0 {
			opts.Grammar = args[0]
		}
		raw, _ := cmd.Flags().GetBool("raw")
		return cli.ShowGrammar(cmd.OutOrStdout(), opts, raw)
	},
}

var grammarsCmd = &cobra.Command{
	Use:   "grammars",
	Short: "List the available grammar names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		names, err := cli.GrammarNames(opts)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(grammarCmd, grammarsCmd)
	grammarCmd.Flags().Bool("raw", false, "Print Markdown without terminal rendering")
}
