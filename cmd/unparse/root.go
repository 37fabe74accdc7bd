package main

import (
	"fmt"
	"os"

	"github.com/aretw0/unparse/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "unparse",
	Short: "unparse renders syntax trees back to source text",
	Long: `unparse turns a syntax tree (YAML or JSON) back into source text, driven by a
declarative grammar. The es5 grammar is built in; custom grammars are YAML files.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("grammar", "g", "es5", "Grammar name or grammar file path")
	rootCmd.PersistentFlags().String("grammars", "", "Directory of extra grammar files")
	rootCmd.PersistentFlags().Bool("debug", false, "Log to stderr")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

// options reads the flags shared by the rendering commands.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.Grammar, _ = flags.GetString("grammar")
	opts.Grammars, _ = flags.GetString("grammars")
	opts.Debug, _ = flags.GetBool("debug")
	noColor, _ := flags.GetBool("no-color")
	opts.Color = !noColor
	if flags.Lookup("minify") != nil {
		opts.Minify, _ = flags.GetBool("minify")
		opts.Indent, _ = flags.GetString("indent")
	}
	return opts
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("minify", "m", false, "Emit the most compact output the grammar allows")
	cmd.Flags().String("indent", "", "Indentation unit (default: the grammar's)")
}
