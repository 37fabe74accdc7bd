package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/unparse"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of unparse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "unparse version %s\n", strings.TrimSpace(unparse.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
