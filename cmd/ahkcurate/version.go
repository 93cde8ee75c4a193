package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ahkcurate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ahkcurate version %s\n", strings.TrimSpace(ahkcurate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
