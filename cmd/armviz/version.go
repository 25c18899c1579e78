package main

import (
	"fmt"

	"github.com/gekko3d/armviz"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of armviz",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "armviz version %s\n", armviz.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
