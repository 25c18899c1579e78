package main

import (
	"fmt"
	"os"

	"github.com/gekko3d/armviz/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "armviz",
	Short: "armviz shows and poses robot arms described in URDF",
	Long:  `armviz loads a URDF robot and lets you move it with forward or inverse kinematics.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads --config, or the defaults when it is not set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug, _ = cmd.Flags().GetBool("debug")
	}
	return cfg, nil
}
