package main

import (
	"github.com/gekko3d/armviz"
	"github.com/gekko3d/armviz/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [robot.urdf]",
	Short: "Open the viewer",
	Long:  `Opens a window with the robot. Keys: q inverse/forward, w translate/rotate, e cycle modes, r reset robot, t world controls, g reset target, p save pose, escape quit.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyRunFlags(cmd, args, &cfg); err != nil {
			return err
		}

		app, err := armviz.NewViewer(cfg)
		if err != nil {
			return err
		}
		defer armviz.Shutdown(app)
		app.Run()
		return nil
	},
}

// applyRunFlags lets flags and the positional robot path override cfg.
func applyRunFlags(cmd *cobra.Command, args []string, cfg *config.Config) error {
	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Robot.Path = args[0]
	}
	if flags.Changed("robot") {
		cfg.Robot.Path, _ = flags.GetString("robot")
	}
	if flags.Changed("mode") {
		cfg.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("end-effector") {
		cfg.Robot.EndEffector, _ = flags.GetString("end-effector")
	}
	if flags.Changed("sync") {
		sync, _ := flags.GetBool("sync")
		cfg.Worker = !sync
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("pose") {
		cfg.Robot.Pose, _ = flags.GetString("pose")
	}
	if flags.Changed("show-joints") {
		cfg.Hud.ShowJoints, _ = flags.GetBool("show-joints")
	}
	return cfg.Validate()
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("robot", "", "URDF file to load")
	runCmd.Flags().String("mode", "", "Initial mode: inverse, forward, view or select")
	runCmd.Flags().String("end-effector", "", "Link used as end effector")
	runCmd.Flags().Bool("sync", false, "Solve IK on the render loop instead of a worker goroutine")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	runCmd.Flags().String("pose", "", "JSON pose file applied on load and written with the p key")
	runCmd.Flags().Bool("show-joints", false, "Show a table of joint values")
}
