package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gekko3d/armviz"
	"github.com/gekko3d/armviz/kinematics"
	"github.com/gekko3d/armviz/urdf"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect robot.urdf",
	Short: "Print the joints of a robot and its end effector pose",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		desc, err := urdf.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		opts := armviz.DefaultPresenterOptions()
		opts.EndEffector = cfg.Robot.EndEffector
		if cmd.Flags().Changed("end-effector") {
			opts.EndEffector, _ = cmd.Flags().GetString("end-effector")
		}
		opts.IgnoreLimits = cfg.Robot.IgnoreLimits
		log := armviz.NewWriterLogger(cmd.ErrOrStderr(), cmd.ErrOrStderr(), "armviz", cfg.Log.Debug)
		p := armviz.NewPresenter(nil, opts, log)
		if err := p.LoadDescription(desc); err != nil {
			return err
		}

		spec, _ := cmd.Flags().GetString("joints")
		deg, _ := cmd.Flags().GetBool("deg")
		values, err := parseJoints(spec)
		if err != nil {
			return err
		}
		p.SetConfiguration(values, deg)

		printRobot(cmd.OutOrStdout(), p)
		return nil
	},
}

// parseJoints reads "name=value,name=value".
func parseJoints(s string) (map[string]float64, error) {
	out := map[string]float64{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("joint value %q: want name=value", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("joint value %q: %w", part, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

func printRobot(w io.Writer, p *armviz.Presenter) {
	r := p.Robot()
	fmt.Fprintf(w, "robot %s: %d links, %d joints (%d movable)\n", r.Name, len(r.Links()), len(r.Joints()), len(r.MovableJoints()))
	for _, j := range r.Joints() {
		fmt.Fprintf(w, "  %-16s %-10s %s -> %s", j.Name, j.Type, j.Parent.Name, j.Child.Name)
		if j.Movable() {
			fmt.Fprintf(w, "  axis %s  value %.4f", vec(j.Axis), j.Value())
			if j.HasLimits && j.Type != kinematics.JointContinuous {
				fmt.Fprintf(w, "  limits [%.4f, %.4f]", j.Lower, j.Upper)
			}
		}
		fmt.Fprintln(w)
	}
	if ee, ok := p.EndEffector(); ok {
		fmt.Fprintf(w, "end effector %s\n", p.EndEffectorLink().Name)
		fmt.Fprintf(w, "  position %s\n", vec(ee.Position))
		fmt.Fprintf(w, "  rotation %s\n", vec(ee.Rotation))
	}
}

func vec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("joints", "", "Joint values as name=value,name=value")
	inspectCmd.Flags().Bool("deg", false, "Joint values are in degrees")
	inspectCmd.Flags().String("end-effector", "", "Link used as end effector")
}
