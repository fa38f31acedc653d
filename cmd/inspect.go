package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentic-research/nextanim/internal/track"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "List the clips, animated types and tracks of an animation set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		anims, err := loadAnimations(cfg, args[0])
		if err != nil {
			return err
		}
		writeInspect(cmd.OutOrStdout(), anims)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func writeInspect(w io.Writer, anims track.EntityAnimations) {
	for _, name := range anims.Names() {
		clip := anims[name]
		_, _ = fmt.Fprintf(w, "clip %s\n", name)
		for _, tag := range clip.Types() {
			ct := clip.Tracks[tag]
			shape := "multiple"
			if ct.IsSingle() {
				shape = "single"
			}
			_, _ = fmt.Fprintf(w, "  %s (%s)\n", tag, shape)
			for _, tr := range ct.Tracks() {
				path := tr.Path()
				if path == "" {
					path = "<whole>"
				}
				state := "enabled"
				if !tr.Enabled {
					state = "disabled"
				}
				_, _ = fmt.Fprintf(w, "    %s -> %s frames=%d keyframes=%d frame_duration=%g %s\n",
					path, tr.Binding.TargetType, tr.Frames.FrameCount(), len(tr.Frames.Keyframes()),
					tr.Frames.FrameDuration(), state)
			}
		}
	}
}
