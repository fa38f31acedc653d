package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentic-research/nextanim/internal/track"
)

var (
	sampleClip string
	sampleTime float32
)

var sampleCmd = &cobra.Command{
	Use:   "sample [file]",
	Short: "Print the values a clip produces at a given time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		clip, err := loadClip(cfg, args[0], sampleClip)
		if err != nil {
			return err
		}
		writeSample(cmd.OutOrStdout(), clip, sampleTime)
		return nil
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleClip, "clip", "", "Clip to sample")
	sampleCmd.Flags().Float32Var(&sampleTime, "time", 0, "Time in seconds")
	_ = sampleCmd.MarkFlagRequired("clip")
	rootCmd.AddCommand(sampleCmd)
}

func writeSample(w io.Writer, clip *track.EntityAnimation, at float32) {
	bundles := clip.Sample(at)
	for _, tag := range clip.Types() {
		b, ok := bundles[tag]
		if !ok {
			continue
		}
		for _, bv := range b.Values {
			path := bv.Binding.Path
			if path == "" {
				path = "<whole>"
			}
			_, _ = fmt.Fprintf(w, "%s %s = %s\n", tag, path, bv.Value)
		}
	}
}
