package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/nextanim/internal/assets"
	"github.com/agentic-research/nextanim/internal/config"
	"github.com/agentic-research/nextanim/internal/track"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to HCL config file")
}

var rootCmd = &cobra.Command{
	Use:          "nextanim",
	Short:        "nextanim: keyframe animation sets for entity components",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func newLogger(cmd *cobra.Command, cfg config.Config) *log.Logger {
	return log.New(cmd.ErrOrStderr(), cfg.LogPrefix, 0)
}

// openSource returns the catalog when one is configured, the asset root
// otherwise. Paths given on the command line are relative to it.
func openSource(cfg config.Config) (assets.Source, func(), error) {
	if cfg.Catalog != "" {
		c, err := assets.OpenCatalog(cfg.Catalog)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	}
	return assets.NewFSSource(osfs.New(cfg.AssetRoot)), func() {}, nil
}

func loadAnimations(cfg config.Config, path string) (track.EntityAnimations, error) {
	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSrc()
	return assets.NewLoader(src).Load(path)
}

func loadClip(cfg config.Config, path, clip string) (*track.EntityAnimation, error) {
	anims, err := loadAnimations(cfg, path)
	if err != nil {
		return nil, err
	}
	a, ok := anims.Get(track.AnimationName(clip))
	if !ok {
		return nil, fmt.Errorf("clip %q not in %s (have %v)", clip, path, anims.Names())
	}
	return a, nil
}
