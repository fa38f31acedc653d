package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/nextanim/internal/assets"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage a SQLite catalog of animation sets",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [catalog.db] [file...]",
	Short: "Validate animation files and store them in the catalog",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := assets.OpenCatalog(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		src := assets.NewFSSource(osfs.New(cfg.AssetRoot))
		for _, path := range args[1:] {
			data, err := src.ReadAsset(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if err := c.Put(path, data); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", path)
		}
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list [catalog.db]",
	Short: "List the animation sets stored in the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := assets.OpenCatalog(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		entries, err := c.List()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "PATH\tSIZE\tMODIFIED")
		for _, e := range entries {
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Path, e.Size, e.ModTime.UTC().Format("2006-01-02T15:04:05Z"))
		}
		return tw.Flush()
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
