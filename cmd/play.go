package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/agentic-research/nextanim/internal/assets"
	"github.com/agentic-research/nextanim/internal/pipeline"
	"github.com/agentic-research/nextanim/internal/player"
	"github.com/agentic-research/nextanim/internal/track"
	"github.com/agentic-research/nextanim/internal/value"
	"github.com/agentic-research/nextanim/internal/world"
)

var (
	playClip  string
	playTicks int
	playDT    float32
)

var playCmd = &cobra.Command{
	Use:   "play [file]",
	Short: "Play a clip headlessly and print the final component state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg)

		src, closeSrc, err := openSource(cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		server := assets.NewServer(assets.NewLoader(src), assets.WithLogger(logger))
		for _, p := range cfg.Preload {
			server.Load(p)
		}
		h := server.Load(args[0])

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := server.Wait(ctx, h); err != nil {
			return err
		}
		anims, _ := server.Get(h)
		clip, ok := anims.Get(track.AnimationName(playClip))
		if !ok {
			return fmt.Errorf("clip %q not in %s (have %v)", playClip, args[0], anims.Names())
		}

		reg := value.NewRegistry()
		value.RegisterBuiltins(reg)
		store := world.NewDonburiStore(nil)
		if err := player.Bind(store); err != nil {
			return err
		}
		if err := bindClipTypes(store, reg, server, clip); err != nil {
			return err
		}

		owner := store.Spawn("player")
		if err := store.Insert(owner, player.PlayerTag, player.New()); err != nil {
			return err
		}
		target := store.Spawn("target")
		if err := player.ForEntity(owner).AddHandle("target", h).Attach(store, target, "target"); err != nil {
			return err
		}
		obj, _ := store.Get(owner, player.PlayerTag)
		obj.(*player.Player).Play(track.AnimationName(playClip))

		dt := playDT
		if dt <= 0 {
			dt = cfg.TickDelta()
		}
		pipe := pipeline.New(reg, server, store, pipeline.WithLogger(logger))
		diagnostics := 0
		for i := 0; i < playTicks; i++ {
			diagnostics += len(pipe.Tick(dt).Diagnostics)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "played %q for %d ticks (t=%g, %d diagnostics)\n",
			playClip, playTicks, obj.(*player.Player).Time(), diagnostics)
		return writeState(out, store, target, clip.Types())
	},
}

func init() {
	playCmd.Flags().StringVar(&playClip, "clip", "", "Clip to play")
	playCmd.Flags().IntVar(&playTicks, "ticks", 1, "Number of ticks to run")
	playCmd.Flags().Float32Var(&playDT, "dt", 0, "Seconds per tick (default: 1/tick_rate)")
	_ = playCmd.MarkFlagRequired("clip")
	rootCmd.AddCommand(playCmd)
}

// bindClipTypes makes every type the clip animates reachable without host
// code: builtin scalars become whole-value components, other whole-value
// types hold the raw datum, field-level types become Dynamic components.
// Unknown field value types are read as float32 and referenced assets
// resolve to their own paths.
func bindClipTypes(store *world.DonburiStore, reg *value.Registry, server *assets.Server, clip *track.EntityAnimation) error {
	for _, tag := range clip.Types() {
		var err error
		switch tag {
		case value.TagOf[bool]():
			err = world.BindWhole(store, reg, tag, value.Bool)
		case value.TagOf[uint]():
			err = world.BindWhole(store, reg, tag, value.Uint)
		case value.TagOf[int]():
			err = world.BindWhole(store, reg, tag, value.Int)
		case value.TagOf[float32]():
			err = world.BindWhole(store, reg, tag, value.Float32)
		default:
			if clip.Tracks[tag].IsSingle() {
				err = world.BindWhole(store, reg, tag, rawValue)
			} else {
				err = world.BindDynamic(store, reg, tag)
			}
		}
		if err != nil {
			return err
		}

		for _, tr := range clip.Tracks[tag].Tracks() {
			vt := tr.Binding.TargetType
			for _, k := range tr.Frames.Keyframes() {
				if ap, ok := k.Value.AssetPath(); ok {
					if !reg.IsWholeValue(vt) {
						value.RegisterAsset(reg, vt)
					}
					server.Provide(ap.Type, ap.Path, ap.Path)
				}
			}
			if !reg.IsWholeValue(vt) {
				value.RegisterValue(reg, vt, value.Float32)
			}
		}
	}
	return nil
}

func rawValue(v value.TrackValue, _ value.AssetContext) (any, error) {
	if ap, ok := v.AssetPath(); ok {
		return ap.Path, nil
	}
	f, _ := v.Float()
	return f, nil
}

func writeState(w io.Writer, store *world.DonburiStore, e world.Entity, tags []value.TypeTag) error {
	for _, tag := range tags {
		obj, ok := store.Get(e, tag)
		if !ok {
			_, _ = fmt.Fprintf(w, "%s: <absent>\n", tag)
			continue
		}
		switch v := obj.(type) {
		case *world.Dynamic:
			data, err := json.Marshal(map[string]any(*v))
			if err != nil {
				return fmt.Errorf("encode %s: %w", tag, err)
			}
			_, _ = fmt.Fprintf(w, "%s: %s\n", tag, data)
		case *bool:
			_, _ = fmt.Fprintf(w, "%s: %v\n", tag, *v)
		case *uint:
			_, _ = fmt.Fprintf(w, "%s: %v\n", tag, *v)
		case *int:
			_, _ = fmt.Fprintf(w, "%s: %v\n", tag, *v)
		case *float32:
			_, _ = fmt.Fprintf(w, "%s: %v\n", tag, *v)
		case *any:
			_, _ = fmt.Fprintf(w, "%s: %v\n", tag, *v)
		default:
			_, _ = fmt.Fprintf(w, "%s: %v\n", tag, obj)
		}
	}
	return nil
}
