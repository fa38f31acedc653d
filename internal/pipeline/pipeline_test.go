package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/nextanim/internal/assets"
	"github.com/agentic-research/nextanim/internal/player"
	"github.com/agentic-research/nextanim/internal/track"
	"github.com/agentic-research/nextanim/internal/value"
	"github.com/agentic-research/nextanim/internal/world"
)

type fixture struct {
	reg    *value.Registry
	store  *world.DonburiStore
	server *assets.Server
	pipe   *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	f := &fixture{
		reg:    value.NewRegistry(),
		store:  world.NewDonburiStore(nil),
		server: assets.NewServer(nil, assets.WithLogger(quiet)),
	}
	value.RegisterBuiltins(f.reg)
	require.NoError(t, player.Bind(f.store))
	require.NoError(t, world.BindWhole(f.store, f.reg, "bool", value.Bool))
	require.NoError(t, world.BindDynamic(f.store, f.reg, "Sprite"))
	f.pipe = New(f.reg, f.server, f.store, WithLogger(quiet))
	return f
}

// blinkClip toggles a bool every 0.1s: slot 0 is off, slot 1 is on.
func blinkClip() *track.EntityAnimation {
	tr := track.NewTrack(value.Whole("bool"), 0.1, 2)
	tr.AddKeyframe(track.NewKeyframe(0, value.Number(0)))
	tr.AddKeyframe(track.NewKeyframe(1, value.Number(1)))
	clip := track.NewEntityAnimation()
	clip.Insert("bool", track.NewSingle(tr))
	return clip
}

// spawn creates a player entity and one target driven by it.
func (f *fixture) spawn(t *testing.T, h assets.Handle) (owner, target world.Entity) {
	t.Helper()
	owner = f.store.Spawn("owner")
	require.NoError(t, f.store.Insert(owner, player.PlayerTag, player.New()))
	target = f.store.Spawn("target")
	require.NoError(t, player.ForEntity(owner).AddHandle("body", h).Attach(f.store, target, "body"))
	return owner, target
}

func (f *fixture) player(t *testing.T, e world.Entity) *player.Player {
	t.Helper()
	obj, ok := f.store.Get(e, player.PlayerTag)
	require.True(t, ok)
	return obj.(*player.Player)
}

func (f *fixture) boolOf(t *testing.T, e world.Entity) bool {
	t.Helper()
	obj, ok := f.store.Get(e, "bool")
	require.True(t, ok)
	return *obj.(*bool)
}

func TestPipeline_Blink(t *testing.T) {
	for _, initial := range []bool{false, true} {
		t.Run(fmt.Sprintf("starts %v", initial), func(t *testing.T) {
			f := newFixture(t)
			h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": blinkClip()})
			owner, target := f.spawn(t, h)
			require.NoError(t, f.store.Insert(target, "bool", initial))

			f.player(t, owner).Play("blink")

			r := f.pipe.Tick(0.05)
			require.NoError(t, r.Err())
			assert.False(t, f.boolOf(t, target), "t=0.05 samples slot 0")
			assert.True(t, r.WasPosed(target))

			r = f.pipe.Tick(0.1)
			require.NoError(t, r.Err())
			assert.True(t, f.boolOf(t, target), "t=0.15 samples slot 1")
			assert.Equal(t, []world.Entity{target}, r.Posed())
			assert.Empty(t, r.Skipped())
		})
	}
}

func TestPipeline_InsertsMissingObject(t *testing.T) {
	f := newFixture(t)
	h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": blinkClip()})
	owner, target := f.spawn(t, h)
	f.player(t, owner).Play("blink")

	f.pipe.Tick(0.15)
	assert.True(t, f.boolOf(t, target))
}

func TestPipeline_ResetPlayerDoesNothing(t *testing.T) {
	f := newFixture(t)
	h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": blinkClip()})
	_, target := f.spawn(t, h)

	r := f.pipe.Tick(0.15)
	assert.Empty(t, r.Diagnostics)
	assert.False(t, f.store.Has(target, "bool"))
	assert.Equal(t, []world.Entity{target}, r.Skipped())
}

func TestPipeline_StopFreezes(t *testing.T) {
	f := newFixture(t)
	h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": blinkClip()})
	owner, target := f.spawn(t, h)
	pl := f.player(t, owner)
	pl.Play("blink")

	f.pipe.Tick(0.15)
	require.True(t, f.boolOf(t, target))
	f.player(t, owner).Stop()

	f.pipe.Tick(0.1)
	f.pipe.Tick(0.1)
	assert.True(t, f.boolOf(t, target))
	assert.InDelta(t, 0.15, f.player(t, owner).Time(), 1e-6)
}

func TestPipeline_SharedPlayerAdvancesOnce(t *testing.T) {
	f := newFixture(t)
	h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": blinkClip()})
	owner, first := f.spawn(t, h)
	second := f.store.Spawn("second")
	require.NoError(t, player.ForEntity(owner).AddHandle("body", h).Attach(f.store, second, "body"))

	f.player(t, owner).Play("blink")
	r := f.pipe.Tick(0.15)

	assert.InDelta(t, 0.15, f.player(t, owner).Time(), 1e-6)
	assert.True(t, f.boolOf(t, first))
	assert.True(t, f.boolOf(t, second))
	assert.ElementsMatch(t, []world.Entity{first, second}, r.Posed())
}

func TestPipeline_Diagnostics(t *testing.T) {
	t.Run("clip not found", func(t *testing.T) {
		f := newFixture(t)
		h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": blinkClip()})
		owner, target := f.spawn(t, h)
		require.NoError(t, f.store.Insert(target, "bool", true))
		f.player(t, owner).Play("wave")

		r := f.pipe.Tick(0.05)
		require.Len(t, r.Diagnostics, 1)
		assert.ErrorIs(t, r.Diagnostics[0], ErrClipNotFound)
		assert.Equal(t, track.AnimationName("wave"), r.Diagnostics[0].Clip)
		assert.True(t, f.boolOf(t, target), "target unchanged")
		assert.Equal(t, []world.Entity{target}, r.Skipped())
	})

	t.Run("asset not loaded", func(t *testing.T) {
		f := newFixture(t)
		owner, _ := f.spawn(t, 99)
		f.player(t, owner).Play("blink")

		r := f.pipe.Tick(0.05)
		require.Len(t, r.Diagnostics, 1)
		assert.ErrorIs(t, r.Err(), ErrAssetNotLoaded)
	})

	t.Run("player missing", func(t *testing.T) {
		f := newFixture(t)
		target := f.store.Spawn("orphan")
		require.NoError(t, f.store.Insert(target, player.TargetTag, player.Target{Player: f.store.Spawn("ghost")}))

		r := f.pipe.Tick(0.05)
		require.Len(t, r.Diagnostics, 1)
		assert.ErrorIs(t, r.Diagnostics[0], ErrPlayerNotFound)
	})

	t.Run("unregistered type is skipped, others still posed", func(t *testing.T) {
		f := newFixture(t)
		clip := blinkClip()
		tr := track.NewTrack(value.Field("x", "float32"), 1, 1)
		tr.AddKeyframe(track.NewKeyframe(0, value.Number(2)))
		ct := track.NewMultiple()
		ct.AddTrack(tr)
		clip.Insert("Transform", ct)

		h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": clip})
		owner, target := f.spawn(t, h)
		f.player(t, owner).Play("blink")

		r := f.pipe.Tick(0.15)
		require.Len(t, r.Diagnostics, 1)
		assert.ErrorIs(t, r.Diagnostics[0], value.ErrUnregistered)
		assert.Equal(t, value.TypeTag("Transform"), r.Diagnostics[0].Type)
		assert.True(t, f.boolOf(t, target))
		assert.True(t, r.WasPosed(target))
	})

	t.Run("failed resolution drops only that value", func(t *testing.T) {
		f := newFixture(t)
		value.RegisterAsset(f.reg, "Image")
		index := track.NewTrack(value.Field("index", "uint"), 1, 1)
		index.AddKeyframe(track.NewKeyframe(0, value.Number(3)))
		image := track.NewTrack(value.Field("image", "Image"), 1, 1)
		image.AddKeyframe(track.NewKeyframe(0, value.Asset("Image", "run.png")))
		ct := track.NewMultiple()
		ct.AddTrack(index)
		ct.AddTrack(image)
		clip := track.NewEntityAnimation()
		clip.Insert("Sprite", ct)

		h := f.server.Insert("mem://sprite", track.EntityAnimations{"run": clip})
		owner, target := f.spawn(t, h)
		f.player(t, owner).Play("run")

		r := f.pipe.Tick(0.5)
		require.Len(t, r.Diagnostics, 1)
		assert.ErrorIs(t, r.Diagnostics[0], value.ErrAssetNotLoaded)

		obj, ok := f.store.Get(target, "Sprite")
		require.True(t, ok)
		sprite := obj.(*world.Dynamic)
		got, ok := sprite.Lookup("index")
		require.True(t, ok)
		assert.Equal(t, uint(3), got)
		_, ok = sprite.Lookup("image")
		assert.False(t, ok)

		t.Run("resolves once the asset is provided", func(t *testing.T) {
			f.server.Provide("Image", "run.png", "texture#1")
			r := f.pipe.Tick(0.1)
			require.NoError(t, r.Err())
			got, ok := sprite.Lookup("image")
			require.True(t, ok)
			assert.Equal(t, "texture#1", got)
		})
	})

	t.Run("shape mismatch", func(t *testing.T) {
		f := newFixture(t)
		tr := track.NewTrack(value.Whole("bool"), 1, 1)
		tr.AddKeyframe(track.NewKeyframe(0, value.Number(1)))
		clip := track.NewEntityAnimation()
		clip.Insert("Sprite", track.NewSingle(tr))

		h := f.server.Insert("mem://bad", track.EntityAnimations{"bad": clip})
		owner, _ := f.spawn(t, h)
		f.player(t, owner).Play("bad")

		r := f.pipe.Tick(0.1)
		require.Len(t, r.Diagnostics, 1)
		assert.True(t, errors.Is(r.Diagnostics[0], ErrShapeMismatch))
	})
}

func TestPipeline_SampleIsDetached(t *testing.T) {
	f := newFixture(t)
	h := f.server.Insert("mem://blink", track.EntityAnimations{"blink": blinkClip()})
	owner, target := f.spawn(t, h)
	f.player(t, owner).Play("blink")

	frame := f.pipe.Sample(0.15)
	require.Len(t, frame.Jobs, 1)
	assert.Equal(t, target, frame.Jobs[0].Entity)
	assert.Equal(t, true, frame.Jobs[0].Pose.Value)
	assert.False(t, f.store.Has(target, "bool"), "sampling never writes")

	r := f.pipe.Apply(frame)
	assert.True(t, r.WasPosed(target))
	assert.True(t, f.boolOf(t, target))
}
