package track

import (
	"testing"

	"github.com/agentic-research/nextanim/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spriteClip() *EntityAnimation {
	index := NewTrack(value.Field("index", value.TagOf[uint]()), 0.1, 3)
	index.AddKeyframe(NewKeyframe(0, value.Number(0)))
	index.AddKeyframe(NewKeyframe(1, value.Number(1)))

	flipped := NewTrack(value.Field("flipped", value.TagOf[bool]()), 0.1, 3)
	flipped.AddKeyframe(NewKeyframe(2, value.Number(1)))

	sprite := NewMultiple()
	sprite.AddTrack(index)
	sprite.AddTrack(flipped)

	visible := NewTrack(value.Whole("bool"), 0.1, 3)
	visible.AddKeyframe(NewKeyframe(0, value.Number(1)))

	anim := NewEntityAnimation()
	anim.Insert("Sprite", sprite)
	anim.Insert("bool", NewSingle(visible))
	return anim
}

func TestNewComponentTrackFor(t *testing.T) {
	reg := value.NewRegistry()
	value.RegisterBuiltins(reg)

	assert.True(t, NewComponentTrackFor(reg, "bool").IsSingle())
	assert.False(t, NewComponentTrackFor(reg, "Sprite").IsSingle())
}

func TestComponentTrack_AddTrack(t *testing.T) {
	single := NewSingle(NewTrack(value.Whole("bool"), 0.1, 1))
	replacement := NewTrack(value.Whole("bool"), 0.2, 1)
	single.AddTrack(replacement)
	got, ok := single.Single()
	require.True(t, ok)
	assert.Same(t, replacement, got)

	multi := NewMultiple()
	multi.AddTrack(NewTrack(value.Field("b", "bool"), 0.1, 1))
	multi.AddTrack(NewTrack(value.Field("a", "bool"), 0.1, 1))
	assert.Equal(t, []string{"a", "b"}, multi.Paths())
	_, ok = multi.Single()
	assert.False(t, ok)
	_, ok = multi.Field("a")
	assert.True(t, ok)
}

func TestEntityAnimation_Sample(t *testing.T) {
	anim := spriteClip()

	t.Run("slot 0 has both types", func(t *testing.T) {
		got := anim.Sample(0.05)
		require.Len(t, got, 2)

		sprite := got["Sprite"]
		assert.False(t, sprite.Single)
		require.Len(t, sprite.Values, 1)
		assert.Equal(t, "index", sprite.Values[0].Binding.Path)
		assert.Equal(t, value.Number(0), sprite.Values[0].Value)

		vis := got["bool"]
		assert.True(t, vis.Single)
		require.Len(t, vis.Values, 1)
	})

	t.Run("empty bundles are omitted", func(t *testing.T) {
		got := anim.Sample(0.15)
		require.Len(t, got, 1)
		_, ok := got["bool"]
		assert.False(t, ok)
	})

	t.Run("fields aggregate in path order", func(t *testing.T) {
		anim := spriteClip()
		ct := anim.Tracks["Sprite"]
		tr, _ := ct.Field("index")
		tr.AddKeyframe(NewKeyframe(2, value.Number(2)))

		got := anim.Sample(0.25)["Sprite"]
		require.Len(t, got.Values, 2)
		assert.Equal(t, "flipped", got.Values[0].Binding.Path)
		assert.Equal(t, "index", got.Values[1].Binding.Path)
	})
}

func TestEntityAnimations_Names(t *testing.T) {
	set := EntityAnimations{"walk": NewEntityAnimation(), "idle": NewEntityAnimation()}
	assert.Equal(t, []AnimationName{"idle", "walk"}, set.Names())
	_, ok := set.Get("run")
	assert.False(t, ok)
}
