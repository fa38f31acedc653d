package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/nextanim/internal/world"
)

func TestPlayer_StartsReset(t *testing.T) {
	var p Player
	assert.Equal(t, StateReset, p.State())
	assert.False(t, p.IsPlaying())
	assert.Equal(t, float32(0), p.Advance(1))
	assert.Empty(t, p.Current())

	n := New()
	assert.Equal(t, StateReset, n.State())
}

func TestPlayer_PlayResetsTime(t *testing.T) {
	p := New()
	p.Play("walk")
	require.True(t, p.IsPlaying())
	p.Advance(0.5)
	assert.Equal(t, float32(0.5), p.Time())

	t.Run("replaying the same clip restarts it", func(t *testing.T) {
		p.Play("walk")
		assert.Equal(t, float32(0), p.Time())
		assert.True(t, p.IsPlaying())
	})

	t.Run("switching clips restarts time", func(t *testing.T) {
		p.Advance(0.25)
		p.Play("run")
		assert.Equal(t, float32(0), p.Time())
		assert.Equal(t, "run", string(p.Current()))
	})
}

func TestPlayer_Stop(t *testing.T) {
	p := New()

	t.Run("no-op before play", func(t *testing.T) {
		p.Stop()
		assert.Equal(t, StateReset, p.State())
	})

	p.Play("walk")
	p.Advance(0.3)
	p.Stop()
	assert.Equal(t, StateStop, p.State())
	assert.Equal(t, float32(0.3), p.Advance(10), "stopped players keep their time")

	t.Run("no-op when already stopped", func(t *testing.T) {
		p.Stop()
		assert.Equal(t, StateStop, p.State())
	})

	t.Run("play from stop restarts", func(t *testing.T) {
		p.Play("walk")
		assert.True(t, p.IsPlaying())
		assert.Equal(t, float32(0), p.Time())
	})
}

func TestBuilder(t *testing.T) {
	s := world.NewDonburiStore(nil)
	require.NoError(t, Bind(s))

	owner := s.Spawn("owner")
	body := s.Spawn("body")

	b := ForEntity(owner).AddHandle("body", 4).AddHandle("hat", 7)
	assert.Equal(t, []string{"body", "hat"}, b.Classes())

	tg, ok := b.Target("hat")
	require.True(t, ok)
	assert.Equal(t, Target{Player: owner, Animations: 7}, tg)

	_, ok = b.Target("cape")
	assert.False(t, ok)

	require.NoError(t, b.Attach(s, body, "body"))
	got, ok := s.Get(body, TargetTag)
	require.True(t, ok)
	assert.Equal(t, Target{Player: owner, Animations: 4}, *got.(*Target))

	assert.ErrorIs(t, b.Attach(s, body, "cape"), ErrUnknownClass)
}

func TestPlayerComponent_LiveState(t *testing.T) {
	s := world.NewDonburiStore(nil)
	require.NoError(t, Bind(s))
	e := s.Spawn("owner")
	require.NoError(t, s.Insert(e, PlayerTag, New()))

	got, ok := s.Get(e, PlayerTag)
	require.True(t, ok)
	got.(*Player).Play("idle")
	got.(*Player).Advance(0.2)

	again, _ := s.Get(e, PlayerTag)
	assert.True(t, again.(*Player).IsPlaying())
	assert.Equal(t, float32(0.2), again.(*Player).Time())
}
