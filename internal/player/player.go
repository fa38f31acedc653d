// Package player holds playback state: which clip an animation player is
// running and how far into it it is.
package player

import (
	"context"
	"errors"
	"log"

	"github.com/looplab/fsm"

	"github.com/agentic-research/nextanim/internal/track"
)

const (
	StateReset   = "reset"
	StatePlaying = "playing"
	StateStop    = "stop"

	eventPlay = "play"
	eventStop = "stop"
)

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateReset,
		fsm.Events{
			{Name: eventPlay, Src: []string{StateReset, StatePlaying, StateStop}, Dst: StatePlaying},
			{Name: eventStop, Src: []string{StatePlaying}, Dst: StateStop},
		},
		fsm.Callbacks{},
	)
}

// Player drives one or more animation targets. The zero Player is in the
// reset state.
type Player struct {
	machine *fsm.FSM
	current track.AnimationName
	time    float32
}

func New() Player {
	return Player{machine: newMachine()}
}

func (p *Player) sm() *fsm.FSM {
	if p.machine == nil {
		p.machine = newMachine()
	}
	return p.machine
}

func (p *Player) fire(event string) {
	err := p.sm().Event(context.Background(), event)
	if err == nil {
		return
	}
	var same fsm.NoTransitionError
	if errors.As(err, &same) {
		return
	}
	log.Printf("Player: %s from %s: %v", event, p.State(), err)
}

// Play starts name from the beginning. Calling it while already playing
// name restarts the clip.
func (p *Player) Play(name track.AnimationName) {
	p.time = 0
	p.current = name
	p.fire(eventPlay)
}

// Stop freezes a playing player at its current time. It does nothing in the
// reset or stop states.
func (p *Player) Stop() {
	if !p.sm().Can(eventStop) {
		return
	}
	p.fire(eventStop)
}

// Advance moves time forward by dt while playing and returns the new time.
func (p *Player) Advance(dt float32) float32 {
	if p.IsPlaying() {
		p.time += dt
	}
	return p.time
}

func (p *Player) IsPlaying() bool { return p.sm().Is(StatePlaying) }

func (p *Player) State() string { return p.sm().Current() }

func (p *Player) Time() float32 { return p.time }

// Current is the clip selected by the last Play. It is empty before the
// first Play.
func (p *Player) Current() track.AnimationName { return p.current }
