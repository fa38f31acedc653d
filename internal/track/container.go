// Package track stores keyframes in fixed frame slots, samples them in time,
// and groups tracks into per-type, per-clip and per-asset aggregates.
package track

import (
	"math"

	"github.com/agentic-research/nextanim/internal/value"
	"github.com/google/uuid"
)

// Keyframe is one authored sample placed in a frame slot.
type Keyframe struct {
	ID    uuid.UUID
	Slot  int
	Value value.TrackValue
}

// NewKeyframe creates a keyframe with a fresh random id.
func NewKeyframe(slot int, v value.TrackValue) Keyframe {
	return Keyframe{ID: uuid.New(), Slot: slot, Value: v}
}

// Container is fixed-capacity keyframe storage with a step sampler.
// slots[i] holds the id of the keyframe occupying slot i, or uuid.Nil.
type Container struct {
	frameDuration float32
	slots         []uuid.UUID
	keyframes     map[uuid.UUID]Keyframe
}

// NewContainer allocates frameCount empty slots of frameDuration seconds.
func NewContainer(frameDuration float32, frameCount int) *Container {
	if frameCount < 0 {
		frameCount = 0
	}
	return &Container{
		frameDuration: frameDuration,
		slots:         make([]uuid.UUID, frameCount),
		keyframes:     make(map[uuid.UUID]Keyframe),
	}
}

func (c *Container) FrameDuration() float32 { return c.frameDuration }
func (c *Container) FrameCount() int        { return len(c.slots) }

// Period is the loop length in seconds.
func (c *Container) Period() float32 {
	return c.frameDuration * float32(len(c.slots))
}

// AddKeyframe places k in its slot, replacing any previous occupant.
// Slots outside the container are ignored.
func (c *Container) AddKeyframe(k Keyframe) {
	if k.Slot < 0 || k.Slot >= len(c.slots) {
		return
	}
	if prev := c.slots[k.Slot]; prev != uuid.Nil {
		delete(c.keyframes, prev)
	}
	c.slots[k.Slot] = k.ID
	c.keyframes[k.ID] = k
}

// At returns the keyframe occupying slot.
func (c *Container) At(slot int) (Keyframe, bool) {
	if slot < 0 || slot >= len(c.slots) {
		return Keyframe{}, false
	}
	id := c.slots[slot]
	if id == uuid.Nil {
		return Keyframe{}, false
	}
	k, ok := c.keyframes[id]
	return k, ok
}

// Keyframes returns the stored keyframes in slot order.
func (c *Container) Keyframes() []Keyframe {
	out := make([]Keyframe, 0, len(c.keyframes))
	for slot := range c.slots {
		if k, ok := c.At(slot); ok {
			out = append(out, k)
		}
	}
	return out
}

// SlotAt maps a time to its frame slot. Time always loops over the period;
// negative times wrap backwards from the end.
func (c *Container) SlotAt(t float32) (int, bool) {
	n := len(c.slots)
	if n == 0 || !(c.frameDuration > 0) {
		return 0, false
	}
	d := float64(c.frameDuration)
	period := d * float64(n)
	wrapped := math.Mod(float64(t), period)
	if math.IsNaN(wrapped) {
		return 0, false
	}
	if wrapped < 0 {
		wrapped += period
	}
	slot := int(math.Floor(wrapped / d))
	if slot >= n {
		slot = n - 1
	}
	return slot, true
}

// Fetch samples the container at t with step interpolation: the value of
// the keyframe in t's slot, or none when that slot is empty.
func (c *Container) Fetch(t float32) (value.TrackValue, bool) {
	slot, ok := c.SlotAt(t)
	if !ok {
		return value.TrackValue{}, false
	}
	k, ok := c.At(slot)
	if !ok {
		return value.TrackValue{}, false
	}
	return k.Value, true
}

// Track is one animated field or whole value over time.
type Track struct {
	Enabled bool
	Binding value.ValueBinding
	Frames  *Container
}

// NewTrack returns an enabled track with frameCount empty slots.
func NewTrack(binding value.ValueBinding, frameDuration float32, frameCount int) *Track {
	return &Track{
		Enabled: true,
		Binding: binding,
		Frames:  NewContainer(frameDuration, frameCount),
	}
}

func (t *Track) AddKeyframe(k Keyframe) {
	t.Frames.AddKeyframe(k)
}

// Path is the bound field path; empty for whole-value tracks.
func (t *Track) Path() string { return t.Binding.Path }

// Fetch samples the track. Disabled tracks never yield a value.
func (t *Track) Fetch(at float32) (value.BoundValue, bool) {
	if !t.Enabled {
		return value.BoundValue{}, false
	}
	v, ok := t.Frames.Fetch(at)
	if !ok {
		return value.BoundValue{}, false
	}
	return value.BoundValue{Binding: t.Binding, Value: v}, true
}
