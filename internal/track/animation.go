package track

import (
	"sort"

	"github.com/agentic-research/nextanim/internal/value"
)

// AnimationName names one clip.
type AnimationName string

// ComponentTrack holds every track for one target type within a clip.
// It is either Single (whole-value) or Multiple (field path -> track); the
// variant is fixed when it is created.
type ComponentTrack struct {
	single *Track
	fields map[string]*Track
}

// NewSingle builds a whole-value component track.
func NewSingle(t *Track) *ComponentTrack {
	return &ComponentTrack{single: t}
}

// NewMultiple builds an empty field-level component track.
func NewMultiple() *ComponentTrack {
	return &ComponentTrack{fields: make(map[string]*Track)}
}

// NewComponentTrackFor picks the variant from the registry: Single when tag
// has a whole-value resolver, Multiple otherwise.
func NewComponentTrackFor(reg *value.Registry, tag value.TypeTag) *ComponentTrack {
	if reg.IsWholeValue(tag) {
		return &ComponentTrack{}
	}
	return NewMultiple()
}

func (c *ComponentTrack) IsSingle() bool { return c.fields == nil }

// AddTrack replaces the single track, or inserts t under its field path.
func (c *ComponentTrack) AddTrack(t *Track) {
	if c.IsSingle() {
		c.single = t
		return
	}
	c.fields[t.Path()] = t
}

// Single returns the whole-value track, if this is a Single track.
func (c *ComponentTrack) Single() (*Track, bool) {
	if !c.IsSingle() || c.single == nil {
		return nil, false
	}
	return c.single, true
}

// Field returns the track bound to path.
func (c *ComponentTrack) Field(path string) (*Track, bool) {
	t, ok := c.fields[path]
	return t, ok
}

// Paths lists the field paths of a Multiple track in sorted order.
func (c *ComponentTrack) Paths() []string {
	paths := make([]string, 0, len(c.fields))
	for p := range c.fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Tracks returns every track, fields in path order.
func (c *ComponentTrack) Tracks() []*Track {
	if c.IsSingle() {
		if c.single == nil {
			return nil
		}
		return []*Track{c.single}
	}
	out := make([]*Track, 0, len(c.fields))
	for _, p := range c.Paths() {
		out = append(out, c.fields[p])
	}
	return out
}

// Fetch samples every track at t, dropping tracks with nothing to say.
func (c *ComponentTrack) Fetch(t float32) []value.BoundValue {
	var out []value.BoundValue
	for _, tr := range c.Tracks() {
		if bv, ok := tr.Fetch(t); ok {
			out = append(out, bv)
		}
	}
	return out
}

// BoundComponentValue is the sampled bundle for one target type.
type BoundComponentValue struct {
	Single bool
	Values []value.BoundValue
}

// EntityAnimation is one clip: a component track per animated type.
type EntityAnimation struct {
	Tracks map[value.TypeTag]*ComponentTrack
}

func NewEntityAnimation() *EntityAnimation {
	return &EntityAnimation{Tracks: make(map[value.TypeTag]*ComponentTrack)}
}

func (a *EntityAnimation) Insert(tag value.TypeTag, ct *ComponentTrack) {
	a.Tracks[tag] = ct
}

// Types lists the animated types in sorted order.
func (a *EntityAnimation) Types() []value.TypeTag {
	tags := make([]value.TypeTag, 0, len(a.Tracks))
	for t := range a.Tracks {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Sample fetches every component track at t. Types whose bundle is empty
// are omitted.
func (a *EntityAnimation) Sample(t float32) map[value.TypeTag]BoundComponentValue {
	out := make(map[value.TypeTag]BoundComponentValue, len(a.Tracks))
	for tag, ct := range a.Tracks {
		values := ct.Fetch(t)
		if len(values) == 0 {
			continue
		}
		out[tag] = BoundComponentValue{Single: ct.IsSingle(), Values: values}
	}
	return out
}

// EntityAnimations is a named set of clips, loaded as one asset.
type EntityAnimations map[AnimationName]*EntityAnimation

func (s EntityAnimations) Get(name AnimationName) (*EntityAnimation, bool) {
	a, ok := s[name]
	return a, ok
}

// Names lists the clip names in sorted order.
func (s EntityAnimations) Names() []AnimationName {
	names := make([]AnimationName, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
