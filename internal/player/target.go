package player

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yohamta/donburi"

	"github.com/agentic-research/nextanim/internal/assets"
	"github.com/agentic-research/nextanim/internal/value"
	"github.com/agentic-research/nextanim/internal/world"
)

var ErrUnknownClass = errors.New("no animations for entity class")

// Target marks an entity as animated: which player drives it and which
// animation set it samples from.
type Target struct {
	Player     world.Entity
	Animations assets.Handle
}

var (
	PlayerTag = value.TagOf[Player]()
	TargetTag = value.TagOf[Target]()

	PlayerComponent = donburi.NewComponentType[Player]()
	TargetComponent = donburi.NewComponentType[Target]()
)

// Bind registers the player and target components with s.
func Bind(s *world.DonburiStore) error {
	if err := world.Bind(s, PlayerTag, PlayerComponent); err != nil {
		return err
	}
	return world.Bind(s, TargetTag, TargetComponent)
}

// Builder collects, for one player entity, the animation set to use for
// each class of entity it drives.
type Builder struct {
	player  world.Entity
	handles map[string]assets.Handle
}

func ForEntity(player world.Entity) *Builder {
	return &Builder{player: player, handles: make(map[string]assets.Handle)}
}

// AddHandle maps class to h, replacing any earlier mapping.
func (b *Builder) AddHandle(class string, h assets.Handle) *Builder {
	b.handles[class] = h
	return b
}

// Target builds the target component for an entity of class.
func (b *Builder) Target(class string) (Target, bool) {
	h, ok := b.handles[class]
	if !ok {
		return Target{}, false
	}
	return Target{Player: b.player, Animations: h}, true
}

// Attach inserts the target component for class on e.
func (b *Builder) Attach(s world.Store, e world.Entity, class string) error {
	t, ok := b.Target(class)
	if !ok {
		return fmt.Errorf("attach %q: %w", class, ErrUnknownClass)
	}
	return s.Insert(e, TargetTag, t)
}

// Classes lists the mapped classes in sorted order.
func (b *Builder) Classes() []string {
	out := make([]string, 0, len(b.handles))
	for c := range b.handles {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
