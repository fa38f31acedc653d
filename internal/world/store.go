// Package world is the object store animations are applied to: entities
// carrying components addressed by type tag.
package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/agentic-research/nextanim/internal/value"
)

var (
	ErrUnbound      = errors.New("component type not bound")
	ErrNoEntity     = errors.New("entity does not exist")
	ErrPayloadType  = errors.New("component payload has the wrong type")
	ErrAlreadyBound = errors.New("component type already bound")
)

// Entity identifies one object in the store.
type Entity = donburi.Entity

// Store gives the pose pipeline access to live objects. Get returns a
// mutable handle (a pointer to the component); writes through it are visible
// to every later reader.
type Store interface {
	Get(e Entity, tag value.TypeTag) (any, bool)
	Insert(e Entity, tag value.TypeTag, v any) error
	Has(e Entity, tag value.TypeTag) bool
	Each(tag value.TypeTag, fn func(Entity))
}

// Name labels an entity. Every entity spawned through DonburiStore has one.
type Name string

var NameComponent = donburi.NewComponentType[Name]()

type accessor struct {
	get    func(*donburi.Entry) any
	has    func(*donburi.Entry) bool
	insert func(*donburi.Entry, any) error
	each   func(donburi.World, func(*donburi.Entry))
}

// DonburiStore implements Store on top of a donburi world. Component types
// must be bound to a tag before they can be reached.
type DonburiStore struct {
	mu    sync.RWMutex
	world donburi.World
	bound map[value.TypeTag]accessor
}

func NewDonburiStore(w donburi.World) *DonburiStore {
	if w == nil {
		w = donburi.NewWorld()
	}
	s := &DonburiStore{world: w, bound: make(map[value.TypeTag]accessor)}
	_ = Bind(s, value.TagOf[Name](), NameComponent)
	return s
}

// World exposes the underlying donburi world.
func (s *DonburiStore) World() donburi.World { return s.world }

// Bind makes the donburi component type ct reachable under tag.
func Bind[T any](s *DonburiStore, tag value.TypeTag, ct *donburi.ComponentType[T]) error {
	query := donburi.NewQuery(filter.Contains(ct))
	acc := accessor{
		get: func(en *donburi.Entry) any { return ct.Get(en) },
		has: func(en *donburi.Entry) bool { return en.HasComponent(ct) },
		insert: func(en *donburi.Entry, v any) error {
			var payload T
			switch x := v.(type) {
			case *T:
				payload = *x
			case T:
				payload = x
			default:
				return fmt.Errorf("insert %s: got %T: %w", tag, v, ErrPayloadType)
			}
			if en.HasComponent(ct) {
				ct.SetValue(en, payload)
				return nil
			}
			donburi.Add(en, ct, &payload)
			return nil
		},
		each: func(w donburi.World, fn func(*donburi.Entry)) { query.Each(w, fn) },
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bound[tag]; ok {
		return fmt.Errorf("bind %s: %w", tag, ErrAlreadyBound)
	}
	s.bound[tag] = acc
	return nil
}

func (s *DonburiStore) accessor(tag value.TypeTag) (accessor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.bound[tag]
	return acc, ok
}

func (s *DonburiStore) entry(e Entity) (*donburi.Entry, bool) {
	if !s.world.Valid(e) {
		return nil, false
	}
	return s.world.Entry(e), true
}

// Spawn creates a named entity with no other components.
func (s *DonburiStore) Spawn(name string) Entity {
	e := s.world.Create(NameComponent)
	NameComponent.SetValue(s.world.Entry(e), Name(name))
	return e
}

// NameOf returns the label given at Spawn.
func (s *DonburiStore) NameOf(e Entity) string {
	en, ok := s.entry(e)
	if !ok || !en.HasComponent(NameComponent) {
		return ""
	}
	return string(*NameComponent.Get(en))
}

// Get implements Store.
func (s *DonburiStore) Get(e Entity, tag value.TypeTag) (any, bool) {
	acc, ok := s.accessor(tag)
	if !ok {
		return nil, false
	}
	en, ok := s.entry(e)
	if !ok || !acc.has(en) {
		return nil, false
	}
	return acc.get(en), true
}

// Insert implements Store. v may be a T or a *T; an existing component is
// overwritten.
func (s *DonburiStore) Insert(e Entity, tag value.TypeTag, v any) error {
	acc, ok := s.accessor(tag)
	if !ok {
		return fmt.Errorf("insert %s: %w", tag, ErrUnbound)
	}
	en, ok := s.entry(e)
	if !ok {
		return fmt.Errorf("insert %s: %w", tag, ErrNoEntity)
	}
	return acc.insert(en, v)
}

// Has implements Store.
func (s *DonburiStore) Has(e Entity, tag value.TypeTag) bool {
	acc, ok := s.accessor(tag)
	if !ok {
		return false
	}
	en, ok := s.entry(e)
	return ok && acc.has(en)
}

// Each implements Store. Entities are visited in ascending id order; fn may
// insert components since iteration runs over a snapshot.
func (s *DonburiStore) Each(tag value.TypeTag, fn func(Entity)) {
	acc, ok := s.accessor(tag)
	if !ok {
		return
	}
	var ents []Entity
	acc.each(s.world, func(en *donburi.Entry) {
		ents = append(ents, en.Entity())
	})
	sort.Slice(ents, func(i, j int) bool { return ents[i] < ents[j] })
	for _, e := range ents {
		fn(e)
	}
}

// Tags lists the bound tags in sorted order.
func (s *DonburiStore) Tags() []value.TypeTag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]value.TypeTag, 0, len(s.bound))
	for t := range s.bound {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
