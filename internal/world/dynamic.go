package world

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/yohamta/donburi"

	"github.com/agentic-research/nextanim/internal/value"
)

// Dynamic is a schemaless component. Field paths are JSONPath expressions
// relative to the root ("index", "sprite.flip" or "$.frames[0]").
type Dynamic map[string]any

var exprCache sync.Map // string -> jp.Expr

func compile(path string) (jp.Expr, error) {
	if x, ok := exprCache.Load(path); ok {
		return x.(jp.Expr), nil
	}
	src := path
	if !strings.HasPrefix(src, "$") {
		src = "$." + src
	}
	x, err := jp.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse field path %q: %w", path, err)
	}
	exprCache.Store(path, x)
	return x, nil
}

// Set writes v at path, creating the map if needed.
func (d *Dynamic) Set(path string, v any) error {
	x, err := compile(path)
	if err != nil {
		return err
	}
	if *d == nil {
		*d = Dynamic{}
	}
	return x.Set(map[string]any(*d), v)
}

// Lookup reads the first value at path.
func (d Dynamic) Lookup(path string) (any, bool) {
	x, err := compile(path)
	if err != nil || d == nil {
		return nil, false
	}
	got := x.Get(map[string]any(d))
	if len(got) == 0 {
		return nil, false
	}
	return got[0], true
}

// Keys lists the top-level fields in sorted order.
func (d Dynamic) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RegisterDynamic registers tag as a struct-like type backed by Dynamic.
func RegisterDynamic(reg *value.Registry, tag value.TypeTag) {
	value.RegisterStruct(reg, tag, value.PoseStruct, func(obj *Dynamic, path string, v any) error {
		return obj.Set(path, v)
	})
}

// BindDynamic gives tag its own Dynamic component type in s and registers
// it with reg.
func BindDynamic(s *DonburiStore, reg *value.Registry, tag value.TypeTag) error {
	if err := Bind(s, tag, donburi.NewComponentType[Dynamic]()); err != nil {
		return err
	}
	RegisterDynamic(reg, tag)
	return nil
}

// BindWhole binds a fresh component type for T under tag and registers it
// as a whole-value animatable type resolved by fn.
func BindWhole[T any](s *DonburiStore, reg *value.Registry, tag value.TypeTag, fn func(value.TrackValue, value.AssetContext) (T, error)) error {
	if err := Bind(s, tag, donburi.NewComponentType[T]()); err != nil {
		return err
	}
	value.RegisterWhole(reg, tag, fn)
	return nil
}
