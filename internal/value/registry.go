package value

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnregistered   = errors.New("type not registered")
	ErrWrongVariant   = errors.New("wrong track value variant")
	ErrTypeMismatch   = errors.New("asset type mismatch")
	ErrAssetNotLoaded = errors.New("asset not loaded")
	ErrHandleType     = errors.New("unexpected object handle type")
)

// AssetContext resolves embedded asset references to native handles of
// already-loaded assets.
type AssetContext interface {
	ResolveAsset(tag TypeTag, path string) (any, bool)
}

// ResolveFunc converts a raw datum into a native value of the registered type.
type ResolveFunc func(v TrackValue, assets AssetContext) (any, error)

// ApplyFunc writes a resolved pose into a live object. obj is the mutable
// handle handed out by the object store (a pointer to the component).
type ApplyFunc func(obj any, pose Pose) error

// ValueFns is the value-resolution half of a capability table.
type ValueFns struct {
	Resolve ResolveFunc
}

// ComponentFns is the object-apply half of a capability table. New, when
// set, builds a zero object so a missing component can be inserted before
// the pose is applied.
type ComponentFns struct {
	Kind  PoseKind
	Apply ApplyFunc
	New   func() any
}

// Capabilities is everything registered for one TypeTag.
type Capabilities struct {
	Tag       TypeTag
	Value     *ValueFns
	Component *ComponentFns
}

// Registry maps type tags to capability tables. It is built at startup and
// passed explicitly to whatever samples or applies poses.
type Registry struct {
	mu    sync.RWMutex
	types map[TypeTag]*Capabilities
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[TypeTag]*Capabilities)}
}

func (r *Registry) entry(tag TypeTag) *Capabilities {
	c, ok := r.types[tag]
	if !ok {
		c = &Capabilities{Tag: tag}
		r.types[tag] = c
	}
	return c
}

// SetValueFns registers (or replaces) the value resolver for tag.
func (r *Registry) SetValueFns(tag TypeTag, fns ValueFns) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(tag).Value = &fns
}

// SetComponentFns registers (or replaces) the object apply table for tag.
func (r *Registry) SetComponentFns(tag TypeTag, fns ComponentFns) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(tag).Component = &fns
}

// Lookup returns a copy of the capabilities registered for tag.
func (r *Registry) Lookup(tag TypeTag) (Capabilities, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.types[tag]
	if !ok {
		return Capabilities{}, false
	}
	return *c, true
}

// IsWholeValue reports whether tag carries a whole-value resolver.
func (r *Registry) IsWholeValue(tag TypeTag) bool {
	c, ok := r.Lookup(tag)
	return ok && c.Value != nil
}

// Tags lists every registered tag in sorted order.
func (r *Registry) Tags() []TypeTag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]TypeTag, 0, len(r.types))
	for t := range r.types {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Resolve runs the value resolver registered for the binding's target type.
func (r *Registry) Resolve(bv BoundValue, assets AssetContext) (any, error) {
	c, ok := r.Lookup(bv.Binding.TargetType)
	if !ok || c.Value == nil {
		return nil, fmt.Errorf("resolve %s: %w", bv.Binding.TargetType, ErrUnregistered)
	}
	native, err := c.Value.Resolve(bv.Value, assets)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", bv.Binding.TargetType, err)
	}
	return native, nil
}

// Erase adapts a typed resolver into a ResolveFunc.
func Erase[T any](fn func(TrackValue, AssetContext) (T, error)) ResolveFunc {
	return func(v TrackValue, assets AssetContext) (any, error) {
		out, err := fn(v, assets)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// RegisterValue makes T usable as a field value type.
func RegisterValue[T any](r *Registry, tag TypeTag, fn func(TrackValue, AssetContext) (T, error)) {
	r.SetValueFns(tag, ValueFns{Resolve: Erase(fn)})
}

// RegisterWhole makes T animatable as a whole value: tracks bound to tag
// resolve through fn and replace the entire object.
func RegisterWhole[T any](r *Registry, tag TypeTag, fn func(TrackValue, AssetContext) (T, error)) {
	RegisterValue(r, tag, fn)
	r.SetComponentFns(tag, ComponentFns{
		Kind: PoseValue,
		Apply: func(obj any, pose Pose) error {
			dst, ok := obj.(*T)
			if !ok {
				return fmt.Errorf("apply %s to %T: %w", tag, obj, ErrHandleType)
			}
			v, ok := pose.Value.(T)
			if !ok {
				return fmt.Errorf("apply %s: pose value %T: %w", tag, pose.Value, ErrHandleType)
			}
			*dst = v
			return nil
		},
		New: func() any { return new(T) },
	})
}

// RegisterStruct makes T animatable field by field. set is called once per
// resolved field; a failing field does not stop the others.
func RegisterStruct[T any](r *Registry, tag TypeTag, kind PoseKind, set func(obj *T, path string, v any) error) {
	r.SetComponentFns(tag, ComponentFns{
		Kind: kind,
		Apply: func(obj any, pose Pose) error {
			dst, ok := obj.(*T)
			if !ok {
				return fmt.Errorf("apply %s to %T: %w", tag, obj, ErrHandleType)
			}
			var errs []error
			for _, f := range pose.Fields {
				if err := set(dst, f.Path, f.Value); err != nil {
					errs = append(errs, fmt.Errorf("field %s: %w", f.Path, err))
				}
			}
			return errors.Join(errs...)
		},
		New: func() any { return new(T) },
	})
}

// RegisterAsset registers an asset-reference value type. Resolution checks
// the embedded type tag and asks the asset context for the loaded handle.
func RegisterAsset(r *Registry, tag TypeTag) {
	r.SetValueFns(tag, ValueFns{Resolve: AssetResolver(tag)})
}

// RegisterBuiltins registers the bool, uint, int and float32 value types.
func RegisterBuiltins(r *Registry) {
	RegisterValue(r, TagOf[bool](), Bool)
	RegisterValue(r, TagOf[uint](), Uint)
	RegisterValue(r, TagOf[int](), Int)
	RegisterValue(r, TagOf[float32](), Float32)
}
