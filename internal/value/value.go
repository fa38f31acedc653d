// Package value holds the raw keyframe datum, the binding that says where a
// datum is written, and the capability registry that lets host types opt
// into being animated.
package value

import (
	"fmt"
	"reflect"
)

// TypeTag identifies a host object type or value type. It is only ever used
// as a lookup key; nothing in the engine parses it.
type TypeTag string

// TagOf returns the short type path of T, e.g. "bool" or "world.Dynamic".
func TagOf[T any]() TypeTag {
	return TypeTag(reflect.TypeFor[T]().String())
}

// Kind discriminates the TrackValue variants.
type Kind uint8

const (
	KindNumber Kind = iota
	KindAsset
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindAsset:
		return "asset"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// AssetPath is an embedded reference to an asset of a given type.
type AssetPath struct {
	Type TypeTag
	Path string
}

// TrackValue is one raw sampled datum: either a number or an asset reference.
// The zero value is Number(0).
type TrackValue struct {
	kind   Kind
	number float32
	asset  AssetPath
}

// Number builds a numeric TrackValue.
func Number(n float32) TrackValue {
	return TrackValue{kind: KindNumber, number: n}
}

// Asset builds an asset-reference TrackValue.
func Asset(tag TypeTag, path string) TrackValue {
	return TrackValue{kind: KindAsset, asset: AssetPath{Type: tag, Path: path}}
}

func (v TrackValue) Kind() Kind { return v.kind }

// Float returns the numeric payload; ok is false for asset values.
func (v TrackValue) Float() (float32, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// AssetPath returns the asset payload; ok is false for numeric values.
func (v TrackValue) AssetPath() (AssetPath, bool) {
	if v.kind != KindAsset {
		return AssetPath{}, false
	}
	return v.asset, true
}

// Equal reports whether both values carry the same variant and payload.
func (v TrackValue) Equal(o TrackValue) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.number == o.number
	}
	return v.asset == o.asset
}

func (v TrackValue) String() string {
	if v.kind == KindAsset {
		return fmt.Sprintf("Asset(%s:%s)", v.asset.Type, v.asset.Path)
	}
	return fmt.Sprintf("Number(%g)", v.number)
}

// ValueBinding names where a value is written. An empty Path binds the whole
// object; otherwise Path names one field of a struct- or enum-like object.
type ValueBinding struct {
	Path       string
	TargetType TypeTag
}

// Whole binds the entire value of an object of type tag.
func Whole(tag TypeTag) ValueBinding {
	return ValueBinding{TargetType: tag}
}

// Field binds the named field, whose value type is tag.
func Field(path string, tag TypeTag) ValueBinding {
	return ValueBinding{Path: path, TargetType: tag}
}

func (b ValueBinding) IsWhole() bool { return b.Path == "" }

// BoundValue pairs a sampled value with its binding. Sampling produces a
// fresh one every time.
type BoundValue struct {
	Binding ValueBinding
	Value   TrackValue
}

// PoseKind is the structural shape of the object a Pose targets.
type PoseKind uint8

const (
	// PoseValue replaces the whole object.
	PoseValue PoseKind = iota
	PoseStruct
	PoseEnum
)

func (k PoseKind) String() string {
	switch k {
	case PoseValue:
		return "value"
	case PoseStruct:
		return "struct"
	case PoseEnum:
		return "enum"
	default:
		return fmt.Sprintf("pose(%d)", uint8(k))
	}
}

// FieldValue is one resolved native value for a named field.
type FieldValue struct {
	Path  string
	Value any
}

// Pose is the set of resolved native values to write into one target type's
// object at one instant. For PoseValue only Value is set; otherwise Fields.
type Pose struct {
	Type   TypeTag
	Kind   PoseKind
	Value  any
	Fields []FieldValue
}

// Empty reports whether the pose would write nothing.
func (p Pose) Empty() bool {
	if p.Kind == PoseValue {
		return p.Value == nil
	}
	return len(p.Fields) == 0
}
