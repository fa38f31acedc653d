package api

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

var (
	errComponentVariant = errors.New("component track must hold exactly one of single or multiple")
	errNullValue        = errors.New("value must be a number or an asset reference, got null")
)

// Extension is the file suffix of a persisted entity animation set.
const Extension = ".entity_animations.json"

// ExtensionYAML is the authoring alternative with the same record shape.
const ExtensionYAML = ".entity_animations.yaml"

// EntityAnimations is the root record of an animation file.
// It maps animation (clip) names to clips.
type EntityAnimations map[string]Clip

// Clip maps a target type tag to the tracks animating that type.
type Clip map[string]ComponentTrack

// ComponentTrack carries exactly one of Single or Multiple.
type ComponentTrack struct {
	// Single animates the whole value of the target type.
	Single *Track `json:"single,omitempty" yaml:"single,omitempty"`
	// Multiple animates named fields of the target type.
	Multiple map[string]Track `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

type singleRecord struct {
	Single *Track `json:"single" yaml:"single"`
}

type multipleRecord struct {
	Multiple map[string]Track `json:"multiple" yaml:"multiple"`
}

// MarshalJSON writes exactly one of "single" or "multiple"; an empty
// Multiple is written as "multiple": {}.
func (c ComponentTrack) MarshalJSON() ([]byte, error) {
	switch {
	case c.Single != nil && c.Multiple == nil:
		return json.Marshal(singleRecord{Single: c.Single})
	case c.Multiple != nil && c.Single == nil:
		return json.Marshal(multipleRecord{Multiple: c.Multiple})
	default:
		return nil, errComponentVariant
	}
}

func (c ComponentTrack) MarshalYAML() (any, error) {
	switch {
	case c.Single != nil && c.Multiple == nil:
		return singleRecord{Single: c.Single}, nil
	case c.Multiple != nil && c.Single == nil:
		return multipleRecord{Multiple: c.Multiple}, nil
	default:
		return nil, errComponentVariant
	}
}

// Track is one animated value over time.
type Track struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// FieldPath is null for whole-value bindings.
	FieldPath *string `json:"field_path" yaml:"field_path"`
	// TargetType is the value type tag the sampled data resolves to.
	TargetType string `json:"target_type" yaml:"target_type"`
	// FrameDuration is the length of one frame slot in seconds.
	FrameDuration float32 `json:"frame_duration" yaml:"frame_duration"`
	// Frames is the ordered slot array; each entry is a keyframe id or null.
	Frames []*string `json:"frames" yaml:"frames"`
	// Keyframes is keyed by the keyframe's unique id.
	Keyframes map[string]Keyframe `json:"keyframes" yaml:"keyframes"`
}

// Keyframe is one authored sample.
type Keyframe struct {
	Slot  int   `json:"slot" yaml:"slot"`
	Value Value `json:"value" yaml:"value"`
}

// AssetRef is the asset variant of a keyframe value.
type AssetRef struct {
	TypePath string `json:"type_path" yaml:"type_path"`
	Path     string `json:"path" yaml:"path"`
}

// Value is either a bare number or an asset reference object.
type Value struct {
	Number *float32
	Asset  *AssetRef
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.Number != nil && v.Asset == nil:
		return json.Marshal(*v.Number)
	case v.Asset != nil && v.Number == nil:
		return json.Marshal(v.Asset)
	default:
		return nil, fmt.Errorf("value must hold exactly one of number or asset")
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errNullValue
	}
	if len(data) > 0 && data[0] == '{' {
		var ref AssetRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return fmt.Errorf("asset value: %w", err)
		}
		*v = Value{Asset: &ref}
		return nil
	}
	var n float32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("number value: %w", err)
	}
	*v = Value{Number: &n}
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	switch {
	case v.Number != nil && v.Asset == nil:
		return *v.Number, nil
	case v.Asset != nil && v.Number == nil:
		return v.Asset, nil
	default:
		return nil, fmt.Errorf("value must hold exactly one of number or asset")
	}
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return errNullValue
	}
	if node.Kind == yaml.MappingNode {
		var ref AssetRef
		if err := node.Decode(&ref); err != nil {
			return fmt.Errorf("asset value: %w", err)
		}
		*v = Value{Asset: &ref}
		return nil
	}
	var n float32
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("number value: %w", err)
	}
	*v = Value{Number: &n}
	return nil
}
