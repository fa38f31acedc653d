package track

import (
	"errors"
	"fmt"

	"github.com/agentic-research/nextanim/api"
	"github.com/agentic-research/nextanim/internal/value"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	// ErrDecode marks a structurally invalid animation document.
	ErrDecode = errors.New("decode entity animations")
	// ErrEncode marks an animation set that has no valid wire form.
	ErrEncode = errors.New("encode entity animations")
)

// Decode parses a JSON animation document. On error nothing is returned.
func Decode(data []byte) (EntityAnimations, error) {
	var doc api.EntityAnimations
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromRecord(doc)
}

// DecodeYAML parses the YAML rendition of an animation document.
func DecodeYAML(data []byte) (EntityAnimations, error) {
	var doc api.EntityAnimations
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromRecord(doc)
}

// Encode renders anims as indented JSON.
func Encode(anims EntityAnimations) ([]byte, error) {
	doc, err := ToRecord(anims)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromRecord validates a wire record and builds the in-memory animation set.
func FromRecord(doc api.EntityAnimations) (EntityAnimations, error) {
	out := make(EntityAnimations, len(doc))
	for name, clip := range doc {
		anim := NewEntityAnimation()
		for tag, rec := range clip {
			ct, err := componentFromRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("%w: clip %q type %q: %v", ErrDecode, name, tag, err)
			}
			anim.Insert(value.TypeTag(tag), ct)
		}
		out[AnimationName(name)] = anim
	}
	return out, nil
}

func componentFromRecord(rec api.ComponentTrack) (*ComponentTrack, error) {
	switch {
	case rec.Single != nil && rec.Multiple != nil:
		return nil, errors.New("both single and multiple set")
	case rec.Single != nil:
		t, err := trackFromRecord(*rec.Single)
		if err != nil {
			return nil, err
		}
		if !t.Binding.IsWhole() {
			return nil, fmt.Errorf("single track has field path %q", t.Binding.Path)
		}
		return NewSingle(t), nil
	case rec.Multiple != nil:
		ct := NewMultiple()
		for path, tr := range rec.Multiple {
			t, err := trackFromRecord(tr)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", path, err)
			}
			if t.Binding.Path != path {
				return nil, fmt.Errorf("field %q: track bound to %q", path, t.Binding.Path)
			}
			ct.AddTrack(t)
		}
		return ct, nil
	default:
		return nil, errors.New("neither single nor multiple set")
	}
}

func trackFromRecord(rec api.Track) (*Track, error) {
	if !(rec.FrameDuration > 0) {
		return nil, fmt.Errorf("frame_duration %v must be positive", rec.FrameDuration)
	}
	binding := value.Whole(value.TypeTag(rec.TargetType))
	if rec.FieldPath != nil {
		if *rec.FieldPath == "" {
			return nil, errors.New("empty field_path")
		}
		binding.Path = *rec.FieldPath
	}
	t := NewTrack(binding, rec.FrameDuration, len(rec.Frames))
	t.Enabled = rec.Enabled

	for key, kf := range rec.Keyframes {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("keyframe id %q: %w", key, err)
		}
		if kf.Slot < 0 || kf.Slot >= len(rec.Frames) {
			return nil, fmt.Errorf("keyframe %s slot %d out of range [0,%d)", key, kf.Slot, len(rec.Frames))
		}
		if ref := rec.Frames[kf.Slot]; ref == nil || *ref != key {
			return nil, fmt.Errorf("keyframe %s not referenced by frame %d", key, kf.Slot)
		}
		v, err := valueFromRecord(kf.Value)
		if err != nil {
			return nil, fmt.Errorf("keyframe %s: %w", key, err)
		}
		t.AddKeyframe(Keyframe{ID: id, Slot: kf.Slot, Value: v})
	}
	for slot, ref := range rec.Frames {
		if ref == nil {
			continue
		}
		if _, ok := t.Frames.At(slot); !ok {
			return nil, fmt.Errorf("frame %d references missing keyframe %s", slot, *ref)
		}
	}
	return t, nil
}

func valueFromRecord(rec api.Value) (value.TrackValue, error) {
	switch {
	case rec.Number != nil && rec.Asset == nil:
		return value.Number(*rec.Number), nil
	case rec.Asset != nil && rec.Number == nil:
		return value.Asset(value.TypeTag(rec.Asset.TypePath), rec.Asset.Path), nil
	default:
		return value.TrackValue{}, errors.New("value must be a number or an asset reference")
	}
}

// ToRecord converts an animation set to its wire record. A Single
// component track that was never given its track cannot be written.
func ToRecord(anims EntityAnimations) (api.EntityAnimations, error) {
	doc := make(api.EntityAnimations, len(anims))
	for name, anim := range anims {
		clip := make(api.Clip, len(anim.Tracks))
		for tag, ct := range anim.Tracks {
			var rec api.ComponentTrack
			if ct.IsSingle() {
				t, ok := ct.Single()
				if !ok {
					return nil, fmt.Errorf("%w: clip %q type %q: single track not set", ErrEncode, name, tag)
				}
				tr := trackToRecord(t)
				rec.Single = &tr
			} else {
				rec.Multiple = make(map[string]api.Track, len(ct.fields))
				for path, t := range ct.fields {
					rec.Multiple[path] = trackToRecord(t)
				}
			}
			clip[string(tag)] = rec
		}
		doc[string(name)] = clip
	}
	return doc, nil
}

func trackToRecord(t *Track) api.Track {
	rec := api.Track{
		Enabled:       t.Enabled,
		TargetType:    string(t.Binding.TargetType),
		FrameDuration: t.Frames.FrameDuration(),
		Frames:        make([]*string, t.Frames.FrameCount()),
		Keyframes:     make(map[string]api.Keyframe),
	}
	if !t.Binding.IsWhole() {
		p := t.Binding.Path
		rec.FieldPath = &p
	}
	for _, k := range t.Frames.Keyframes() {
		id := k.ID.String()
		rec.Frames[k.Slot] = &id
		rec.Keyframes[id] = api.Keyframe{Slot: k.Slot, Value: valueToRecord(k.Value)}
	}
	return rec
}

func valueToRecord(v value.TrackValue) api.Value {
	if ap, ok := v.AssetPath(); ok {
		return api.Value{Asset: &api.AssetRef{TypePath: string(ap.Type), Path: ap.Path}}
	}
	n, _ := v.Float()
	return api.Value{Number: &n}
}
