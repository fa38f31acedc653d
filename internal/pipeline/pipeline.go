// Package pipeline turns playback state into writes on live objects. Each
// tick runs in two phases: Sample reads players, assets and the registry and
// produces a detached Frame; Apply writes the Frame into the object store.
// Nothing that goes wrong for one target, type or value stops the tick.
package pipeline

import (
	"errors"
	"fmt"
	"log"

	"github.com/agentic-research/nextanim/internal/assets"
	"github.com/agentic-research/nextanim/internal/player"
	"github.com/agentic-research/nextanim/internal/track"
	"github.com/agentic-research/nextanim/internal/value"
	"github.com/agentic-research/nextanim/internal/world"
)

var (
	ErrPlayerNotFound = errors.New("animation player not found")
	ErrAssetNotLoaded = errors.New("animation set not loaded")
	ErrClipNotFound   = errors.New("animation clip not found")
	ErrShapeMismatch  = errors.New("track shape does not match component kind")
	ErrNoObject       = errors.New("target has no object of this type")
)

// Assets is the read side of the asset server the pipeline samples from.
type Assets interface {
	Get(h assets.Handle) (track.EntityAnimations, bool)
	value.AssetContext
}

// Diagnostic records one thing that was skipped during a tick.
type Diagnostic struct {
	Entity world.Entity
	Type   value.TypeTag
	Clip   track.AnimationName
	Err    error
}

func (d Diagnostic) Error() string {
	switch {
	case d.Type != "":
		return fmt.Sprintf("entity %v clip %q type %s: %v", d.Entity, d.Clip, d.Type, d.Err)
	case d.Clip != "":
		return fmt.Sprintf("entity %v clip %q: %v", d.Entity, d.Clip, d.Err)
	default:
		return fmt.Sprintf("entity %v: %v", d.Entity, d.Err)
	}
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Job is one resolved pose waiting to be written. It carries the apply and
// constructor functions captured at sample time.
type Job struct {
	Entity    world.Entity
	Pose      value.Pose
	apply     value.ApplyFunc
	construct func() any
}

// Frame is the output of the sample phase. It holds no live handles.
type Frame struct {
	Jobs        []Job
	Diagnostics []Diagnostic
	Targets     []world.Entity
}

// Pipeline samples and applies animations over one object store.
type Pipeline struct {
	reg    *value.Registry
	assets Assets
	store  world.Store
	log    *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger routes diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func New(reg *value.Registry, a Assets, store world.Store, opts ...Option) *Pipeline {
	p := &Pipeline{reg: reg, assets: a, store: store, log: log.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tick runs both phases back to back.
func (p *Pipeline) Tick(dt float32) *Report {
	return p.Apply(p.Sample(dt))
}

func (p *Pipeline) playerOf(e world.Entity) (*player.Player, bool) {
	obj, ok := p.store.Get(e, player.PlayerTag)
	if !ok {
		return nil, false
	}
	pl, ok := obj.(*player.Player)
	return pl, ok
}

// Sample advances every playing player once by dt, then samples and resolves
// the current clip of every target whose player is playing.
func (p *Pipeline) Sample(dt float32) *Frame {
	p.store.Each(player.PlayerTag, func(e world.Entity) {
		if pl, ok := p.playerOf(e); ok {
			pl.Advance(dt)
		}
	})

	f := &Frame{}
	p.store.Each(player.TargetTag, func(e world.Entity) {
		f.Targets = append(f.Targets, e)
		obj, ok := p.store.Get(e, player.TargetTag)
		if !ok {
			return
		}
		tgt, ok := obj.(*player.Target)
		if !ok {
			return
		}
		p.sampleTarget(f, e, *tgt)
	})
	return f
}

func (p *Pipeline) note(f *Frame, d Diagnostic) {
	p.log.Printf("Pipeline: %v", d)
	f.Diagnostics = append(f.Diagnostics, d)
}

func (p *Pipeline) sampleTarget(f *Frame, e world.Entity, tgt player.Target) {
	pl, ok := p.playerOf(tgt.Player)
	if !ok {
		p.note(f, Diagnostic{Entity: e, Err: ErrPlayerNotFound})
		return
	}
	if !pl.IsPlaying() {
		return
	}
	clipName := pl.Current()

	anims, ok := p.assets.Get(tgt.Animations)
	if !ok {
		p.note(f, Diagnostic{Entity: e, Clip: clipName, Err: ErrAssetNotLoaded})
		return
	}
	clip, ok := anims.Get(clipName)
	if !ok {
		p.note(f, Diagnostic{Entity: e, Clip: clipName, Err: ErrClipNotFound})
		return
	}

	bundles := clip.Sample(pl.Time())
	for _, tag := range clip.Types() {
		bundle, ok := bundles[tag]
		if !ok {
			continue
		}
		caps, ok := p.reg.Lookup(tag)
		if !ok || caps.Component == nil {
			p.note(f, Diagnostic{Entity: e, Clip: clipName, Type: tag, Err: value.ErrUnregistered})
			continue
		}
		if bundle.Single != (caps.Component.Kind == value.PoseValue) {
			p.note(f, Diagnostic{Entity: e, Clip: clipName, Type: tag, Err: ErrShapeMismatch})
			continue
		}

		pose := value.Pose{Type: tag, Kind: caps.Component.Kind}
		for _, bv := range bundle.Values {
			native, err := p.reg.Resolve(bv, p.assets)
			if err != nil {
				p.note(f, Diagnostic{Entity: e, Clip: clipName, Type: tag, Err: err})
				continue
			}
			if bundle.Single {
				pose.Value = native
				continue
			}
			pose.Fields = append(pose.Fields, value.FieldValue{Path: bv.Binding.Path, Value: native})
		}
		if pose.Empty() {
			continue
		}
		f.Jobs = append(f.Jobs, Job{
			Entity:    e,
			Pose:      pose,
			apply:     caps.Component.Apply,
			construct: caps.Component.New,
		})
	}
}

// Apply writes every job in f into the store. A target missing an object of
// the posed type gets a fresh one when the type has a constructor.
func (p *Pipeline) Apply(f *Frame) *Report {
	r := newReport(f.Targets)
	r.Diagnostics = append(r.Diagnostics, f.Diagnostics...)

	for _, job := range f.Jobs {
		d := Diagnostic{Entity: job.Entity, Type: job.Pose.Type}
		obj, ok := p.store.Get(job.Entity, job.Pose.Type)
		if !ok {
			if job.construct == nil {
				d.Err = ErrNoObject
				p.log.Printf("Pipeline: %v", d)
				r.Diagnostics = append(r.Diagnostics, d)
				continue
			}
			if err := p.store.Insert(job.Entity, job.Pose.Type, job.construct()); err != nil {
				d.Err = err
				p.log.Printf("Pipeline: %v", d)
				r.Diagnostics = append(r.Diagnostics, d)
				continue
			}
			if obj, ok = p.store.Get(job.Entity, job.Pose.Type); !ok {
				d.Err = ErrNoObject
				p.log.Printf("Pipeline: %v", d)
				r.Diagnostics = append(r.Diagnostics, d)
				continue
			}
		}
		if err := job.apply(obj, job.Pose); err != nil {
			d.Err = err
			p.log.Printf("Pipeline: %v", d)
			r.Diagnostics = append(r.Diagnostics, d)
			if job.Pose.Kind == value.PoseValue {
				continue
			}
		}
		r.markPosed(job.Entity)
	}
	return r
}
