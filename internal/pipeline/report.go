package pipeline

import (
	"errors"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/nextanim/internal/world"
)

// Report summarizes one tick. Targets are tracked in bitmaps keyed by the
// order in which the tick visited them.
type Report struct {
	Diagnostics []Diagnostic

	all         *roaring.Bitmap
	posed       *roaring.Bitmap
	targetIntID map[world.Entity]uint32 // entity → bitmap id
	intToTarget []world.Entity          // reverse: bitmap id → entity
}

func newReport(targets []world.Entity) *Report {
	r := &Report{
		all:         roaring.New(),
		posed:       roaring.New(),
		targetIntID: make(map[world.Entity]uint32, len(targets)),
		intToTarget: make([]world.Entity, 0, len(targets)),
	}
	for _, e := range targets {
		if _, ok := r.targetIntID[e]; ok {
			continue
		}
		id := uint32(len(r.intToTarget))
		r.targetIntID[e] = id
		r.intToTarget = append(r.intToTarget, e)
		r.all.Add(id)
	}
	return r
}

func (r *Report) markPosed(e world.Entity) {
	if id, ok := r.targetIntID[e]; ok {
		r.posed.Add(id)
	}
}

func (r *Report) entities(bm *roaring.Bitmap) []world.Entity {
	out := make([]world.Entity, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, r.intToTarget[it.Next()])
	}
	return out
}

// Posed lists targets that had at least one pose written, in visit order.
func (r *Report) Posed() []world.Entity { return r.entities(r.posed) }

// Skipped lists targets that had nothing written this tick.
func (r *Report) Skipped() []world.Entity {
	return r.entities(roaring.AndNot(r.all, r.posed))
}

func (r *Report) WasPosed(e world.Entity) bool {
	id, ok := r.targetIntID[e]
	return ok && r.posed.Contains(id)
}

// Err joins every diagnostic, or returns nil when the tick was clean.
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		errs = append(errs, d)
	}
	return errors.Join(errs...)
}
