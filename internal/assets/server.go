package assets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/agentic-research/nextanim/internal/track"
	"github.com/agentic-research/nextanim/internal/value"
)

var ErrUnknownHandle = errors.New("unknown asset handle")

// Handle refers to an animation set owned by a Server. The zero Handle is
// never issued.
type Handle uint32

// LoadState is the lifecycle of a handle.
type LoadState int

const (
	Pending LoadState = iota
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type slot struct {
	path  string
	state LoadState
	anims track.EntityAnimations
	err   error
	done  chan struct{}
	gen   uint64 // bumped by Reload and Insert; results of older loads are dropped
}

// Server hands out animation sets by handle. Loads run in the background;
// until one finishes the handle reads as absent. Reloads swap the value in
// place so readers see either the old or the new set, never a mix.
type Server struct {
	mu       sync.RWMutex
	loader   *Loader
	log      *log.Logger
	slots    map[Handle]*slot
	byPath   map[string]Handle
	next     Handle
	provided map[value.AssetPath]any
}

// Option configures a Server.
type Option func(*Server)

// WithLogger routes load diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

func NewServer(loader *Loader, opts ...Option) *Server {
	s := &Server{
		loader:   loader,
		log:      log.Default(),
		slots:    make(map[Handle]*slot),
		byPath:   make(map[string]Handle),
		provided: make(map[value.AssetPath]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load starts loading path in the background and returns its handle.
// Loading the same path twice returns the same handle.
func (s *Server) Load(path string) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.byPath[path]; ok {
		return h
	}
	h, sl := s.newSlotLocked(path)
	go s.fill(sl, sl.done, sl.gen)
	return h
}

// Reload re-reads the asset behind h. The previous value stays visible
// until the new one is decoded; a failed reload keeps it.
func (s *Server) Reload(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[h]
	if !ok {
		return fmt.Errorf("reload %d: %w", h, ErrUnknownHandle)
	}
	select {
	case <-sl.done:
	default:
		return nil // a load is already in flight
	}
	sl.done = make(chan struct{})
	sl.gen++
	go s.fill(sl, sl.done, sl.gen)
	return nil
}

// Insert publishes an already-built set under path, replacing any value the
// path had. A load of path still in flight is superseded: its result is
// dropped and Wait returns at once.
func (s *Server) Insert(path string, anims track.EntityAnimations) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.byPath[path]
	var sl *slot
	if ok {
		sl = s.slots[h]
	} else {
		h, sl = s.newSlotLocked(path)
	}
	select {
	case <-sl.done:
	default:
		sl.done = make(chan struct{})
		close(sl.done)
	}
	sl.gen++
	sl.anims = anims
	sl.state = Loaded
	sl.err = nil
	return h
}

func (s *Server) newSlotLocked(path string) (Handle, *slot) {
	s.next++
	h := s.next
	sl := &slot{path: path, state: Pending, done: make(chan struct{})}
	s.slots[h] = sl
	s.byPath[path] = h
	return h, sl
}

func (s *Server) fill(sl *slot, done chan struct{}, gen uint64) {
	var (
		anims track.EntityAnimations
		err   error
	)
	if s.loader == nil {
		err = &LoadError{Path: sl.path, Err: fmt.Errorf("%w: no loader configured", ErrIO)}
	} else {
		anims, err = s.loader.Load(sl.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(done)
	if sl.gen != gen {
		s.log.Printf("assets: dropped superseded load of %s", sl.path)
		return
	}
	if err != nil {
		s.log.Printf("assets: %v", err)
		sl.err = err
		if sl.anims == nil {
			sl.state = Failed
		}
		return
	}
	sl.anims = anims
	sl.state = Loaded
	sl.err = nil
}

// Get returns the loaded set behind h. Pending and failed handles are absent.
func (s *Server) Get(h Handle) (track.EntityAnimations, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots[h]
	if !ok || sl.anims == nil {
		return nil, false
	}
	return sl.anims, true
}

// Status reports the load state of h and the last load error, if any.
func (s *Server) Status(h Handle) (LoadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots[h]
	if !ok {
		return Failed, fmt.Errorf("status %d: %w", h, ErrUnknownHandle)
	}
	return sl.state, sl.err
}

// Path returns the asset path behind h.
func (s *Server) Path(h Handle) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots[h]
	if !ok {
		return "", false
	}
	return sl.path, true
}

// Wait blocks until the current load of h settles or ctx is done.
func (s *Server) Wait(ctx context.Context, h Handle) error {
	s.mu.RLock()
	sl, ok := s.slots[h]
	var done chan struct{}
	if ok {
		done = sl.done
	}
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("wait %d: %w", h, ErrUnknownHandle)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}
	_, err := s.Status(h)
	return err
}

// Provide registers a loaded non-animation asset so asset-reference values
// of type tag at path resolve to native.
func (s *Server) Provide(tag value.TypeTag, path string, native any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provided[value.AssetPath{Type: tag, Path: path}] = native
}

// ResolveAsset implements value.AssetContext.
func (s *Server) ResolveAsset(tag value.TypeTag, path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.provided[value.AssetPath{Type: tag, Path: path}]
	return v, ok
}
