// Package assets loads entity animation sets from a filesystem or a SQLite
// catalog and hands them out by handle.
package assets

import (
	"errors"
	"fmt"
	"io"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/nextanim/api"
	"github.com/agentic-research/nextanim/internal/track"
)

var (
	ErrIO          = errors.New("could not read asset")
	ErrDecode      = errors.New("could not decode asset")
	ErrUnsupported = errors.New("unsupported asset extension")
)

// LoadError reports a failed load. Err wraps ErrIO, ErrDecode or
// ErrUnsupported.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Source reads raw asset bytes by path.
type Source interface {
	ReadAsset(path string) ([]byte, error)
}

// FSSource reads assets from a billy filesystem (osfs on disk, memfs in tests).
type FSSource struct {
	FS billy.Filesystem
}

func NewFSSource(fs billy.Filesystem) *FSSource {
	return &FSSource{FS: fs}
}

// ReadAsset implements Source.
func (s *FSSource) ReadAsset(path string) ([]byte, error) {
	f, err := s.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // safe to ignore
	return io.ReadAll(f)
}

// Supported reports whether path carries a loadable extension.
func Supported(path string) bool {
	return strings.HasSuffix(path, api.Extension) || strings.HasSuffix(path, api.ExtensionYAML)
}

// Loader turns source bytes into animation sets.
type Loader struct {
	src Source
}

func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load reads and decodes one asset. It either returns a complete set or a
// *LoadError; never a partial set.
func (l *Loader) Load(path string) (track.EntityAnimations, error) {
	if !Supported(path) {
		return nil, &LoadError{Path: path, Err: ErrUnsupported}
	}
	data, err := l.src.ReadAsset(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrIO, err)}
	}
	anims, err := Decode(path, data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return anims, nil
}

// Decode picks the codec by extension.
func Decode(path string, data []byte) (track.EntityAnimations, error) {
	var (
		anims track.EntityAnimations
		err   error
	)
	switch {
	case strings.HasSuffix(path, api.ExtensionYAML):
		anims, err = track.DecodeYAML(data)
	case strings.HasSuffix(path, api.Extension):
		anims, err = track.Decode(data)
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return anims, nil
}
