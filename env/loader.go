package env

import (
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Loader reads environment files and caches them by absolute path.
type Loader struct {
	fs afero.Fs

	mu    sync.Mutex
	cache map[string]*Environment
}

// NewLoader creates a loader over the given filesystem.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{
		fs:    fs,
		cache: make(map[string]*Environment),
	}
}

// Load loads an environment file. Returns a cached environment if already loaded.
func (l *Loader) Load(path string) (*Environment, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.cache[absPath]; ok {
		return e, nil
	}

	data, err := afero.ReadFile(l.fs, absPath)
	if err != nil {
		return nil, &LoadError{Path: absPath, Cause: err}
	}

	e, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Path: absPath, Cause: err}
	}

	l.cache[absPath] = e

	return e, nil
}

// LoadAll loads the standard library and merges the given files on top of it.
func (l *Loader) LoadAll(paths ...string) (*Environment, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}

	extra := make([]*Environment, 0, len(paths))

	for _, p := range paths {
		e, err := l.Load(p)
		if err != nil {
			return nil, err
		}

		extra = append(extra, e)
	}

	return base.Merge(extra...), nil
}

// Clear clears the environment cache.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache = make(map[string]*Environment)
}
