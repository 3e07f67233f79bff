package polar

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/stabcalc/internal/log"
)

const (
	DefaultCacheSize = 64
	// Pattern selects the polar files inside a wing's polar directory.
	Pattern = "*.pol"
)

// Loader parses polar files and keeps recently parsed sets keyed by path and
// modification time. Cached sets are shared and must not be mutated.
type Loader struct {
	cache *lru.Cache[string, *Set]
	lg    *log.Logger
}

func NewLoader(size int, lg *log.Logger) (*Loader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *Set](size)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: c, lg: lg}, nil
}

// LoadFile parses a single polar file.
func (l *Loader) LoadFile(path string) (*Set, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s@%d", path, fi.ModTime().UnixNano())
	if s, ok := l.cache.Get(key); ok {
		l.lg.Debug("polar cache hit", "path", path)
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f, path)
	if err != nil {
		l.lg.Warn("rejecting polar file", "path", path, "error", err)
		return nil, err
	}
	l.lg.Debug("parsed polar file", "path", path, "reynolds", s.Reynolds())
	l.cache.Add(key, s)
	return s, nil
}

// LoadDir parses every polar file in dir concurrently and merges them in
// file-name order. Any malformed file fails the whole directory so a wing
// never ends up with a partial table.
func (l *Loader) LoadDir(dir string) (*Set, error) {
	paths, err := filepath.Glob(filepath.Join(dir, Pattern))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("polar: no %s files in %s: %w", Pattern, dir, ErrMalformedPolar)
	}
	slices.Sort(paths)

	sets := make([]*Set, len(paths))
	var eg errgroup.Group
	for i, p := range paths {
		eg.Go(func() error {
			s, err := l.LoadFile(p)
			if err != nil {
				return err
			}
			sets[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := NewSet()
	for _, s := range sets {
		merged.Merge(s)
	}
	return merged, nil
}

// Load accepts either a polar directory or a single polar file.
func (l *Loader) Load(source string) (*Set, error) {
	fi, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return l.LoadDir(source)
	}
	return l.LoadFile(source)
}
