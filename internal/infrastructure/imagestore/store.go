package imagestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

type Options struct {
	Root          string
	URL           URLFunc
	FolderAliases map[string]string
	// Overrides are indexed after the scan so they win key collisions.
	Overrides []domain.VariantImageEntry
	Key       func(string) string
	// Interval between scheduled rebuilds. Zero disables the ticker.
	Interval time.Duration
	Watch    bool
	Debounce time.Duration
	Logger   *zerolog.Logger
}

type snapshot struct {
	lookup  *catalog.ImageLookup
	builtAt time.Time
}

// Store keeps the current image lookup and swaps in rebuilt ones. Readers
// never block and never see a partial lookup.
type Store struct {
	opts    Options
	current atomic.Pointer[snapshot]
	log     zerolog.Logger

	mu      sync.Mutex
	lastErr string
}

// New returns a store serving the overrides alone until the first rebuild.
func New(opts Options) *Store {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	s := &Store{opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "imagestore").Logger()
	}
	s.current.Store(&snapshot{lookup: catalog.BuildLookup(opts.Key, opts.Overrides)})
	return s
}

// Current implements catalog.ImageSource.
func (s *Store) Current() *catalog.ImageLookup {
	return s.current.Load().lookup
}

// Rebuild scans the image root and swaps in a fresh lookup. On failure the
// previous lookup stays in place.
func (s *Store) Rebuild() error {
	start := time.Now()
	entries, err := Scan(s.opts.Root, s.opts.URL, s.opts.FolderAliases, s.opts.Key)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.log.Warn().Err(err).Str("root", s.opts.Root).Msg("Image scan failed, keeping previous lookup")
		return err
	}

	all := make([]domain.VariantImageEntry, 0, len(entries)+len(s.opts.Overrides))
	all = append(all, entries...)
	all = append(all, s.opts.Overrides...)
	lookup := catalog.BuildLookup(s.opts.Key, all)
	s.current.Store(&snapshot{lookup: lookup, builtAt: time.Now()})

	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
	s.log.Info().
		Int("files", len(entries)).
		Int("keys", lookup.Len()).
		Dur("took", time.Since(start)).
		Msg("Image lookup rebuilt")
	return nil
}

func (s *Store) Stats() domain.ImageLookupStats {
	snap := s.current.Load()
	stats := domain.ImageLookupStats{
		Keys:    snap.lookup.Len(),
		Entries: snap.lookup.Sources(),
		Root:    s.opts.Root,
	}
	if !snap.builtAt.IsZero() {
		stats.BuiltAt = snap.builtAt.UTC().Format(time.RFC3339)
	}
	s.mu.Lock()
	stats.LastError = s.lastErr
	s.mu.Unlock()
	return stats
}

// Run builds the lookup, then rebuilds it on every tick and after bursts of
// filesystem events settle. Rebuilds run one at a time on this goroutine.
// Run returns when ctx is done.
func (s *Store) Run(ctx context.Context) {
	_ = s.Rebuild()

	var tick <-chan time.Time
	if s.opts.Interval > 0 {
		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var (
		watcher *fsnotify.Watcher
		events  <-chan fsnotify.Event
		errs    <-chan error
	)
	if s.opts.Watch {
		w, err := s.newWatcher()
		if err != nil {
			s.log.Warn().Err(err).Msg("Image watch disabled")
		} else {
			watcher = w
			defer watcher.Close()
			events, errs = w.Events, w.Errors
		}
	}

	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_ = s.Rebuild()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watcher.Add(ev.Name)
				}
			}
			if debounce == nil {
				debounce = time.NewTimer(s.opts.Debounce)
			} else {
				debounce.Reset(s.opts.Debounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			_ = s.Rebuild()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.log.Warn().Err(err).Msg("Image watcher error")
		}
	}
}

// newWatcher watches the root and every brand folder.
func (s *Store) newWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(s.opts.Root); err != nil {
		w.Close()
		return nil, err
	}
	dirs, err := os.ReadDir(s.opts.Root)
	if err != nil {
		w.Close()
		return nil, err
	}
	for _, d := range dirs {
		if d.IsDir() {
			if err := w.Add(filepath.Join(s.opts.Root, d.Name())); err != nil {
				s.log.Warn().Err(err).Str("dir", d.Name()).Msg("Cannot watch brand folder")
			}
		}
	}
	return w, nil
}
