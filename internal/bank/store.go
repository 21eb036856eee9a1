// file: internal/bank/store.go
// version: 1.0.0
// guid: ff1e62cc-0656-440a-80a3-aef6fb34eaa3

package bank

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jdfalk/voicematch/internal/cache"
	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/metrics"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/jdfalk/voicematch/internal/watcher"
)

// DefaultCacheTTL bounds how long prepared candidate sets are kept.
const DefaultCacheTTL = 30 * time.Minute

type preparedSet struct {
	candidates []matcher.Candidate
	lang       normalize.Language
}

// Store holds the current bank and swaps it atomically on reload. A failed
// reload keeps serving the previous bank.
type Store struct {
	mu sync.RWMutex
	// reloadMu keeps load-and-swap in call order.
	reloadMu sync.Mutex
	load     func(path string) (*Bank, error)
	path     string
	bank     *Bank
	revision uint64
	loadedAt time.Time
	prepared *cache.Cache[preparedSet]
	watcher  *watcher.Watcher
	onReload func(Info)
}

// NewStore wraps an already loaded bank. path may be empty when the bank was
// built in memory; Reload then fails.
func NewStore(b *Bank, path string, cacheTTL time.Duration) *Store {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if b == nil {
		b, _ = New(nil)
	}
	metrics.SetQuestions(b.Len())
	return &Store{
		load:     Load,
		path:     path,
		bank:     b,
		revision: 1,
		loadedAt: time.Now(),
		prepared: cache.New[preparedSet](cacheTTL),
	}
}

// OpenStore loads path and returns a Store serving it.
func OpenStore(path string, cacheTTL time.Duration) (*Store, error) {
	b, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(b, path, cacheTTL), nil
}

// Bank returns the current bank snapshot.
func (s *Store) Bank() *Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bank
}

// Path returns the bank file path.
func (s *Store) Path() string {
	return s.path
}

// Info describes the loaded bank.
type Info struct {
	Path      string      `json:"path"`
	Questions int         `json:"questions"`
	Revision  uint64      `json:"revision"`
	LoadedAt  time.Time   `json:"loaded_at"`
	Cache     cache.Stats `json:"cache"`
}

// Info returns a snapshot of bank state.
func (s *Store) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Info{
		Path:      s.path,
		Questions: s.bank.Len(),
		Revision:  s.revision,
		LoadedAt:  s.loadedAt,
		Cache:     s.prepared.Stats(),
	}
}

// Reload re-reads the bank file.
func (s *Store) Reload() error {
	if s.path == "" {
		metrics.IncBankReload("error")
		return fmt.Errorf("reload question bank: no file configured")
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	b, err := s.load(s.path)
	if err != nil {
		metrics.IncBankReload("error")
		return err
	}

	s.mu.Lock()
	s.bank = b
	s.revision++
	s.loadedAt = time.Now()
	rev := s.revision
	hook := s.onReload
	s.mu.Unlock()

	s.prepared.InvalidateAll()
	metrics.SetQuestions(b.Len())
	metrics.IncBankReload("ok")
	log.Printf("[INFO] question bank reloaded from %s: %d questions (revision %d)", s.path, b.Len(), rev)
	if hook != nil {
		hook(s.Info())
	}
	return nil
}

// OnReload registers fn to run after every successful reload, including
// reloads triggered by Watch.
func (s *Store) OnReload(fn func(Info)) {
	s.mu.Lock()
	s.onReload = fn
	s.mu.Unlock()
}

// Candidates returns the prepared candidates for a question, memoized per
// bank revision.
func (s *Store) Candidates(id string) ([]matcher.Candidate, normalize.Language, error) {
	s.mu.RLock()
	b, rev := s.bank, s.revision
	s.mu.RUnlock()

	key := fmt.Sprintf("%d/%s", rev, id)
	set, hit, err := s.prepared.GetOrLoad(key, func() (preparedSet, error) {
		cands, lang, err := b.Candidates(id)
		return preparedSet{candidates: cands, lang: lang}, err
	})
	if err != nil {
		return nil, "", err
	}
	metrics.IncCacheLookup(hit)
	return set.candidates, set.lang, nil
}

// Watch reloads the bank whenever its file changes. Reload errors are
// logged and the previous bank stays in service.
func (s *Store) Watch(debounce time.Duration) error {
	if s.path == "" {
		return fmt.Errorf("watch question bank: no file configured")
	}
	w := watcher.New(func(string) {
		if err := s.Reload(); err != nil {
			log.Printf("[WARN] question bank reload failed, keeping revision %d: %v", s.Info().Revision, err)
		}
	}, debounce)
	if err := w.Start(s.path); err != nil {
		return fmt.Errorf("watch question bank: %w", err)
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

// Close stops the file watcher, if any.
func (s *Store) Close() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}
