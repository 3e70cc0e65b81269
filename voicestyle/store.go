package voicestyle

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// DefaultReloadTTL is how stale the in-memory config may get before
// Load rereads the file, so out-of-process edits land without a
// restart.
const DefaultReloadTTL = 60 * time.Second

// Store keeps the ruleset in a yaml file. Concurrent saves are
// last-writer-wins; updates are small and additive so a lost write
// degrades learning, never shape.
type Store struct {
	filename string
	ttl      time.Duration

	mutex    sync.RWMutex
	config   *Config
	loadedAt time.Time
}

func NewStore(filename string) (*Store, error) {
	s := &Store{
		filename: filename,
		ttl:      DefaultReloadTTL,
	}

	s.reload()
	return s, nil
}

// SetReloadTTL overrides the reload interval, mostly for tests.
func (s *Store) SetReloadTTL(ttl time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.ttl = ttl
}

// Load returns a copy of the current ruleset, rereading the file when
// the in-memory copy is older than the TTL.
func (s *Store) Load() *Config {
	s.mutex.RLock()
	stale := time.Since(s.loadedAt) > s.ttl
	s.mutex.RUnlock()

	if stale {
		s.reload()
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.config.clone()
}

// Save persists the ruleset and makes it the current in-memory copy.
func (s *Store) Save(cfg *Config) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.filename, data, 0644); err != nil {
		return err
	}

	s.config = cfg.clone()
	s.loadedAt = time.Now()
	return nil
}

// Update replaces the in-memory copy without touching disk. Used for
// high-frequency learned-pattern updates; Save runs on a coarser
// cadence. A TTL reload before the next Save drops these updates,
// which is the accepted lost-update tradeoff.
func (s *Store) Update(cfg *Config) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.config = cfg.clone()
}

func (s *Store) reload() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cfg := DefaultConfig()

	data, err := os.ReadFile(s.filename)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).WithField("file", s.filename).Warnln("failed to read voice style config")
		}
		// nothing persisted yet (or unreadable) - run on builtins
		s.config = cfg
		s.loadedAt = time.Now()
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logrus.WithError(err).WithField("file", s.filename).Warnln("corrupt voice style config, using defaults")
		cfg = DefaultConfig()
	}
	if cfg.PerCharacterEmotion == nil {
		cfg.PerCharacterEmotion = map[string]map[string]Override{}
	}
	if cfg.ConversationOverlays == nil {
		cfg.ConversationOverlays = map[string]Override{}
	}

	s.config = cfg
	s.loadedAt = time.Now()
}
