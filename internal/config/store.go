package config

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Handle is a configuration snapshot tagged with the generation it was
// published at. Two handles with the same generation hold the same Config.
type Handle struct {
	*Config
	generation uint64
}

// Generation returns the generation the snapshot belongs to.
func (h Handle) Generation() uint64 {
	return h.generation
}

// Store publishes configuration snapshots. Every successful Set or Reload
// bumps the generation, which windows compare against their own handle to
// detect a reload.
type Store struct {
	mu         sync.RWMutex
	path       string
	current    *Config
	generation uint64
	logger     *log.Logger
	observers  []func(Handle)
}

// NewStore creates a store publishing cfg as generation 1.
func NewStore(path string, cfg *Config, logger *log.Logger) *Store {
	if cfg == nil {
		cfg = Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		path:       path,
		current:    cfg,
		generation: 1,
		logger:     logger.With("component", "config"),
	}
}

// Path returns the file the store reloads from.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Current returns the latest snapshot.
func (s *Store) Current() Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Handle{Config: s.current, generation: s.generation}
}

// Generation returns the latest generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Set publishes cfg as a new generation.
func (s *Store) Set(cfg *Config) Handle {
	s.mu.Lock()
	s.current = cfg
	s.generation++
	h := Handle{Config: cfg, generation: s.generation}
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(h)
	}
	return h
}

// Reload re-reads the configuration file. On failure the previous snapshot
// stays current and the error is returned.
func (s *Store) Reload() error {
	path := s.Path()
	if path == "" {
		return ErrNoConfigPath
	}
	cfg, err := Load(path)
	if err != nil {
		s.logger.Error("failed to reload configuration", "path", path, "err", err)
		return err
	}
	h := s.Set(cfg)
	s.logger.Info("configuration reloaded", "path", path, "generation", h.Generation())
	return nil
}

// OnReload registers fn to run after every published generation. fn runs on
// the publishing goroutine.
func (s *Store) OnReload(fn func(Handle)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}
