package api

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/inamate/graphpad/internal/document"
	"github.com/inamate/graphpad/internal/engine"
)

var (
	ErrNotFound  = errors.New("api: diagram not found")
	ErrExists    = errors.New("api: diagram already exists")
	ErrStoreFull = errors.New("api: diagram limit reached")
)

// Store keeps loaded diagrams in memory, each behind its own engine.
type Store struct {
	mu        sync.RWMutex
	diagrams  map[string]*entry
	limit     int
	newEngine func() *engine.Engine
}

type entry struct {
	mu      sync.Mutex
	engine  *engine.Engine
	created time.Time
}

// Summary describes a stored diagram.
type Summary struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Points  []engine.PointState `json:"points"`
	Created time.Time           `json:"created"`
}

// NewStore returns a store holding at most limit diagrams. A nil newEngine
// uses engine.NewEngine.
func NewStore(limit int, newEngine func() *engine.Engine) *Store {
	if newEngine == nil {
		newEngine = func() *engine.Engine { return engine.NewEngine() }
	}
	return &Store{
		diagrams:  make(map[string]*entry),
		limit:     limit,
		newEngine: newEngine,
	}
}

// Create loads doc into a new engine and stores it under doc.ID, which
// the engine generates when empty.
func (s *Store) Create(doc *document.Diagram) (Summary, error) {
	e := s.newEngine()
	if err := e.SetDiagram(doc); err != nil {
		return Summary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diagrams[doc.ID]; ok {
		return Summary{}, fmt.Errorf("%w: %q", ErrExists, doc.ID)
	}
	if len(s.diagrams) >= s.limit {
		return Summary{}, ErrStoreFull
	}
	ent := &entry{engine: e, created: time.Now().UTC()}
	s.diagrams[doc.ID] = ent
	return ent.summary(), nil
}

// With runs fn with exclusive use of the diagram's engine.
func (s *Store) With(id string, fn func(*engine.Engine) error) error {
	s.mu.RLock()
	ent, ok := s.diagrams[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	return fn(ent.engine)
}

// Delete removes a diagram and drops its sampled paths from the cache.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	ent, ok := s.diagrams[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(s.diagrams, id)
	s.mu.Unlock()

	ent.mu.Lock()
	ent.engine.Release()
	ent.mu.Unlock()
	return nil
}

// List returns summaries ordered by creation time.
func (s *Store) List() []Summary {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.diagrams))
	for _, ent := range s.diagrams {
		entries = append(entries, ent)
	}
	s.mu.RUnlock()

	out := make([]Summary, 0, len(entries))
	for _, ent := range entries {
		ent.mu.Lock()
		out = append(out, ent.summary())
		ent.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.diagrams)
}

func (ent *entry) summary() Summary {
	doc := ent.engine.Diagram()
	return Summary{
		ID:      doc.ID,
		Name:    doc.Name,
		Points:  ent.engine.Points(),
		Created: ent.created,
	}
}
