package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Manager owns the network configuration document and its persistence.
// All methods are safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	path string
	doc  *Document
}

// NewManager creates a manager bound to the given document path. Call Load
// before use.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the configuration document. A missing file is replaced by the
// default three-store network, which is written back so later edits start
// from a real file. The document is schema-validated before it becomes
// state.
func (m *Manager) Load(ctx context.Context) error {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.mu.Lock()
		m.doc = DefaultDocument()
		m.mu.Unlock()
		return m.Save(ctx)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadStores, err)
	}

	if err := validateDocument(raw); err != nil {
		return err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadStores, err)
	}
	if doc.Stores == nil {
		doc.Stores = make(map[string]Store)
	}

	m.mu.Lock()
	m.doc = &doc
	m.mu.Unlock()
	return nil
}

// Save writes the current document to disk.
func (m *Manager) Save(_ context.Context) error {
	m.mu.RLock()
	doc := m.doc
	m.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("%w: nothing loaded", ErrSaveStores)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveStores, err)
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrSaveStores, err)
		}
	}
	if err := os.WriteFile(m.path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveStores, err)
	}
	return nil
}

// Add validates and inserts a store under the given id, filling unset fields
// with network defaults, then persists the document. An existing id is
// replaced.
func (m *Manager) Add(ctx context.Context, id string, n NewStore) error {
	if id == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	switch {
	case n.Name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case n.Address == "":
		return fmt.Errorf("%w: address", ErrMissingField)
	case n.Type == "":
		return fmt.Errorf("%w: type", ErrMissingField)
	case n.SizeCategory == "":
		return fmt.Errorf("%w: size_category", ErrMissingField)
	case n.TargetAudience == "":
		return fmt.Errorf("%w: target_audience", ErrMissingField)
	case n.AvgDailyVisitors <= 0:
		return fmt.Errorf("%w: avg_daily_visitors", ErrMissingField)
	}
	if !n.Type.Valid() {
		return fmt.Errorf("%w: unknown store type %q", ErrInvalidStores, n.Type)
	}

	m.mu.Lock()
	if m.doc == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: nothing loaded", ErrSaveStores)
	}
	m.doc.Stores[id] = n.withDefaults()
	m.mu.Unlock()

	return m.Save(ctx)
}

// Get returns the store registered under id.
func (m *Manager) Get(id string) (Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.doc == nil {
		return Store{}, false
	}
	s, ok := m.doc.Stores[id]
	return s, ok
}

// Active returns the active stores sorted by id.
func (m *Manager) Active() []Entry {
	return m.entries(true)
}

// All returns every store sorted by id.
func (m *Manager) All() []Entry {
	return m.entries(false)
}

func (m *Manager) entries(activeOnly bool) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.doc == nil {
		return nil
	}

	ids := make([]string, 0, len(m.doc.Stores))
	for id, s := range m.doc.Stores {
		if activeOnly && !s.Active {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, Entry{ID: id, Store: m.doc.Stores[id]})
	}
	return out
}

// Settings returns the network-wide settings.
func (m *Manager) Settings() GlobalSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.doc == nil {
		return GlobalSettings{}
	}
	return m.doc.GlobalSettings
}
