// Package modelregistry persists training results to the model-metrics
// JSON document the dashboard and the train command read.
package modelregistry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/trainer"
)

// Record is one persisted training run.
type Record struct {
	Algorithm       string          `json:"algorithm"`
	Params          map[string]any  `json:"params"`
	Metrics         trainer.Metrics `json:"metrics"`
	TrainingDate    time.Time       `json:"training_date"`
	TrainingSamples int             `json:"training_samples"`
	TestSamples     int             `json:"test_samples"`
}

// Document is the full model-metrics file: the latest record per algorithm
// plus the append-only training history.
type Document struct {
	Models          map[string]Record `json:"models"`
	TrainingHistory []Record          `json:"training_history"`
	LastUpdate      time.Time         `json:"last_update"`
}

// Option applies a configuration option to the registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry is the file-backed model store. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	path string
	doc  Document
	now  func() time.Time
}

// NewRegistry creates a registry persisting to path. Call Load before use.
func NewRegistry(path string, opts ...Option) *Registry {
	r := &Registry{
		path: path,
		doc:  Document{Models: map[string]Record{}},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads the document from disk. A missing file yields an empty
// document, not an error.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.doc = Document{Models: map[string]Record{}}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadRegistry, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrLoadRegistry, r.path, err)
	}
	if doc.Models == nil {
		doc.Models = map[string]Record{}
	}

	r.doc = doc
	return nil
}

// Upsert stores a training result: the algorithm's latest record is
// replaced, the run is appended to the history and the document is saved.
func (r *Registry) Upsert(res *trainer.Result) (Record, error) {
	rec := Record{
		Algorithm:       res.Algorithm,
		Params:          res.Params,
		Metrics:         res.Metrics,
		TrainingDate:    r.now().UTC(),
		TrainingSamples: res.TrainingSamples,
		TestSamples:     res.TestSamples,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc.Models == nil {
		r.doc.Models = map[string]Record{}
	}
	r.doc.Models[res.Algorithm] = rec
	r.doc.TrainingHistory = append(r.doc.TrainingHistory, rec)
	r.doc.LastUpdate = rec.TrainingDate

	if err := r.save(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Best returns the stored model with the highest accuracy. Ties resolve to
// the alphabetically first algorithm so the answer is stable.
func (r *Registry) Best() (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.doc.Models))
	for name := range r.doc.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	var best Record
	found := false
	for _, name := range names {
		rec := r.doc.Models[name]
		if !found || rec.Metrics.Accuracy > best.Metrics.Accuracy {
			best = rec
			found = true
		}
	}
	return best, found
}

// Document returns a snapshot of the current document.
func (r *Registry) Document() Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := Document{
		Models:          make(map[string]Record, len(r.doc.Models)),
		TrainingHistory: make([]Record, len(r.doc.TrainingHistory)),
		LastUpdate:      r.doc.LastUpdate,
	}
	for name, rec := range r.doc.Models {
		out.Models[name] = rec
	}
	copy(out.TrainingHistory, r.doc.TrainingHistory)
	return out
}

// save writes the document atomically: temp file in the same directory,
// then rename. Callers hold the lock.
func (r *Registry) save() error {
	raw, err := json.MarshalIndent(r.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveRegistry, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveRegistry, err)
	}

	tmp, err := os.CreateTemp(dir, ".model_config-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveRegistry, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrSaveRegistry, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrSaveRegistry, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrSaveRegistry, err)
	}
	return nil
}
