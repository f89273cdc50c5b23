package embedder

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mdekker/ragserve/pkg/types"
)

// ModelHandle is a loaded embedding model. Handles are created once per
// model identifier, never mutated, and remain valid for holders even after
// the registry is cleared.
type ModelHandle struct {
	ModelID  string
	Embedder Embedder
	LoadedAt time.Time
}

// LoadFunc loads an embedding model by identifier.
type LoadFunc func(modelID string) (Embedder, error)

// Registry caches loaded embedding models so each model is loaded at most
// once per process, no matter how many collections or callers request it.
// Loads are slow (seconds for remote providers warming up), so concurrent
// requests for the same unseen identifier are collapsed into a single load
// via singleflight; every caller receives the same handle.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*ModelHandle

	group singleflight.Group
	load  LoadFunc
}

// NewRegistry creates a registry backed by the provider factory.
func NewRegistry() *Registry {
	return NewRegistryWithLoader(NewForModel)
}

// NewRegistryWithLoader creates a registry with a custom loader.
// Tests use this to construct isolated instances with fake models.
func NewRegistryWithLoader(load LoadFunc) *Registry {
	return &Registry{
		handles: make(map[string]*ModelHandle),
		load:    load,
	}
}

// GetOrLoad returns the handle for modelID, loading the model on first
// request. Concurrent callers for the same unseen identifier trigger
// exactly one underlying load. A failed load is not cached; the next call
// retries.
func (r *Registry) GetOrLoad(modelID string) (*ModelHandle, error) {
	r.mu.RLock()
	h, ok := r.handles[modelID]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	v, err, _ := r.group.Do(modelID, func() (interface{}, error) {
		// Re-check under the write path: a prior flight may have
		// populated the map between the read above and this call.
		r.mu.RLock()
		h, ok := r.handles[modelID]
		r.mu.RUnlock()
		if ok {
			return h, nil
		}

		emb, err := r.load(modelID)
		if err != nil {
			return nil, &types.ModelLoadError{ModelID: modelID, Cause: err}
		}

		h = &ModelHandle{
			ModelID:  modelID,
			Embedder: emb,
			LoadedAt: time.Now(),
		}

		r.mu.Lock()
		r.handles[modelID] = h
		r.mu.Unlock()

		return h, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*ModelHandle), nil
}

// Clear drops all cached handles. Handles already captured by collections
// stay usable; in-flight operations hold their own reference. A subsequent
// GetOrLoad performs a fresh load.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.handles = make(map[string]*ModelHandle)
	r.mu.Unlock()
}

// Info reports the load time of every cached model.
func (r *Registry) Info() map[string]time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info := make(map[string]time.Time, len(r.handles))
	for id, h := range r.handles {
		info[id] = h.LoadedAt
	}
	return info
}

// Len returns the number of cached handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
