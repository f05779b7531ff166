// Package registry keeps built vector stores addressable by id.
//
// The registry is memory-only: stores do not survive a restart. It holds at most
// Capacity stores and evicts the oldest registration first (insertion order,
// lookups do not refresh a store). A handle already returned by Resolve stays
// usable after its entry is evicted; eviction only drops the lookup entry.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/index"
	"github.com/kailas-cloud/vidsynth/internal/metrics"
)

// Registry is a bounded FIFO map from store id to index handle. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	stores   map[string]*index.Handle
	order    []string // oldest first
	capacity int
	newID    func() string
	onResize func(size int)
	logger   *zap.Logger
}

// New creates a registry holding at most capacity stores. capacity <= 0 means unbounded.
func New(capacity int, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		stores:   make(map[string]*index.Handle),
		capacity: capacity,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// OnResize sets a callback invoked with the new size after every Register.
// It runs under the write lock, so calls observe sizes in order; fn must not call back into r.
func (r *Registry) OnResize(fn func(size int)) *Registry {
	r.mu.Lock()
	r.onResize = fn
	r.mu.Unlock()
	return r
}

// Register stores h under a fresh id and evicts the oldest entries beyond capacity.
// Insert and eviction happen under one lock, so the size bound holds after every call.
func (r *Registry) Register(h *index.Handle) (string, error) {
	if h == nil {
		return "", fmt.Errorf("register vector store: nil handle: %w", domain.ErrInvalidArgument)
	}
	chunks := h.Len()

	r.mu.Lock()
	id := r.newID()
	for {
		if _, taken := r.stores[id]; !taken {
			break
		}
		id = r.newID()
	}

	r.stores[id] = h
	r.order = append(r.order, id)

	var evicted []string
	for r.capacity > 0 && len(r.order) > r.capacity {
		oldest := r.order[0]
		r.order[0] = ""
		r.order = r.order[1:]
		delete(r.stores, oldest)
		evicted = append(evicted, oldest)
	}
	size := len(r.order)
	metrics.RegistryStores.Set(float64(size))
	if r.onResize != nil {
		r.onResize(size)
	}
	r.mu.Unlock()

	metrics.RegistryRegistrationsTotal.Inc()
	metrics.RegistryEvictionsTotal.Add(float64(len(evicted)))

	for _, old := range evicted {
		r.logger.Info("Vector store evicted",
			zap.String("vector_store_id", old),
			zap.Int("capacity", r.capacity),
		)
	}
	r.logger.Debug("Vector store registered",
		zap.String("vector_store_id", id),
		zap.Int("chunks", chunks),
		zap.Int("size", size),
	)
	return id, nil
}

// Resolve returns the handle registered under id.
// Unknown and evicted ids both yield domain.ErrNotFound.
func (r *Registry) Resolve(id string) (*index.Handle, error) {
	r.mu.RLock()
	h, ok := r.stores[id]
	r.mu.RUnlock()

	if !ok {
		metrics.RegistryLookupsTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("vector store %q: %w", id, domain.ErrNotFound)
	}
	metrics.RegistryLookupsTotal.WithLabelValues("hit").Inc()
	return h, nil
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Capacity returns the configured bound; zero or negative means unbounded.
func (r *Registry) Capacity() int { return r.capacity }
