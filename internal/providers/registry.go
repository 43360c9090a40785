package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type Registry struct {
	mu       sync.RWMutex
	adapters map[Provider]Adapter
}

type Descriptor struct {
	Key  Provider `json:"key"`
	Name string   `json:"name"`
}

type HealthStatus struct {
	Key     Provider `json:"key"`
	Name    string   `json:"name"`
	Healthy bool     `json:"healthy"`
	Error   string   `json:"error,omitempty"`
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[Provider]Adapter{}}
}

func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter is nil")
	}

	key := adapter.Provider()
	if !key.Valid() {
		return fmt.Errorf("adapter provider %q is not a known provider", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[key]; exists {
		return fmt.Errorf("adapter %q already registered", key)
	}

	r.adapters[key] = adapter
	return nil
}

func (r *Registry) Get(key Provider) (Adapter, bool) {
	if parsed, ok := ParseProvider(string(key)); ok {
		key = parsed
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[key]
	return adapter, ok
}

func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Descriptor, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		items = append(items, Descriptor{
			Key:  adapter.Provider(),
			Name: adapter.Name(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})

	return items
}

func (r *Registry) Health(ctx context.Context) []HealthStatus {
	r.mu.RLock()
	list := make([]Adapter, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		list = append(list, adapter)
	}
	r.mu.RUnlock()

	statuses := make([]HealthStatus, 0, len(list))
	for _, adapter := range list {
		err := adapter.HealthCheck(ctx)
		status := HealthStatus{
			Key:     adapter.Provider(),
			Name:    adapter.Name(),
			Healthy: err == nil,
		}
		if err != nil {
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Key < statuses[j].Key
	})

	return statuses
}
