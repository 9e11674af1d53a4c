package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/mapview"
	markerDomain "github.com/mybus-app/service-transit/internal/domain/marker"
)

// MemoryMapRepository keeps map views in process memory.
type MemoryMapRepository struct {
	mu   sync.RWMutex
	maps map[uuid.UUID]*mapview.MapView
}

func NewMemoryMapRepository() *MemoryMapRepository {
	return &MemoryMapRepository{maps: make(map[uuid.UUID]*mapview.MapView)}
}

func (r *MemoryMapRepository) FindByID(_ context.Context, id uuid.UUID) (*mapview.MapView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maps[id]
	if !ok {
		return nil, domain.NewNotFoundError("Map", id.String())
	}
	return m, nil
}

func (r *MemoryMapRepository) Save(_ context.Context, m *mapview.MapView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps[m.ID()] = m
	return nil
}

// MemoryMarkerRepository keeps the marker registry in process memory. Stored
// markers are copies so callers cannot mutate the registry behind its back.
type MemoryMarkerRepository struct {
	mu      sync.RWMutex
	markers map[uuid.UUID]*markerDomain.Marker
}

func NewMemoryMarkerRepository() *MemoryMarkerRepository {
	return &MemoryMarkerRepository{markers: make(map[uuid.UUID]*markerDomain.Marker)}
}

func (r *MemoryMarkerRepository) FindByID(_ context.Context, id uuid.UUID) (*markerDomain.Marker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[id]
	if !ok {
		return nil, domain.NewNotFoundError("Marker", id.String())
	}
	return clone(m), nil
}

func (r *MemoryMarkerRepository) FindByKey(_ context.Context, mapID uuid.UUID, key string) (*markerDomain.Marker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.markers {
		if m.MapID() == mapID && m.Key() == key {
			return clone(m), nil
		}
	}
	return nil, domain.NewNotFoundError("Marker", key)
}

func (r *MemoryMarkerRepository) ListByMap(_ context.Context, mapID uuid.UUID) ([]*markerDomain.Marker, error) {
	return r.list(func(m *markerDomain.Marker) bool { return m.MapID() == mapID }), nil
}

func (r *MemoryMarkerRepository) ListByKind(_ context.Context, mapID uuid.UUID, kind markerDomain.Kind, routeID string) ([]*markerDomain.Marker, error) {
	return r.list(func(m *markerDomain.Marker) bool {
		return m.MapID() == mapID && m.Kind() == kind && (routeID == "" || m.RouteID() == routeID)
	}), nil
}

func (r *MemoryMarkerRepository) Save(_ context.Context, m *markerDomain.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.markers {
		if existing.MapID() == m.MapID() && existing.Key() == m.Key() {
			return domain.NewConflictError("marker key already registered on map")
		}
	}
	r.markers[m.ID()] = clone(m)
	return nil
}

func (r *MemoryMarkerRepository) Update(_ context.Context, m *markerDomain.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.markers[m.ID()]
	if !ok || existing.Version() != m.Version()-1 {
		return domain.NewConflictError("marker was modified by another request")
	}
	r.markers[m.ID()] = clone(m)
	return nil
}

func (r *MemoryMarkerRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.markers, id)
	return nil
}

func (r *MemoryMarkerRepository) list(keep func(*markerDomain.Marker) bool) []*markerDomain.Marker {
	r.mu.RLock()
	out := make([]*markerDomain.Marker, 0)
	for _, m := range r.markers {
		if keep(m) {
			out = append(out, clone(m))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].Key() < out[j].Key()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

func clone(m *markerDomain.Marker) *markerDomain.Marker {
	return markerDomain.Reconstruct(
		m.ID(), m.MapID(), m.Kind(), m.Key(), m.Position(),
		m.Icon(), m.RouteID(), m.Version(), m.CreatedAt(), m.UpdatedAt(),
	)
}
