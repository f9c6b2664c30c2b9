package companies

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Company
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Company)}
}

func (r *MemoryRepo) Create(ctx context.Context, company Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[company.ID] = company
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, company Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[company.ID]; !ok {
		return ErrNotFound
	}
	r.data[company.ID] = company
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.data[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	return company, nil
}

func (r *MemoryRepo) FindByName(ctx context.Context, name string) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, company := range r.data {
		if strings.EqualFold(company.Name, name) {
			return company, nil
		}
	}
	return Company{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Company, 0, len(r.data))
	for _, company := range r.data {
		out = append(out, company)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
