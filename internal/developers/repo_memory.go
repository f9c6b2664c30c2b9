package developers

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores developers in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Developer
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Developer)}
}

func (r *MemoryRepo) Create(ctx context.Context, dev Developer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[dev.ID] = dev
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, dev Developer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[dev.ID]; !ok {
		return ErrNotFound
	}
	r.byID[dev.ID] = dev
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Developer, error) {
	if err := ctx.Err(); err != nil {
		return Developer{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	dev, ok := r.byID[id]
	if !ok {
		return Developer{}, ErrNotFound
	}
	return dev, nil
}

// ListByUser returns the user's developers ordered by name.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Developer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Developer, 0)
	for _, dev := range r.byID {
		if dev.UserID == userID {
			out = append(out, dev)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
