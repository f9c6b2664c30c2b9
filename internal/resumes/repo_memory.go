package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Resume)}
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[resume.ID] = resume
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.data[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

func (r *MemoryRepo) ListByDeveloper(ctx context.Context, developerID string) ([]Resume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Resume
	for _, resume := range r.data {
		if resume.DeveloperID == developerID {
			out = append(out, resume)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) AttachPDF(ctx context.Context, id, pdfURL string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.data[id]
	if !ok {
		return false, ErrNotFound
	}
	if resume.PDFURL != "" {
		return false, nil
	}
	resume.PDFURL = pdfURL
	resume.UpdatedAt = now
	r.data[id] = resume
	return true, nil
}

var _ Repo = (*MemoryRepo)(nil)
