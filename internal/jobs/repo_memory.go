package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Job)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[job.ID] = job
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[job.ID]; !ok {
		return ErrNotFound
	}
	r.data[job.ID] = job
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

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Job, error) {
	return r.filter(func(Job) bool { return true }), nil
}

func (r *MemoryRepo) ListByCompany(ctx context.Context, companyID string) ([]Job, error) {
	return r.filter(func(j Job) bool { return j.CompanyID == companyID }), nil
}

func (r *MemoryRepo) Search(ctx context.Context, query string) ([]Job, error) {
	q := strings.ToLower(query)
	return r.filter(func(j Job) bool {
		return strings.Contains(strings.ToLower(j.Title), q) ||
			strings.Contains(strings.ToLower(j.Description), q) ||
			strings.Contains(strings.ToLower(j.Skills), q)
	}), nil
}

func (r *MemoryRepo) FindByURL(ctx context.Context, url string) (Job, error) {
	return r.first(func(j Job) bool { return j.URL == url })
}

func (r *MemoryRepo) FindByDescription(ctx context.Context, description string) (Job, error) {
	return r.first(func(j Job) bool { return strings.EqualFold(j.Description, description) })
}

func (r *MemoryRepo) first(match func(Job) bool) (Job, error) {
	found := r.filter(match)
	if len(found) == 0 {
		return Job{}, ErrNotFound
	}
	return found[len(found)-1], nil
}

func (r *MemoryRepo) filter(match func(Job) bool) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Job
	for _, job := range r.data {
		if match(job) {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var _ Repo = (*MemoryRepo)(nil)
