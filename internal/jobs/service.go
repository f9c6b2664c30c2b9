package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/companies"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/telemetry"
)

const unknownCompany = "Unknown Company"

// InfoExtractor pulls structured job details out of a raw posting.
type InfoExtractor interface {
	ExtractJobInfo(ctx context.Context, jobDescription string) (llm.JobInfo, error)
}

// CompanyResolver is the slice of the companies service jobs depend on.
type CompanyResolver interface {
	Get(ctx context.Context, id string) (companies.Company, error)
	FindOrCreate(ctx context.Context, name, description string) (companies.Company, error)
}

// Service contains business logic for jobs.
type Service struct {
	Repo      Repo
	Companies CompanyResolver
	Extractor InfoExtractor
	Now       func() time.Time
}

// Batch is the outcome of importing several postings.
type Batch struct {
	Created  []WithCompany
	Existing []WithCompany
}

func (s *Service) Create(ctx context.Context, f Fields) (WithCompany, error) {
	if f.CompanyID == nil || f.Title == nil || f.Description == nil ||
		strings.TrimSpace(*f.Title) == "" || strings.TrimSpace(*f.Description) == "" {
		return WithCompany{}, fmt.Errorf("%w: companyId, title and description are required", ErrInvalidInput)
	}
	company, err := s.company(ctx, *f.CompanyID)
	if err != nil {
		return WithCompany{}, err
	}
	now := s.now()
	job := Job{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	apply(&job, f)
	if err := s.Repo.Create(ctx, job); err != nil {
		return WithCompany{}, err
	}
	return WithCompany{Job: job, Company: company}, nil
}

func (s *Service) Update(ctx context.Context, id string, f Fields) (WithCompany, error) {
	job, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return WithCompany{}, err
	}
	if (f.Title != nil && strings.TrimSpace(*f.Title) == "") ||
		(f.Description != nil && strings.TrimSpace(*f.Description) == "") {
		return WithCompany{}, fmt.Errorf("%w: title and description cannot be blank", ErrInvalidInput)
	}
	if f.CompanyID != nil {
		if _, err := s.company(ctx, *f.CompanyID); err != nil {
			return WithCompany{}, err
		}
	}
	apply(&job, f)
	job.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, job); err != nil {
		return WithCompany{}, err
	}
	return s.withCompany(ctx, job)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (WithCompany, error) {
	job, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return WithCompany{}, err
	}
	return s.withCompany(ctx, job)
}

func (s *Service) List(ctx context.Context) ([]WithCompany, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, items)
}

func (s *Service) ListByCompany(ctx context.Context, companyID string) ([]WithCompany, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, err
	}
	items, err := s.Repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, items)
}

func (s *Service) Search(ctx context.Context, query string) ([]WithCompany, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	items, err := s.Repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, items)
}

// FromDescription imports a raw posting. It returns an existing job when one
// matches by URL, then by description, and reports whether a job was created.
func (s *Service) FromDescription(ctx context.Context, description string) (WithCompany, bool, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return WithCompany{}, false, fmt.Errorf("%w: jobDescription is required", ErrInvalidInput)
	}
	info, err := s.Extractor.ExtractJobInfo(ctx, description)
	if err != nil {
		return WithCompany{}, false, err
	}

	if existing, ok, err := s.findDuplicate(ctx, info.URL, description); err != nil {
		return WithCompany{}, false, err
	} else if ok {
		found, err := s.withCompany(ctx, existing)
		return found, false, err
	}

	name := strings.TrimSpace(info.CompanyName)
	if name == "" {
		name = unknownCompany
	}
	company, err := s.Companies.FindOrCreate(ctx, name, info.CompanyDescription)
	if err != nil {
		return WithCompany{}, false, err
	}

	now := s.now()
	job := Job{
		ID:          uuid.NewString(),
		CompanyID:   company.ID,
		Title:       info.Title,
		Description: description,
		Skills:      info.Skills,
		URL:         strings.TrimSpace(info.URL),
		Source:      strings.TrimSpace(info.Source),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return WithCompany{}, false, err
	}
	return WithCompany{Job: job, Company: company}, true, nil
}

// FromDescriptions imports postings one by one. Failed items are logged and skipped.
func (s *Service) FromDescriptions(ctx context.Context, descriptions []string) Batch {
	out := Batch{Created: []WithCompany{}, Existing: []WithCompany{}}
	for i, description := range descriptions {
		job, created, err := s.FromDescription(ctx, description)
		if err != nil {
			telemetry.Warn("jobs.import_failed", map[string]any{"index": i, "err": err})
			continue
		}
		if created {
			out.Created = append(out.Created, job)
		} else {
			out.Existing = append(out.Existing, job)
		}
	}
	return out
}

func (s *Service) findDuplicate(ctx context.Context, url, description string) (Job, bool, error) {
	if url = strings.TrimSpace(url); url != "" {
		job, err := s.Repo.FindByURL(ctx, url)
		if err == nil {
			return job, true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Job{}, false, err
		}
	}
	job, err := s.Repo.FindByDescription(ctx, description)
	if errors.Is(err, ErrNotFound) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, err
	}
	return job, true, nil
}

func (s *Service) company(ctx context.Context, id string) (companies.Company, error) {
	company, err := s.Companies.Get(ctx, id)
	if errors.Is(err, companies.ErrNotFound) {
		return companies.Company{}, fmt.Errorf("%w: company %s does not exist", ErrInvalidInput, id)
	}
	return company, err
}

func (s *Service) withCompany(ctx context.Context, job Job) (WithCompany, error) {
	company, err := s.Companies.Get(ctx, job.CompanyID)
	if err != nil && !errors.Is(err, companies.ErrNotFound) {
		return WithCompany{}, err
	}
	return WithCompany{Job: job, Company: company}, nil
}

func (s *Service) attach(ctx context.Context, items []Job) ([]WithCompany, error) {
	cache := map[string]companies.Company{}
	out := make([]WithCompany, 0, len(items))
	for _, job := range items {
		company, ok := cache[job.CompanyID]
		if !ok {
			var err error
			company, err = s.Companies.Get(ctx, job.CompanyID)
			if err != nil && !errors.Is(err, companies.ErrNotFound) {
				return nil, err
			}
			cache[job.CompanyID] = company
		}
		out = append(out, WithCompany{Job: job, Company: company})
	}
	return out, nil
}

func apply(job *Job, f Fields) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&job.CompanyID, f.CompanyID)
	set(&job.Title, f.Title)
	set(&job.Description, f.Description)
	set(&job.Skills, f.Skills)
	set(&job.URL, f.URL)
	set(&job.Source, f.Source)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
