package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for companies.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

func (s *Service) Create(ctx context.Context, name, description string) (Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	now := s.now()
	company := Company{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

// Update changes the non-nil fields.
func (s *Service) Update(ctx context.Context, id string, name, description *string) (Company, error) {
	company, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return Company{}, fmt.Errorf("%w: name cannot be blank", ErrInvalidInput)
		}
		company.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		company.Description = strings.TrimSpace(*description)
	}
	company.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Company, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns companies ordered by name.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.Repo.List(ctx)
}

// FindOrCreate returns the company named name, creating it when absent. An
// existing company with an empty description picks up the new one.
func (s *Service) FindOrCreate(ctx context.Context, name, description string) (Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	company, err := s.Repo.FindByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return s.Create(ctx, name, description)
	}
	if err != nil {
		return Company{}, err
	}
	if company.Description == "" && strings.TrimSpace(description) != "" {
		company.Description = strings.TrimSpace(description)
		company.UpdatedAt = s.now()
		if err := s.Repo.Update(ctx, company); err != nil {
			return Company{}, err
		}
	}
	return company, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
