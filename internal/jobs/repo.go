package jobs

import "context"

// Repo persists jobs. List methods return newest first.
type Repo interface {
	Create(ctx context.Context, job Job) error
	Update(ctx context.Context, job Job) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Job, error)
	List(ctx context.Context) ([]Job, error)
	ListByCompany(ctx context.Context, companyID string) ([]Job, error)
	// Search matches query case-insensitively against title, description and skills.
	Search(ctx context.Context, query string) ([]Job, error)
	FindByURL(ctx context.Context, url string) (Job, error)
	// FindByDescription matches the whole description case-insensitively.
	FindByDescription(ctx context.Context, description string) (Job, error)
}
