package companies

import "context"

// Repo persists companies.
type Repo interface {
	Create(ctx context.Context, company Company) error
	Update(ctx context.Context, company Company) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Company, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (Company, error)
	List(ctx context.Context) ([]Company, error)
}
