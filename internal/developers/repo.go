package developers

import "context"

// Repo defines persistence operations for developers.
type Repo interface {
	Create(ctx context.Context, dev Developer) error
	Update(ctx context.Context, dev Developer) error
	GetByID(ctx context.Context, id string) (Developer, error)
	ListByUser(ctx context.Context, userID string) ([]Developer, error)
}
