package developers

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const developerColumns = `id, user_id, name, link, information, created_at, updated_at`

// Create inserts a developer.
func (r *PGRepo) Create(ctx context.Context, dev Developer) error {
	const query = `
INSERT INTO developers (id, user_id, name, link, information, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		dev.ID,
		dev.UserID,
		dev.Name,
		dev.Link,
		dev.Information,
		dev.CreatedAt,
		dev.UpdatedAt,
	)
	return err
}

// Update overwrites the mutable fields of a developer.
func (r *PGRepo) Update(ctx context.Context, dev Developer) error {
	const query = `
UPDATE developers
SET name = $2, link = $3, information = $4, updated_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, dev.ID, dev.Name, dev.Link, dev.Information, dev.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a developer by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Developer, error) {
	query := `SELECT ` + developerColumns + ` FROM developers WHERE id = $1 LIMIT 1`
	dev, err := scanDeveloper(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Developer{}, ErrNotFound
	}
	return dev, err
}

// ListByUser returns the user's developers ordered by name.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Developer, error) {
	query := `SELECT ` + developerColumns + ` FROM developers WHERE user_id = $1 ORDER BY name ASC, created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Developer, 0)
	for rows.Next() {
		dev, err := scanDeveloper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dev)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeveloper(row rowScanner) (Developer, error) {
	var dev Developer
	err := row.Scan(
		&dev.ID,
		&dev.UserID,
		&dev.Name,
		&dev.Link,
		&dev.Information,
		&dev.CreatedAt,
		&dev.UpdatedAt,
	)
	return dev, err
}

var _ Repo = (*PGRepo)(nil)
