package companies

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const companyColumns = `id, name, description, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, company Company) error {
	const query = `
INSERT INTO companies (id, name, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, company.ID, company.Name, company.Description, company.CreatedAt, company.UpdatedAt)
	return err
}

func (r *PGRepo) Update(ctx context.Context, company Company) error {
	const query = `UPDATE companies SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, company.ID, company.Name, company.Description, company.UpdatedAt)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1 LIMIT 1`
	return scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) FindByName(ctx context.Context, name string) (Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE lower(name) = lower($1) ORDER BY created_at LIMIT 1`
	return scanOne(r.DB.QueryRowContext(ctx, query, name))
}

func (r *PGRepo) List(ctx context.Context) ([]Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanOne(row *sql.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	return c, err
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
