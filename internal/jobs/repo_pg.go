package jobs

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, company_id, title, description, skills, url, source, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (id, company_id, title, description, skills, url, source, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Skills,
		job.URL,
		job.Source,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, job Job) error {
	const query = `
UPDATE jobs
SET company_id = $2, title = $3, description = $4, skills = $5, url = $6, source = $7, updated_at = $8
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		job.ID, job.CompanyID, job.Title, job.Description, job.Skills, job.URL, job.Source, job.UpdatedAt)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Job, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *PGRepo) List(ctx context.Context) ([]Job, error) {
	return r.many(ctx, ``)
}

func (r *PGRepo) ListByCompany(ctx context.Context, companyID string) ([]Job, error) {
	return r.many(ctx, `WHERE company_id = $1`, companyID)
}

func (r *PGRepo) Search(ctx context.Context, query string) ([]Job, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return r.many(ctx, `WHERE lower(title) LIKE $1 OR lower(description) LIKE $1 OR lower(skills) LIKE $1`, pattern)
}

func (r *PGRepo) FindByURL(ctx context.Context, url string) (Job, error) {
	return r.one(ctx, `WHERE url = $1`, url)
}

func (r *PGRepo) FindByDescription(ctx context.Context, description string) (Job, error) {
	return r.one(ctx, `WHERE lower(description) = lower($1)`, description)
}

func (r *PGRepo) one(ctx context.Context, where string, args ...any) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ` + where + ` ORDER BY created_at DESC LIMIT 1`
	var job Job
	err := scanJob(r.DB.QueryRowContext(ctx, query, args...), &job)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func (r *PGRepo) many(ctx context.Context, where string, args ...any) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ` + where + ` ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var job Job
		if err := scanJob(rows, &job); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner, job *Job) error {
	return row.Scan(
		&job.ID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		&job.Skills,
		&job.URL,
		&job.Source,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
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
