package resumes

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, developer_id, job_id, title, skills, resume_url, pdf_url, created_at, updated_at`

// Create inserts a résumé record.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (id, developer_id, job_id, title, skills, resume_url, pdf_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.DeveloperID,
		nullableString(resume.JobID),
		resume.Title,
		resume.Skills,
		resume.ResumeURL,
		nullableString(resume.PDFURL),
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

// GetByID returns a résumé by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1 LIMIT 1`
	resume, err := scanResume(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return resume, err
}

// ListByDeveloper lists a developer's résumés newest first.
func (r *PGRepo) ListByDeveloper(ctx context.Context, developerID string) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE developer_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, developerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// AttachPDF sets pdf_url when it is still NULL.
func (r *PGRepo) AttachPDF(ctx context.Context, id, pdfURL string, now time.Time) (bool, error) {
	const query = `
UPDATE resumes
SET pdf_url = $2, updated_at = $3
WHERE id = $1 AND pdf_url IS NULL`
	res, err := r.DB.ExecContext(ctx, query, id, pdfURL, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	// Either the row is gone or another caller attached first.
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		resume Resume
		jobID  sql.NullString
		pdfURL sql.NullString
	)
	err := row.Scan(
		&resume.ID,
		&resume.DeveloperID,
		&jobID,
		&resume.Title,
		&resume.Skills,
		&resume.ResumeURL,
		&pdfURL,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	resume.JobID = jobID.String
	resume.PDFURL = pdfURL.String
	return resume, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
