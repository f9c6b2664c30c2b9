package jobs

import (
	"time"

	"resume-tailor/internal/companies"
)

// Job is a posting a résumé can be tailored against.
type Job struct {
	ID          string
	CompanyID   string
	Title       string
	Description string
	Skills      string
	URL         string
	Source      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WithCompany pairs a job with its company.
type WithCompany struct {
	Job
	Company companies.Company
}

// Fields holds writable job attributes. Nil leaves a field unchanged on update.
type Fields struct {
	CompanyID   *string
	Title       *string
	Description *string
	Skills      *string
	URL         *string
	Source      *string
}
