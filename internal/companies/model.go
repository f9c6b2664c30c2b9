package companies

import "time"

// Company is an employer that job postings belong to.
type Company struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
