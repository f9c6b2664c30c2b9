package developers

import "time"

// Developer is a candidate profile owned by a user. Link points at the
// uploaded résumé; Information holds text extracted from it or typed in.
type Developer struct {
	ID          string
	UserID      string
	Name        string
	Link        string
	Information string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
