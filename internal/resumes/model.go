package resumes

import "time"

// Resume is a generated résumé record. PDFURL is empty until a portable
// rendition exists.
type Resume struct {
	ID          string
	DeveloperID string
	JobID       string
	Title       string
	Skills      string
	ResumeURL   string
	PDFURL      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPDF reports whether a portable rendition is attached.
func (r Resume) HasPDF() bool {
	return r.PDFURL != ""
}

// Format selects the generated artifact.
type Format string

const (
	FormatDocument Format = "docx"
	FormatPortable Format = "pdf"
)

// ParseFormat maps the request docType to a Format. Blank defaults to a document.
func ParseFormat(raw string) (Format, bool) {
	switch Format(raw) {
	case "", FormatDocument:
		return FormatDocument, true
	case FormatPortable:
		return FormatPortable, true
	default:
		return "", false
	}
}

// GenerateRequest is the input to a pipeline run.
type GenerateRequest struct {
	JobDescription string
	DeveloperID    string
	Format         Format
	// UserID scopes the developer lookup to its owner when set.
	UserID string
	JobID  string
	Title  string
	Skills string
}
