package resumes

import (
	"errors"
	"net/http"

	"resume-tailor/internal/convert"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/resume/render"
)

var (
	// ErrDeveloperNotFound is returned when the requested developer does not exist
	// or belongs to another user.
	ErrDeveloperNotFound = errors.New("developer not found")
	// ErrNotFound is returned when a résumé record does not exist.
	ErrNotFound = errors.New("resume not found")
	// ErrInvalidInput is returned for malformed generation requests.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorClass groups pipeline failures by who has to act on them.
type ErrorClass int

const (
	ClassInternal ErrorClass = iota
	ClassInput
	ClassExternal
	ClassTemplate
)

func (c ErrorClass) String() string {
	switch c {
	case ClassInput:
		return "input"
	case ClassExternal:
		return "external"
	case ClassTemplate:
		return "template"
	default:
		return "internal"
	}
}

// Classify maps any pipeline error into the taxonomy.
func Classify(err error) ErrorClass {
	class, _, _ := Describe(err)
	return class
}

// Describe returns the class, HTTP status and response code for err.
func Describe(err error) (ErrorClass, int, string) {
	switch {
	case errors.Is(err, ErrDeveloperNotFound), errors.Is(err, ErrNotFound):
		return ClassInput, http.StatusNotFound, "not_found"
	case errors.Is(err, ErrInvalidInput):
		return ClassInput, http.StatusBadRequest, "validation_error"
	case errors.Is(err, llm.ErrEmptyInput), errors.Is(err, extract.ErrExtraction):
		return ClassInput, http.StatusBadRequest, "empty_resume"
	case errors.Is(err, llm.ErrMissingCredential), errors.Is(err, llm.ErrRewriteService):
		return ClassExternal, http.StatusBadGateway, "llm_unavailable"
	case errors.Is(err, llm.ErrNoStructuredOutput), errors.Is(err, llm.ErrInvalidStructuredOutput):
		return ClassExternal, http.StatusBadGateway, "invalid_llm_output"
	case errors.Is(err, render.ErrTemplateRender):
		return ClassTemplate, http.StatusBadRequest, "template_error"
	case errors.Is(err, render.ErrTemplateUnavailable):
		return ClassTemplate, http.StatusInternalServerError, "template_error"
	case errors.Is(err, convert.ErrConversion):
		return ClassExternal, http.StatusBadGateway, "conversion_failed"
	case errors.Is(err, object.ErrStorage), errors.Is(err, object.ErrNotFound):
		return ClassExternal, http.StatusBadGateway, "storage_error"
	default:
		return ClassInternal, http.StatusInternalServerError, "internal_error"
	}
}
