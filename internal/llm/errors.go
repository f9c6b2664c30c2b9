package llm

import "errors"

var (
	// ErrEmptyInput is returned when there is no résumé text to rewrite.
	ErrEmptyInput = errors.New("resume text is empty")
	// ErrMissingCredential is returned when no API key is configured.
	ErrMissingCredential = errors.New("llm credential not configured")
	// ErrNoStructuredOutput is returned when the response holds no parsable JSON object.
	ErrNoStructuredOutput = errors.New("llm response contains no JSON object")
	// ErrInvalidStructuredOutput is returned when the JSON does not match the résumé schema.
	ErrInvalidStructuredOutput = errors.New("llm response does not match schema")
	// ErrRewriteService wraps transport and provider failures.
	ErrRewriteService = errors.New("llm service error")
)
