package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork             = errors.New("network error")
	ErrAPI                 = errors.New("registry api error")
	ErrParse               = errors.New("registry response parse error")
	ErrNoExtractableText   = errors.New("no extractable text")
	ErrLawNotFound         = errors.New("law not found")
	ErrNotAcceptable       = errors.New("law data not acceptable")
	ErrMissingLawID        = errors.New("law ID required")
	ErrInvalidCategory     = errors.New("invalid law category")
	ErrAllCategoriesFailed = errors.New("failed to fetch every law category")
)

// StatusError is returned for non-200 registry responses
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}
