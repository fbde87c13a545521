// Package docai wraps the OCR/LLM collaborators that turn uploaded documents
// into field bags and generate application prose.
package docai

import "fmt"

// UpstreamError marks a failure of an external AI collaborator. Handlers map
// it to an upstream-service response instead of a generic server error.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps err as a failure of the named service.
func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}
