package predict

import (
	"fmt"

	"github.com/Veraticus/sla-sentinel/internal/common"
)

// InvalidInputError reports a request field that could not be parsed.
type InvalidInputError struct {
	Err   error
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected an ISO-8601 date-time", e.Field, e.Value)
}

// Unwrap exposes both the sentinel and the underlying parse error.
func (e *InvalidInputError) Unwrap() []error {
	if e.Err == nil {
		return []error{common.ErrInvalidInput}
	}
	return []error{common.ErrInvalidInput, e.Err}
}

// ModelInferenceError reports a feature vector the classifier cannot accept.
type ModelInferenceError struct {
	Expected int
	Got      int
}

func (e *ModelInferenceError) Error() string {
	return fmt.Sprintf("classifier expects %d features, got %d", e.Expected, e.Got)
}

func (e *ModelInferenceError) Unwrap() error {
	return common.ErrModelInference
}
