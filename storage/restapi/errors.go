package restapi

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
)

// APIError is a non-2xx response of the backend.
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", err.Path, err.StatusCode, err.Message)
}

// Is lets callers test backend outcomes against core.ErrUnauthorized, core.ErrForbidden and core.ErrNotFound.
func (err *APIError) Is(target error) bool {
	switch err.StatusCode {
	case http.StatusUnauthorized:
		return target == core.ErrUnauthorized
	case http.StatusForbidden:
		return target == core.ErrForbidden
	case http.StatusNotFound:
		return target == core.ErrNotFound
	}
	return false
}

// IsUnauthorized reports whether the backend rejected the session token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, core.ErrUnauthorized)
}

// AsAPIError returns the backend error wrapped in err, if any.
func AsAPIError(err error) (*APIError, bool) {
	if ve, ok := errors.Cause(err).(*core.ValidationError); ok && ve.Err != nil {
		err = ve.Err
	}
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
