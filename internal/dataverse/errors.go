package dataverse

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthorizationError reports that the server refused access to a dataset or
// file, typically because it is private and no (or a wrong) API key was
// supplied.
type AuthorizationError struct {
	Resource   string
	StatusCode int
	Message    string
}

func (e *AuthorizationError) Error() string {
	msg := fmt.Sprintf("access to %s denied (HTTP %d)", e.Resource, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsAuthorizationError reports whether err or any error it wraps is an
// *AuthorizationError.
func IsAuthorizationError(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
