package client

import (
	"errors"
	"fmt"
)

// ErrAuthenticationFailed is returned by Login when the credentials are
// rejected, on either the remote or the fallback path.
var ErrAuthenticationFailed = errors.New("client: invalid security credentials")

// RequestError reports a remote response with a non-success status. The
// message is the server-supplied "error" field when the body parsed as
// JSON, else a generic placeholder.
type RequestError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("client: request failed (%d): %s", e.StatusCode, e.Message)
}
