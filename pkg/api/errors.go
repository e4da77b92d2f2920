package api

import (
	"fmt"
)

// TransportError is returned when a request could not complete or its body
// could not be decoded.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: API call failed with status: %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: API call failed with status: %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
