package fsm

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response is kept for logging
const maxErrorBody = 4096

// HTTPError is a non-2xx response from an FSM endpoint
type HTTPError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: FSM responded %s", e.Operation, e.Status)
}

// NewHTTPError reads (a bounded part of) the response body into an HTTPError
func NewHTTPError(operation string, resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

// IsClientError reports a 4xx status
func (e *HTTPError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsNotFound reports whether err is an FSM 404
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// IsAuthFailure reports whether err is an FSM 401 or 403
func IsAuthFailure(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
}

// IsSuccess reports a 2xx status
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
