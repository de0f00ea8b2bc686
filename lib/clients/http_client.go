package clients

import (
	"net/http"
	"time"
)

// HTTPClientInterface is the subset of *http.Client used for FSM calls
type HTTPClientInterface interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates the client used for FSM calls. The timeout only bounds a single
// request; the invocation deadline still comes from the Lambda context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
