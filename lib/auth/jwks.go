package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"golang.org/x/time/rate"
)

const (
	// DefaultUnknownKIDInterval is the minimum time between refreshes caused by unknown key ids
	DefaultUnknownKIDInterval = 5 * time.Minute

	unknownKIDWaitMax = time.Second
)

// JWKSOptions configures the FSM signing key set
type JWKSOptions struct {
	URL        string
	HTTPClient *http.Client

	// UnknownKIDInterval limits how often a token naming an unknown key may trigger a download
	UnknownKIDInterval time.Duration
}

// NewJWKS downloads the FSM key set and returns a keyfunc backed by it. A token naming
// an unknown kid refreshes the set, at most once per UnknownKIDInterval; further
// unknown kids inside the interval are rejected without a download.
func NewJWKS(ctx context.Context, opts JWKSOptions) (keyfunc.Keyfunc, error) {
	interval := opts.UnknownKIDInterval
	if interval <= 0 {
		interval = DefaultUnknownKIDInterval
	}

	remote, err := jwkset.NewStorageFromHTTP(opts.URL, jwkset.HTTPClientStorageOptions{
		Client: opts.HTTPClient,
		Ctx:    ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", opts.URL, err)
	}

	storage, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{opts.URL: remote},
		RateLimitWaitMax:  unknownKIDWaitMax,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(interval), 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	keys, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS keyfunc: %w", err)
	}
	return keys, nil
}
