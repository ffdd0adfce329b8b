// Package session creates the per-request sandbox session identity.
package session

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Session identifies one sandbox session. Every interpreter call made while
// handling a request carries the same identifier, so files written by one
// tool call are visible to later calls in the same turn. The identifier is
// never reused across requests.
type Session struct {
	ID           string
	PoolEndpoint string
}

// Factory mints sessions bound to the configured session pool endpoint.
type Factory struct {
	poolEndpoint string
}

// NewFactory validates the pool management endpoint and returns a factory.
// A missing or malformed endpoint is a configuration error.
func NewFactory(poolEndpoint string) (*Factory, error) {
	if poolEndpoint == "" {
		return nil, fmt.Errorf("pool management endpoint is required")
	}
	u, err := url.Parse(poolEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid pool management endpoint %q", poolEndpoint)
	}
	return &Factory{poolEndpoint: poolEndpoint}, nil
}

// New returns a fresh session with a random unique identifier.
func (f *Factory) New() Session {
	return Session{
		ID:           uuid.New().String(),
		PoolEndpoint: f.poolEndpoint,
	}
}
