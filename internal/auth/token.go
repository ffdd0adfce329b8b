// Package auth holds the process-wide bearer token used to authenticate
// against the session pool.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// TokenCache fetches a bearer token for a fixed scope on first use and
// returns the same token for the rest of the process lifetime. The cache
// is shared by all requests; the mutex makes the first fetch single-flight.
//
// The token is never invalidated on expiry. A long-lived process will
// eventually hold a stale token and sandbox calls will start failing with
// 401s; restarting is the only recovery.
type TokenCache struct {
	cred  azcore.TokenCredential
	scope string

	mu    sync.Mutex
	token string
}

// NewTokenCache creates a cache over the given credential for one scope.
func NewTokenCache(cred azcore.TokenCredential, scope string) *TokenCache {
	return &TokenCache{cred: cred, scope: scope}
}

// Token returns the cached bearer token, authenticating on first call.
// Authentication failures propagate to the caller; no retry is attempted.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	tk, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{c.scope}})
	if err != nil {
		return "", fmt.Errorf("acquiring token for %s: %w", c.scope, err)
	}

	c.token = tk.Token
	return c.token, nil
}
