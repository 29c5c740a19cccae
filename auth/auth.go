// Package auth obtains OAuth2 client-credential tokens for calls to
// upstream services such as a remote roster API.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// ClientCred caches and refreshes a client-credentials token.
type ClientCred struct {
	src oauth2.TokenSource
}

// NewClientCred returns a token source for conf. Token requests go through
// base when it is not nil.
func NewClientCred(conf Conf, base *http.Client) (*ClientCred, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return &ClientCred{src: oauth2.ReuseTokenSource(nil, conf.oauth2Config().TokenSource(ctx))}, nil
}

// Token returns a valid access token, fetching a new one when the cached
// token has expired.
func (c *ClientCred) Token() (string, error) {
	tok, err := c.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return tok.AccessToken, nil
}

// SetAuthHeader adds the bearer token to r.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	tok, err := c.src.Token()
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	tok.SetAuthHeader(r)
	return nil
}

// Client wraps base so that every request carries the bearer token.
func (c *ClientCred) Client(base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{Transport: &oauth2.Transport{Source: c.src, Base: base.Transport}, Timeout: base.Timeout}
}
