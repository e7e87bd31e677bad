package api

import (
	"context"
	"fmt"
	"net/url"
)

// Login exchanges credentials for a bearer token. The backend expects a
// form-encoded body, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	var tr TokenResponse
	if err := c.postForm(ctx, "/auth/login", form, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("login reply missing access_token")
	}
	return &tr, nil
}

// Me returns the identity behind the bearer token currently on the client.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.get(ctx, "/auth/me", &id); err != nil {
		return nil, err
	}
	return &id, nil
}
