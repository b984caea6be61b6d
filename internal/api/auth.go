package api

import (
	"context"
	"net/http"

	"github.com/existflow/kudos/internal/model"
)

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/admin/login", creds, &out, authPage); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an admin account and signs it in
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/admin/register", reg, &out, authPage); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the admin the current token belongs to
func (c *Client) Me(ctx context.Context) (*model.Admin, error) {
	var out model.Admin
	if err := c.get(ctx, "/admin/me", nil, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}
