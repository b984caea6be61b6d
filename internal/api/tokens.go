package api

import (
	"context"
	"net/http"

	"github.com/existflow/kudos/internal/model"
)

// ListTokens returns every invite token owned by the admin
func (c *Client) ListTokens(ctx context.Context) ([]model.InviteToken, error) {
	var out []model.InviteToken
	if err := c.get(ctx, "/tokens/", nil, &out, admin); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjectTokens returns the invite tokens of one project
func (c *Client) ListProjectTokens(ctx context.Context, projectID string) ([]model.InviteToken, error) {
	var out []model.InviteToken
	if err := c.get(ctx, "/tokens/project/"+segment(projectID), nil, &out, admin); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateToken creates a new invite token. Zero ExpiresHours means the default.
func (c *Client) GenerateToken(ctx context.Context, req model.TokenRequest) (*model.InviteToken, error) {
	if req.ExpiresHours <= 0 {
		req.ExpiresHours = model.DefaultExpiresHours
	}
	var out model.InviteToken
	if err := c.send(ctx, http.MethodPost, "/tokens/generate", req, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeToken revokes an invite token by ID
func (c *Client) RevokeToken(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/tokens/"+segment(id), nil, nil, admin)
}

// ValidateToken asks the backend whether a raw invite token may still be used.
// It is anonymous; an invalid token is reported in the result, not as an error.
func (c *Client) ValidateToken(ctx context.Context, token string) (*model.TokenValidation, error) {
	var out model.TokenValidation
	if err := c.get(ctx, "/tokens/validate/"+segment(token), nil, &out, public); err != nil {
		return nil, err
	}
	return &out, nil
}
