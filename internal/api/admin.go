package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/existflow/kudos/internal/model"
)

// TestimonialQuery narrows the admin testimonial listing
type TestimonialQuery struct {
	ProjectID    string
	FeaturedOnly bool
}

func (q TestimonialQuery) values() url.Values {
	v := url.Values{}
	if q.ProjectID != "" {
		v.Set("project_id", q.ProjectID)
	}
	if q.FeaturedOnly {
		v.Set("featured_only", "true")
	}
	return v
}

// Dashboard returns the admin summary
func (c *Client) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := c.get(ctx, "/admin/dashboard", nil, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects returns every project owned by the admin
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.get(ctx, "/admin/projects", nil, &out, admin); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns a project by ID
func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := c.get(ctx, "/admin/projects/"+segment(id), nil, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a project
func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	var out model.Project
	if err := c.send(ctx, http.MethodPost, "/admin/projects", in, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject replaces a project's editable fields
func (c *Client) UpdateProject(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	var out model.Project
	if err := c.send(ctx, http.MethodPut, "/admin/projects/"+segment(id), in, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project and everything attached to it
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/admin/projects/"+segment(id), nil, nil, admin)
}

// ListTestimonials returns testimonials, optionally narrowed by q
func (c *Client) ListTestimonials(ctx context.Context, q TestimonialQuery) ([]model.Testimonial, error) {
	var out []model.Testimonial
	if err := c.get(ctx, "/testimonials/", q.values(), &out, admin); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTestimonial returns a testimonial by ID
func (c *Client) GetTestimonial(ctx context.Context, id string) (*model.Testimonial, error) {
	var out model.Testimonial
	if err := c.get(ctx, "/testimonials/"+segment(id), nil, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTestimonial applies a partial update
func (c *Client) UpdateTestimonial(ctx context.Context, id string, in model.TestimonialUpdate) (*model.Testimonial, error) {
	var out model.Testimonial
	if err := c.send(ctx, http.MethodPut, "/testimonials/"+segment(id), in, &out, admin); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTestimonial deletes a testimonial
func (c *Client) DeleteTestimonial(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/testimonials/"+segment(id), nil, nil, admin)
}

// ToggleFeatured flips is_featured and returns the new value
func (c *Client) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	var out struct {
		IsFeatured bool `json:"is_featured"`
	}
	if err := c.send(ctx, http.MethodPost, "/testimonials/"+segment(id)+"/toggle-featured", nil, &out, admin); err != nil {
		return false, err
	}
	return out.IsFeatured, nil
}

// TogglePublished flips is_published and returns the new value
func (c *Client) TogglePublished(ctx context.Context, id string) (bool, error) {
	var out struct {
		IsPublished bool `json:"is_published"`
	}
	if err := c.send(ctx, http.MethodPost, "/testimonials/"+segment(id)+"/toggle-published", nil, &out, admin); err != nil {
		return false, err
	}
	return out.IsPublished, nil
}
