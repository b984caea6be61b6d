package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/existflow/kudos/internal/model"
)

// PublicTestimonials returns published testimonials. A zero limit leaves the backend default.
func (c *Client) PublicTestimonials(ctx context.Context, featuredOnly bool, limit int) ([]model.Testimonial, error) {
	q := url.Values{}
	if featuredOnly {
		q.Set("featured_only", "true")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []model.Testimonial
	if err := c.get(ctx, "/public/testimonials", q, &out, public); err != nil {
		return nil, err
	}
	return out, nil
}

// FeaturedTestimonials returns featured, published testimonials
func (c *Client) FeaturedTestimonials(ctx context.Context, limit int) ([]model.Testimonial, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []model.Testimonial
	if err := c.get(ctx, "/public/testimonials/featured", q, &out, public); err != nil {
		return nil, err
	}
	return out, nil
}

// PublicProjects returns projects that have published testimonials
func (c *Client) PublicProjects(ctx context.Context) ([]model.PublicProject, error) {
	var out []model.PublicProject
	if err := c.get(ctx, "/public/projects", nil, &out, public); err != nil {
		return nil, err
	}
	return out, nil
}

// PublicStats returns the aggregate numbers for the public home page
func (c *Client) PublicStats(ctx context.Context) (*model.PublicStats, error) {
	var out model.PublicStats
	if err := c.get(ctx, "/public/stats", nil, &out, public); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitTestimonial submits a review using a single-use invite token
func (c *Client) SubmitTestimonial(ctx context.Context, sub model.Submission) (*model.Testimonial, error) {
	var out model.Testimonial
	if err := c.send(ctx, http.MethodPost, "/testimonials/submit", sub, &out, public); err != nil {
		return nil, err
	}
	return &out, nil
}
