package model

import (
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Valid reports whether s is a known project status
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// Project represents a piece of client work that testimonials are collected for
type Project struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      *string       `json:"description,omitempty"`
	ClientName       string        `json:"client_name"`
	ClientEmail      *string       `json:"client_email,omitempty"`
	ClientCompany    *string       `json:"client_company,omitempty"`
	ProjectURL       *string       `json:"project_url,omitempty"`
	ProjectImage     *string       `json:"project_image,omitempty"`
	Tags             []string      `json:"tags"`
	Status           ProjectStatus `json:"status"`
	TestimonialCount int           `json:"testimonial_count"`
	HasTestimonial   bool          `json:"has_testimonial"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ProjectInput is the body for creating or updating a project
type ProjectInput struct {
	Name          string        `json:"name"`
	Description   *string       `json:"description,omitempty"`
	ClientName    string        `json:"client_name"`
	ClientEmail   *string       `json:"client_email,omitempty"`
	ClientCompany *string       `json:"client_company,omitempty"`
	ProjectURL    *string       `json:"project_url,omitempty"`
	Tags          []string      `json:"tags"`
	Status        ProjectStatus `json:"status,omitempty"`
}

// PublicProject is a project as shown on the public site
type PublicProject struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  *string       `json:"description,omitempty"`
	ProjectURL   *string       `json:"project_url,omitempty"`
	ProjectImage *string       `json:"project_image,omitempty"`
	Tags         []string      `json:"tags"`
	Testimonials []Testimonial `json:"testimonials"`
}

// ParseTags turns a comma separated tag string into a trimmed list without empty entries
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Input converts a project back into an editable body
func (p Project) Input() ProjectInput {
	return ProjectInput{
		Name:          p.Name,
		Description:   p.Description,
		ClientName:    p.ClientName,
		ClientEmail:   p.ClientEmail,
		ClientCompany: p.ClientCompany,
		ProjectURL:    p.ProjectURL,
		Tags:          p.Tags,
		Status:        p.Status,
	}
}

// Deref returns the value of an optional string, or "" when unset
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Optional returns nil for blank input, a trimmed pointer otherwise
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
