package model

import "time"

// Rating bounds for a testimonial
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

// Testimonial is a review a client submitted through an invite link
type Testimonial struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id,omitempty"`
	ProjectName   string    `json:"project_name"`
	ClientName    string    `json:"client_name"`
	ClientRole    *string   `json:"client_role,omitempty"`
	ClientCompany *string   `json:"client_company,omitempty"`
	ClientAvatar  *string   `json:"client_avatar,omitempty"`
	Rating        int       `json:"rating"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	IsFeatured    bool      `json:"is_featured"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// TestimonialUpdate is the admin edit body; nil fields are left unchanged
type TestimonialUpdate struct {
	ClientName    *string `json:"client_name,omitempty"`
	ClientRole    *string `json:"client_role,omitempty"`
	ClientCompany *string `json:"client_company,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
	Title         *string `json:"title,omitempty"`
	Content       *string `json:"content,omitempty"`
	IsFeatured    *bool   `json:"is_featured,omitempty"`
	IsPublished   *bool   `json:"is_published,omitempty"`
}

// Submission is what an invited client sends with their single-use token
type Submission struct {
	Token         string  `json:"token"`
	ClientName    string  `json:"client_name"`
	ClientRole    *string `json:"client_role,omitempty"`
	ClientCompany *string `json:"client_company,omitempty"`
	Rating        int     `json:"rating"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
}

// Stars renders a rating as filled and empty stars
func Stars(rating int) string {
	s := ""
	for i := MinRating; i <= MaxRating; i++ {
		if i <= rating {
			s += "★"
		} else {
			s += "☆"
		}
	}
	return s
}

// DashboardStats is the admin dashboard summary
type DashboardStats struct {
	TotalProjects      int           `json:"total_projects"`
	TotalTestimonials  int           `json:"total_testimonials"`
	TotalTokens        int           `json:"total_tokens"`
	ActiveTokens       int           `json:"active_tokens"`
	AverageRating      float64       `json:"average_rating"`
	FeaturedCount      int           `json:"featured_count"`
	RecentTestimonials []Testimonial `json:"recent_testimonials"`
}

// PublicStats is the aggregate shown on the public home page
type PublicStats struct {
	TotalProjects      int            `json:"total_projects"`
	TotalTestimonials  int            `json:"total_testimonials"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	SatisfactionRate   float64        `json:"satisfaction_rate"`
}
