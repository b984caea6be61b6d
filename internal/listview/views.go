package listview

import (
	"strconv"

	"github.com/existflow/kudos/internal/model"
)

// Filter and sort names shared by the list screens
const (
	FilterStatus = "status"
	FilterRating = "rating"

	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortHighest = "highest"
	SortLowest  = "lowest"
	SortName    = "name"

	StatusFeatured    = "featured"
	StatusPublished   = "published"
	StatusUnpublished = "unpublished"
)

var ratingValues = []string{"", "5", "4", "3", "2", "1"}

func minRating(rating int, value string) bool {
	n, err := strconv.Atoi(value)
	if err != nil {
		return true
	}
	return rating >= n
}

func testimonialSorts() []Sort[model.Testimonial] {
	return []Sort[model.Testimonial]{
		{Key: SortNewest, Less: func(a, b model.Testimonial) bool { return a.CreatedAt.After(b.CreatedAt) }},
		{Key: SortOldest, Less: func(a, b model.Testimonial) bool { return a.CreatedAt.Before(b.CreatedAt) }},
		{Key: SortHighest, Less: func(a, b model.Testimonial) bool { return a.Rating > b.Rating }},
		{Key: SortLowest, Less: func(a, b model.Testimonial) bool { return a.Rating < b.Rating }},
	}
}

// Projects is the admin project grid: search by name or client, filter by status
func Projects(pageSize int) *Controller[model.Project] {
	return New(Options[model.Project]{
		PageSize: pageSize,
		Search: func(p model.Project) []string {
			return []string{p.Name, p.ClientName}
		},
		Filters: []Filter[model.Project]{{
			Name:   FilterStatus,
			Values: []string{"", string(model.ProjectActive), string(model.ProjectCompleted), string(model.ProjectArchived)},
			Match:  func(p model.Project, v string) bool { return string(p.Status) == v },
		}},
		Sorts: []Sort[model.Project]{
			{Key: SortNewest, Less: func(a, b model.Project) bool { return a.CreatedAt.After(b.CreatedAt) }},
			{Key: SortName, Less: func(a, b model.Project) bool { return a.Name < b.Name }},
		},
	})
}

// AdminTestimonials is the admin testimonial table
func AdminTestimonials(pageSize int) *Controller[model.Testimonial] {
	return New(Options[model.Testimonial]{
		PageSize: pageSize,
		Search: func(t model.Testimonial) []string {
			return []string{t.ClientName, t.Title, t.ProjectName}
		},
		Filters: []Filter[model.Testimonial]{
			{
				Name:   FilterRating,
				Values: ratingValues,
				Match:  func(t model.Testimonial, v string) bool { return minRating(t.Rating, v) },
			},
			{
				Name:   FilterStatus,
				Values: []string{"", StatusFeatured, StatusPublished, StatusUnpublished},
				Match: func(t model.Testimonial, v string) bool {
					switch v {
					case StatusFeatured:
						return t.IsFeatured
					case StatusPublished:
						return t.IsPublished
					case StatusUnpublished:
						return !t.IsPublished
					}
					return true
				},
			},
		},
		Sorts: testimonialSorts(),
	})
}

// Tokens is the admin invite token table
func Tokens(pageSize int) *Controller[model.InviteToken] {
	return New(Options[model.InviteToken]{
		PageSize: pageSize,
		Search: func(t model.InviteToken) []string {
			return []string{t.ProjectName, t.Token, model.Deref(t.Note)}
		},
		Filters: []Filter[model.InviteToken]{{
			Name: FilterStatus,
			Values: []string{"", string(model.TokenActive), string(model.TokenUsed),
				string(model.TokenExpired), string(model.TokenRevoked)},
			Match: func(t model.InviteToken, v string) bool { return string(t.Status) == v },
		}},
		Sorts: []Sort[model.InviteToken]{
			{Key: SortNewest, Less: func(a, b model.InviteToken) bool { return a.CreatedAt.After(b.CreatedAt) }},
			{Key: SortOldest, Less: func(a, b model.InviteToken) bool { return a.CreatedAt.Before(b.CreatedAt) }},
		},
	})
}

// PublicTestimonials is the public testimonial wall
func PublicTestimonials(pageSize int) *Controller[model.Testimonial] {
	return New(Options[model.Testimonial]{
		PageSize: pageSize,
		Search: func(t model.Testimonial) []string {
			return []string{t.ClientName, t.Title, t.Content, t.ProjectName}
		},
		Filters: []Filter[model.Testimonial]{{
			Name:   FilterRating,
			Values: ratingValues,
			Match:  func(t model.Testimonial, v string) bool { return minRating(t.Rating, v) },
		}},
		Sorts: testimonialSorts(),
	})
}
