package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/invite"
	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
	"github.com/labstack/echo/v4"
)

type page struct {
	Title  string
	Active string
}

type homeData struct {
	page
	Stats    *model.PublicStats
	Featured []model.Testimonial
	Error    string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageLink struct {
	Number   int
	Ellipsis bool
	Current  bool
	URL      string
}

type pagerData struct {
	Summary                 string
	Links                   []pageLink
	First, Prev, Next, Last string
	Show                    bool
}

type testimonialsData struct {
	page
	Items   []model.Testimonial
	Query   string
	Ratings []option
	Sorts   []option
	Pager   pagerData
	Error   string
}

type projectsData struct {
	page
	Projects []model.PublicProject
	Error    string
}

type reviewData struct {
	page
	Token       string
	Project     *model.Project
	Message     string
	Form        invite.Form
	Errors      validate.Errors
	SubmitError string
	Ratings     []int
}

type invalidData struct {
	page
	Message string
}

type successData struct {
	page
	Project string
}

func (s *Server) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	data := homeData{page: page{Title: "What our clients say", Active: "home"}}

	stats, err := s.backend.PublicStats(ctx)
	if err != nil {
		logger.Warn("Failed to load public stats", logger.Err(err))
		data.Error = "Statistics are unavailable right now."
	}
	data.Stats = stats

	featured, err := s.backend.FeaturedTestimonials(ctx, FeaturedLimit)
	if err != nil {
		logger.Warn("Failed to load featured testimonials", logger.Err(err))
		data.Error = "Testimonials are unavailable right now."
	}
	data.Featured = featured

	return c.Render(http.StatusOK, "home", data)
}

var sortLabels = []option{
	{Value: listview.SortNewest, Label: "Newest first"},
	{Value: listview.SortOldest, Label: "Oldest first"},
	{Value: listview.SortHighest, Label: "Highest rated"},
	{Value: listview.SortLowest, Label: "Lowest rated"},
}

func (s *Server) handleTestimonials(c echo.Context) error {
	data := testimonialsData{page: page{Title: "Testimonials", Active: "testimonials"}}

	items, err := s.backend.PublicTestimonials(c.Request().Context(), false, 0)
	if err != nil {
		logger.Warn("Failed to load testimonials", logger.Err(err))
		data.Error = "Testimonials are unavailable right now."
	}

	list := listview.PublicTestimonials(s.cfg.PageSizes.Public)
	list.Replace(list.BeginLoad(), items)

	data.Query = strings.TrimSpace(c.QueryParam("q"))
	if data.Query != "" {
		list.SetSearch(data.Query)
	}
	if r, err := strconv.Atoi(c.QueryParam("rating")); err == nil && r >= model.MinRating && r <= model.MaxRating {
		list.SetFilter(listview.FilterRating, strconv.Itoa(r))
	}
	if sort := c.QueryParam("sort"); sort != "" {
		list.SetSort(sort)
	}
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		list.SetPage(p)
	}

	data.Items = list.Visible()
	data.Ratings = []option{{Value: "", Label: "Any rating", Selected: list.Filter(listview.FilterRating) == ""}}
	for r := model.MaxRating; r >= model.MinRating; r-- {
		v := strconv.Itoa(r)
		data.Ratings = append(data.Ratings, option{Value: v, Label: v + "+ stars", Selected: list.Filter(listview.FilterRating) == v})
	}
	for _, o := range sortLabels {
		o.Selected = o.Value == list.SortKey()
		data.Sorts = append(data.Sorts, o)
	}
	data.Pager = buildPager(list, c.Request().URL)

	return c.Render(http.StatusOK, "testimonials", data)
}

// buildPager turns the controller's pagination state into links that keep the current query
func buildPager[T any](list *listview.Controller[T], u *url.URL) pagerData {
	link := func(n int) string {
		q := u.Query()
		q.Set("page", strconv.Itoa(n))
		return u.Path + "?" + q.Encode()
	}

	var p pagerData
	start, end, total := list.Range()
	if total > 0 {
		p.Summary = fmt.Sprintf("Showing %d–%d of %d", start, end, total)
	}
	p.Show = list.TotalPages() > 1

	nav := list.Nav()
	if nav.First {
		p.First = link(1)
	}
	if nav.Prev {
		p.Prev = link(list.Page() - 1)
	}
	if nav.Next {
		p.Next = link(list.Page() + 1)
	}
	if nav.Last {
		p.Last = link(list.TotalPages())
	}

	for _, item := range list.PageNumbers() {
		pl := pageLink{Number: item.Number, Ellipsis: item.Ellipsis, Current: item.Current}
		if !item.Ellipsis {
			pl.URL = link(item.Number)
		}
		p.Links = append(p.Links, pl)
	}
	return p
}

func (s *Server) handleProjects(c echo.Context) error {
	data := projectsData{page: page{Title: "Projects", Active: "projects"}}

	projects, err := s.backend.PublicProjects(c.Request().Context())
	if err != nil {
		logger.Warn("Failed to load projects", logger.Err(err))
		data.Error = "Projects are unavailable right now."
	}
	data.Projects = projects

	return c.Render(http.StatusOK, "projects", data)
}

func ratingChoices() []int {
	out := make([]int, 0, model.MaxRating)
	for r := model.MaxRating; r >= model.MinRating; r-- {
		out = append(out, r)
	}
	return out
}

func (s *Server) renderInvalid(c echo.Context, flow *invite.Flow) error {
	return c.Render(http.StatusBadRequest, "invalid", invalidData{
		page:    page{Title: "Invalid invitation"},
		Message: flow.Message(),
	})
}

func (s *Server) reviewPage(flow *invite.Flow) reviewData {
	return reviewData{
		page:        page{Title: "Share your experience"},
		Token:       flow.Token(),
		Project:     flow.Project(),
		Message:     flow.Message(),
		Form:        flow.Form(),
		Errors:      flow.Errors(),
		SubmitError: flow.LastError(),
		Ratings:     ratingChoices(),
	}
}

func (s *Server) handleReviewForm(c echo.Context) error {
	flow := invite.NewFlow(s.backend)
	if flow.Start(c.Request().Context(), c.QueryParam("token")) == invite.Invalid {
		return s.renderInvalid(c, flow)
	}
	return c.Render(http.StatusOK, "review", s.reviewPage(flow))
}

// handleReviewSubmit re-validates the token, since the form may have sat open past its expiry.
// Only one POST per token is handled at a time; a repeat while the first is in flight reaches no backend.
func (s *Server) handleReviewSubmit(c echo.Context) error {
	ctx := c.Request().Context()
	token := strings.TrimSpace(c.FormValue("token"))
	form := reviewForm(c)

	if token != "" {
		if !s.claim(token) {
			flow := invite.NewFlow(s.backend)
			flow.SetForm(form)
			data := s.reviewPage(flow)
			data.Token = token
			data.SubmitError = MsgSubmitInProgress
			return c.Render(http.StatusConflict, "review", data)
		}
		defer s.release(token)
	}

	flow := invite.NewFlow(s.backend)
	if flow.Start(ctx, token) == invite.Invalid {
		return s.renderInvalid(c, flow)
	}
	flow.SetForm(form)

	err := flow.Submit(ctx)
	if err == nil {
		target := "/review/success"
		if p := flow.Project(); p != nil {
			target += "?project=" + url.QueryEscape(p.Name)
		}
		return c.Redirect(http.StatusSeeOther, target)
	}

	status := http.StatusUnprocessableEntity
	if errors.Is(err, api.ErrNetwork) {
		status = http.StatusBadGateway
	}
	return c.Render(status, "review", s.reviewPage(flow))
}

func reviewForm(c echo.Context) invite.Form {
	// A missing or malformed rating stays 0 and is reported by validation
	rating, _ := strconv.Atoi(c.FormValue(invite.FieldRating))
	return invite.Form{
		Rating:        rating,
		ClientName:    c.FormValue(invite.FieldName),
		ClientRole:    c.FormValue(invite.FieldRole),
		ClientCompany: c.FormValue(invite.FieldCompany),
		Title:         c.FormValue(invite.FieldTitle),
		Content:       c.FormValue(invite.FieldContent),
	}
}

func (s *Server) handleReviewSuccess(c echo.Context) error {
	return c.Render(http.StatusOK, "success", successData{
		page:    page{Title: "Thank you"},
		Project: c.QueryParam("project"),
	})
}
