// Package web serves the public testimonial site and the invited-client review form.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/existflow/kudos/internal/config"
	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Backend is the anonymous part of the API the site renders from
type Backend interface {
	PublicStats(ctx context.Context) (*model.PublicStats, error)
	FeaturedTestimonials(ctx context.Context, limit int) ([]model.Testimonial, error)
	PublicTestimonials(ctx context.Context, featuredOnly bool, limit int) ([]model.Testimonial, error)
	PublicProjects(ctx context.Context) ([]model.PublicProject, error)
	ValidateToken(ctx context.Context, token string) (*model.TokenValidation, error)
	SubmitTestimonial(ctx context.Context, sub model.Submission) (*model.Testimonial, error)
}

// FeaturedLimit is how many featured testimonials the home page shows
const FeaturedLimit = 6

// MsgSubmitInProgress is shown when a review is posted again before the first post finished
const MsgSubmitInProgress = "Your testimonial is already being submitted. Please wait a moment."

// Server is the public web front end
type Server struct {
	backend Backend
	cfg     *config.Config
	echo    *echo.Echo

	// tokens with a review POST in flight
	submitting sync.Map
}

// New creates a server rendering from backend
func New(backend Backend, cfg *config.Config) (*Server, error) {
	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{backend: backend, cfg: cfg}
	s.setupEcho(renderer)
	return s, nil
}

func (s *Server) setupEcho(renderer echo.Renderer) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger)

	e.GET("/health", s.handleHealth)
	e.GET("/", s.handleHome)
	e.GET("/testimonials", s.handleTestimonials)
	e.GET("/projects", s.handleProjects)
	e.GET("/review", s.handleReviewForm)
	e.POST("/review", s.handleReviewSubmit)
	e.GET("/review/success", s.handleReviewSuccess)

	s.echo = e
}

// requestLogger logs every request with its id, status and duration
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			// Let echo write the error response so the logged status is the real one
			c.Error(err)
		}

		res := c.Response()
		logger.Info("HTTP Response",
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()))

		return nil
	}
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	logger.Info("Web front end starting", logger.F("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// claim marks token as being submitted, reporting false if it already was
func (s *Server) claim(token string) bool {
	_, busy := s.submitting.LoadOrStore(token, struct{}{})
	return !busy
}

func (s *Server) release(token string) {
	s.submitting.Delete(token)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
