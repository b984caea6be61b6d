// Package invite runs an invited client's review: validate the single-use token, collect the form,
// submit exactly once.
package invite

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
)

// Messages shown when the token cannot be used
const (
	MsgTokenMissing = "Token not found. Please use a valid invitation link."
	MsgTokenInvalid = "Token is invalid or has expired."
	MsgSubmitFailed = "Failed to submit testimonial"
)

// Form field names, matching the submission body
const (
	FieldName    = "client_name"
	FieldRole    = "client_role"
	FieldCompany = "client_company"
	FieldRating  = "rating"
	FieldTitle   = "title"
	FieldContent = "content"
)

var (
	// ErrSubmitInProgress is returned when Submit is called while a submission is in flight
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrNotEditing is returned when Submit is called outside the Editing state
	ErrNotEditing = errors.New("review form is not open")
)

// State is where the flow is
type State int

const (
	Validating State = iota
	Invalid
	Editing
	Submitting
	Submitted
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Invalid:
		return "invalid"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Backend is the part of the API the flow needs
type Backend interface {
	ValidateToken(ctx context.Context, token string) (*model.TokenValidation, error)
	SubmitTestimonial(ctx context.Context, sub model.Submission) (*model.Testimonial, error)
}

// Form is the review being written
type Form struct {
	Rating        int
	ClientName    string
	ClientRole    string
	ClientCompany string
	Title         string
	Content       string
}

// Submission builds the request body for token
func (f Form) Submission(token string) model.Submission {
	return model.Submission{
		Token:         token,
		ClientName:    strings.TrimSpace(f.ClientName),
		ClientRole:    model.Optional(f.ClientRole),
		ClientCompany: model.Optional(f.ClientCompany),
		Rating:        f.Rating,
		Title:         strings.TrimSpace(f.Title),
		Content:       strings.TrimSpace(f.Content),
	}
}

// Flow is one invited client's review session. Safe for concurrent use.
type Flow struct {
	backend Backend
	log     *logger.Logger

	mu      sync.Mutex
	state   State
	token   string
	project *model.Project
	message string
	form    Form
	errs    validate.Errors
	lastErr string
	result  *model.Testimonial
}

// NewFlow creates a flow in the Validating state
func NewFlow(backend Backend) *Flow {
	return &Flow{
		backend: backend,
		log:     logger.WithFields(logger.F("component", "invite")),
		state:   Validating,
		form:    Form{Rating: model.DefaultRating},
	}
}

// Start validates the token and moves to Editing or Invalid.
// An empty token is Invalid immediately, without calling the backend.
func (f *Flow) Start(ctx context.Context, token string) State {
	token = strings.TrimSpace(token)

	f.mu.Lock()
	f.token = token
	f.state = Validating
	f.mu.Unlock()

	if token == "" {
		return f.invalidate(MsgTokenMissing)
	}

	res, err := f.backend.ValidateToken(ctx, token)
	if err != nil {
		f.log.Warn("token validation failed", logger.Err(err))
		return f.invalidate(MsgTokenInvalid)
	}
	if !res.Valid {
		msg := res.Message
		if msg == "" {
			msg = MsgTokenInvalid
		}
		return f.invalidate(msg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.project = res.Project
	f.message = res.Message
	f.state = Editing
	return f.state
}

func (f *Flow) invalidate(msg string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.project = nil
	f.message = msg
	f.state = Invalid
	return f.state
}

// SetField updates one form field and clears its error
func (f *Flow) SetField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldName:
		f.form.ClientName = value
	case FieldRole:
		f.form.ClientRole = value
	case FieldCompany:
		f.form.ClientCompany = value
	case FieldTitle:
		f.form.Title = value
	case FieldContent:
		f.form.Content = value
	case FieldRating:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < model.MinRating || n > model.MaxRating {
			return fmt.Errorf("rating must be between %d and %d", model.MinRating, model.MaxRating)
		}
		f.form.Rating = n
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	delete(f.errs, field)
	return nil
}

// SetForm replaces the whole form, clearing errors for every field that changed
func (f *Flow) SetForm(form Form) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.form
	f.form = form
	changed := map[string]bool{
		FieldName:    prev.ClientName != form.ClientName,
		FieldRole:    prev.ClientRole != form.ClientRole,
		FieldCompany: prev.ClientCompany != form.ClientCompany,
		FieldRating:  prev.Rating != form.Rating,
		FieldTitle:   prev.Title != form.Title,
		FieldContent: prev.Content != form.Content,
	}
	for field, c := range changed {
		if c {
			delete(f.errs, field)
		}
	}
}

// Submit validates the form and sends it. Only one submission can be in flight; a second call
// returns ErrSubmitInProgress without reaching the backend. On failure the flow returns to Editing
// with the backend's message in LastError.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case Submitting:
		f.mu.Unlock()
		return ErrSubmitInProgress
	case Editing:
	default:
		f.mu.Unlock()
		return ErrNotEditing
	}

	sub := f.form.Submission(f.token)
	if err := validate.Review(&sub); err != nil {
		if fe, ok := validate.AsErrors(err); ok {
			f.errs = fe
		}
		f.mu.Unlock()
		return err
	}
	f.errs = nil
	f.lastErr = ""
	f.state = Submitting
	f.mu.Unlock()

	result, err := f.backend.SubmitTestimonial(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = Editing
		f.lastErr = submitMessage(err)
		f.log.Info("submission failed", logger.Err(err))
		return err
	}
	f.state = Submitted
	f.result = result
	f.log.Info("testimonial submitted", logger.F("project", projectName(f.project)))
	return nil
}

// submitMessage keeps backend business-rule messages and hides everything else behind a fixed one
func submitMessage(err error) string {
	if errors.Is(err, api.ErrNetwork) {
		return api.MsgNetwork
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return MsgSubmitFailed
}

func projectName(p *model.Project) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// State returns the current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Token returns the token the flow was started with
func (f *Flow) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// Project returns the project the token belongs to, once validated
func (f *Flow) Project() *model.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project
}

// Message returns the validation message: why the token is invalid, or the backend's greeting
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Form returns a copy of the form
func (f *Flow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Errors returns a copy of the current field errors
func (f *Flow) Errors() validate.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(validate.Errors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// LastError returns the message of the last failed submission
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Result returns the created testimonial after a successful submission
func (f *Flow) Result() *model.Testimonial {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}
