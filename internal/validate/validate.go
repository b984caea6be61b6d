// Package validate holds the client-side form rules. A form that fails here never reaches the backend.
package validate

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/existflow/kudos/internal/model"
)

// Review form minimums
const (
	MinTitleLength   = 5
	MinContentLength = 20
	MinUsername      = 3
	MinPassword      = 6
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Errors maps a form field (its JSON name) to the message shown next to it
type Errors map[string]string

// Error joins all field errors in field order
func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for one field, or ""
func (e Errors) Field(name string) string {
	return e[name]
}

// AsErrors extracts field errors from err
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// convert turns ozzo's error map into Errors, passing internal errors through
func convert(err error) error {
	if err == nil {
		return nil
	}
	var ve validation.Errors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(Errors, len(ve))
	for field, fe := range ve {
		if fe != nil {
			out[field] = fe.Error()
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Login checks that both credentials are present
func Login(c *model.Credentials) error {
	return convert(validation.ValidateStruct(c,
		validation.Field(&c.Username, validation.Required.Error("Username is required")),
		validation.Field(&c.Password, validation.Required.Error("Password is required")),
	))
}

// RegisterForm is the admin sign-up form, including the confirmation field the backend never sees
type RegisterForm struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Registration returns the body sent to the backend
func (f RegisterForm) Registration() model.Registration {
	return model.Registration{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		FullName: strings.TrimSpace(f.FullName),
	}
}

// Register validates the sign-up form
func Register(f *RegisterForm) error {
	return convert(validation.ValidateStruct(f,
		validation.Field(&f.Username,
			validation.Required.Error("Username is required"),
			validation.RuneLength(MinUsername, 0).Error("Username must be at least 3 characters"),
		),
		validation.Field(&f.Email,
			validation.Required.Error("Email is required"),
			validation.Match(emailPattern).Error("Email is invalid"),
		),
		validation.Field(&f.FullName, validation.Required.Error("Full name is required")),
		validation.Field(&f.Password,
			validation.Required.Error("Password is required"),
			validation.RuneLength(MinPassword, 0).Error("Password must be at least 6 characters"),
		),
		validation.Field(&f.ConfirmPassword,
			validation.Required.Error("Please confirm your password"),
			validation.By(func(v any) error {
				if s, _ := v.(string); s != f.Password {
					return errors.New("Passwords do not match")
				}
				return nil
			}),
		),
	))
}

// Project validates a create or update body
func Project(p *model.ProjectInput) error {
	return convert(validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required.Error("Project name is required")),
		validation.Field(&p.ClientName, validation.Required.Error("Client name is required")),
		validation.Field(&p.ClientEmail, is.EmailFormat.Error("Client email is invalid")),
		validation.Field(&p.ProjectURL, is.URL.Error("Project URL is invalid")),
		validation.Field(&p.Status, validation.By(func(v any) error {
			if s, _ := v.(model.ProjectStatus); s != "" && !s.Valid() {
				return errors.New("Status must be active, completed or archived")
			}
			return nil
		})),
	))
}

// Token validates an invite token request
func Token(r *model.TokenRequest) error {
	return convert(validation.ValidateStruct(r,
		validation.Field(&r.ProjectID, validation.Required.Error("Please select a project")),
		validation.Field(&r.ExpiresHours,
			validation.Min(1).Error("Expiry must be at least 1 hour"),
			validation.Max(model.MaxExpiresHours).Error("Expiry must be at most 720 hours"),
		),
	))
}

// Review validates an invited client's submission
func Review(s *model.Submission) error {
	return convert(validation.ValidateStruct(s,
		validation.Field(&s.ClientName, validation.Required.Error("Name is required")),
		validation.Field(&s.Title,
			validation.Required.Error("Title is required"),
			validation.RuneLength(MinTitleLength, 0).Error("Title must be at least 5 characters"),
		),
		validation.Field(&s.Content,
			validation.Required.Error("Content is required"),
			validation.RuneLength(MinContentLength, 0).Error("Content is too short (minimum 20 characters)"),
		),
		validation.Field(&s.Rating,
			validation.Required.Error("Please select a rating"),
			validation.Min(model.MinRating).Error("Rating must be between 1 and 5"),
			validation.Max(model.MaxRating).Error("Rating must be between 1 and 5"),
		),
	))
}
