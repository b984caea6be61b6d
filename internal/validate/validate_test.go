package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kudos/internal/model"
)

func validRegister() RegisterForm {
	return RegisterForm{
		Username:        "ana",
		Email:           "ana@example.com",
		FullName:        "Ana Lima",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterForm)
		field  string
	}{
		{"valid", func(*RegisterForm) {}, ""},
		{"short username", func(f *RegisterForm) { f.Username = "an" }, "username"},
		{"bad email", func(f *RegisterForm) { f.Email = "ana@example" }, "email"},
		{"missing full name", func(f *RegisterForm) { f.FullName = "" }, "full_name"},
		{"short password", func(f *RegisterForm) { f.Password = "12345"; f.ConfirmPassword = "12345" }, "password"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "secret2" }, "confirm_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegister()
			tt.mutate(&f)
			err := Register(&f)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			fe, ok := AsErrors(err)
			require.True(t, ok, "expected field errors, got %v", err)
			assert.NotEmpty(t, fe.Field(tt.field))
			assert.Len(t, fe, 1)
		})
	}
}

func TestReview_ContentBoundary(t *testing.T) {
	sub := model.Submission{ClientName: "Bo", Title: "Great", Rating: model.DefaultRating}

	sub.Content = strings.Repeat("a", 19)
	fe, ok := AsErrors(Review(&sub))
	require.True(t, ok)
	assert.Contains(t, fe.Field("content"), "minimum 20 characters")

	sub.Content = strings.Repeat("a", 20)
	assert.NoError(t, Review(&sub))
}

func TestReview_OneErrorPerField(t *testing.T) {
	sub := model.Submission{Title: "Hi", Rating: 9}
	fe, ok := AsErrors(Review(&sub))
	require.True(t, ok)

	assert.Equal(t, "Name is required", fe.Field("client_name"))
	assert.Equal(t, "Title must be at least 5 characters", fe.Field("title"))
	assert.Equal(t, "Content is required", fe.Field("content"))
	assert.Equal(t, "Rating must be between 1 and 5", fe.Field("rating"))
	assert.Len(t, fe, 4)
}

func TestProject(t *testing.T) {
	in := model.ProjectInput{Name: "Site", ClientName: "Acme"}
	assert.NoError(t, Project(&in))

	in.ClientEmail = model.Optional("not-an-email")
	in.Status = "paused"
	fe, ok := AsErrors(Project(&in))
	require.True(t, ok)
	assert.Contains(t, fe, "client_email")
	assert.Contains(t, fe, "status")
}

func TestToken(t *testing.T) {
	assert.NoError(t, Token(&model.TokenRequest{ProjectID: "p1", ExpiresHours: 72}))

	fe, ok := AsErrors(Token(&model.TokenRequest{ExpiresHours: 1000}))
	require.True(t, ok)
	assert.Contains(t, fe, "project_id")
	assert.Contains(t, fe, "expires_hours")
}

func TestErrors_ErrorIsSorted(t *testing.T) {
	err := Errors{"title": "b", "content": "a"}
	assert.Equal(t, "content: a; title: b", err.Error())
}
