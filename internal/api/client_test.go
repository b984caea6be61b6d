package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kudos/internal/model"
)

func newTestServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"detail":"Invalid credentials"}`, "Invalid credentials"},
		{"field list", `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email"},{"loc":["body","password"],"msg":"too short"}]}`, "email: value is not a valid email, password: too short"},
		{"numeric loc", `{"detail":[{"loc":["body","tags",0],"msg":"bad tag"}]}`, "0: bad tag"},
		{"single object", `{"detail":{"msg":"nope"}}`, "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDetail([]byte(tt.body))
			require.NotNil(t, d)
			assert.Equal(t, tt.want, d.Message())
		})
	}

	assert.Nil(t, ParseDetail([]byte(`not json`)))
	assert.Nil(t, ParseDetail([]byte(`{"error":"x"}`)))
}

func TestAPIError_FallsBackToStatusText(t *testing.T) {
	err := &APIError{Status: http.StatusBadGateway}
	assert.Equal(t, "Bad Gateway", err.Error())
	assert.Equal(t, "fallback", Message(nil, "fallback"))
	assert.Equal(t, "Bad Gateway", Message(err, "fallback"))
}

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, model.Admin{ID: "a1", Username: "ana"})
	})
	srv := newTestServer(t, mux)

	c := New(srv.URL+"/api/", WithTokenSource(func() string { return "secret" }))
	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", me.Username)
}

func TestClient_UnauthorizedHook(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
	})
	srv := newTestServer(t, mux)

	var calls atomic.Int32
	c := New(srv.URL+"/api", WithUnauthorizedHandler(func() { calls.Add(1) }))

	_, err := c.Dashboard(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Login(context.Background(), model.Credentials{Username: "ana", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", Message(err, ""))
	assert.Equal(t, int32(1), calls.Load(), "login failures must not trigger the hook")
}

func TestClient_PublicRequestsAreAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tokens/validate/{token}", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "abc 123", r.PathValue("token"))
		writeJSON(w, http.StatusOK, model.TokenValidation{Valid: true, Project: &model.Project{ID: "p1", Name: "Site"}})
	})
	srv := newTestServer(t, mux)

	c := New(srv.URL+"/api", WithTokenSource(func() string { return "secret" }))
	res, err := c.ValidateToken(context.Background(), "abc 123")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "Site", res.Project.Name)
}

func TestClient_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Project not found"})
	})
	srv := newTestServer(t, mux)

	_, err := New(srv.URL + "/api").GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Project not found", Message(err, ""))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).PublicStats(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, MsgNetwork, Message(err, "fallback"))
	assert.NotContains(t, Message(err, "fallback"), url)
}

func TestClient_Timeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/public/stats", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	srv := newTestServer(t, mux)

	_, err := New(srv.URL+"/api", WithTimeout(20*time.Millisecond)).PublicStats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestClient_ToggleAndQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/testimonials/{id}/toggle-featured", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"is_featured": true})
	})
	mux.HandleFunc("GET /api/testimonials/{$}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("project_id"))
		assert.Equal(t, "true", r.URL.Query().Get("featured_only"))
		writeJSON(w, http.StatusOK, []model.Testimonial{{ID: "t1", Rating: 4}})
	})
	mux.HandleFunc("POST /api/tokens/generate", func(w http.ResponseWriter, r *http.Request) {
		var req model.TokenRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.DefaultExpiresHours, req.ExpiresHours)
		writeJSON(w, http.StatusOK, model.InviteToken{ID: "k1", ProjectID: req.ProjectID, Status: model.TokenActive})
	})
	mux.HandleFunc("DELETE /api/tokens/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := newTestServer(t, mux)
	c := New(srv.URL + "/api")
	ctx := context.Background()

	featured, err := c.ToggleFeatured(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, featured)

	list, err := c.ListTestimonials(ctx, TestimonialQuery{ProjectID: "p1", FeaturedOnly: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	tok, err := c.GenerateToken(ctx, model.TokenRequest{ProjectID: "p1"})
	require.NoError(t, err)
	assert.True(t, tok.IsActive())

	assert.NoError(t, c.RevokeToken(ctx, "k1"))
}

func TestClient_FieldErrorsOnSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/testimonials/submit", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","content"],"msg":"ensure this value has at least 20 characters"}]}`))
	})
	srv := newTestServer(t, mux)

	_, err := New(srv.URL + "/api").SubmitTestimonial(context.Background(), model.Submission{Token: "t"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	fields, ok := apiErr.Detail.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "content", fields[0].Field)
	assert.Equal(t, "content: ensure this value has at least 20 characters", apiErr.Error())
}
