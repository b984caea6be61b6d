package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"trims and drops blanks", " web , ,ecommerce,  ", []string{"web", "ecommerce"}},
		{"single", "design", []string{"design"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.in))
		})
	}
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "☆☆☆☆☆", Stars(0))
	assert.Equal(t, "★★★★★", Stars(5))
}

func TestOptional(t *testing.T) {
	assert.Nil(t, Optional("   "))
	assert.Equal(t, "Acme", Deref(Optional(" Acme ")))
	assert.Equal(t, "", Deref(nil))
}

func TestInviteToken_Link(t *testing.T) {
	tok := &InviteToken{Token: "a b"}
	assert.Equal(t, "http://localhost:3000/review?token=a+b", tok.Link("http://localhost:3000/review"))

	tok.InviteURL = "https://reviews.example.com/review?token=xyz"
	assert.Equal(t, tok.InviteURL, tok.Link("http://ignored"))
}

func TestProject_InputRoundTrip(t *testing.T) {
	p := Project{Name: "Site", ClientName: "Ada", Tags: []string{"web"}, Status: ProjectCompleted, ClientEmail: Optional("ada@example.com")}
	in := p.Input()

	assert.Equal(t, "Site", in.Name)
	assert.Equal(t, ProjectCompleted, in.Status)
	assert.Equal(t, "ada@example.com", Deref(in.ClientEmail))
	assert.True(t, in.Status.Valid())
	assert.False(t, ProjectStatus("paused").Valid())
}
