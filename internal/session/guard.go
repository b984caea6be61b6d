package session

import (
	"context"
	"errors"
)

// ErrLoginRequired is returned by Guard when there is no valid session
var ErrLoginRequired = errors.New("login required")

// Guard runs protected only after the held token has been validated
func Guard(ctx context.Context, s *Store, protected func() error) error {
	if !s.CheckAuth(ctx) {
		return ErrLoginRequired
	}
	return protected()
}
