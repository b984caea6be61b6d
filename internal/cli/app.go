package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/db"
	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/session"
	"github.com/existflow/kudos/internal/theme"
	"github.com/spf13/cobra"
)

// app bundles the stores and API client a command works with
type app struct {
	store   *db.DB
	client  *api.Client
	session *session.Store
	theme   *theme.Store
}

// openApp opens local storage, builds the API client and restores the stored session.
// The session is hydrated but not validated; admin commands go through session.Guard.
func openApp(ctx context.Context) (*app, error) {
	store, err := db.OpenDefault()
	if err != nil {
		logger.Error("Failed to open database", logger.Err(err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	client := api.New(appConfig.APIURL, api.WithTimeout(appConfig.RequestTimeout))
	sess := session.New(store, client)
	client.SetTokenSource(sess.Token)
	client.SetUnauthorizedHandler(sess.HandleUnauthorized)

	if err := sess.Hydrate(ctx); err != nil {
		logger.Warn("Failed to restore session", logger.Err(err))
	}

	return &app{store: store, client: client, session: sess}, nil
}

// openTheme initializes the theme store against the terminal background
func (a *app) openTheme(ctx context.Context) (*theme.Store, error) {
	if a.theme != nil {
		return a.theme, nil
	}
	th := theme.New(a.store, theme.NewTerminalPreference())
	if err := th.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}
	a.theme = th
	return th, nil
}

// Close releases the theme subscription and the database
func (a *app) Close() {
	if a.theme != nil {
		a.theme.Close()
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close database", logger.Err(err))
	}
}

var errNotLoggedIn = errors.New("not logged in, run 'kudos auth login' first")

// publicRun wraps a command that talks to the backend anonymously
func publicRun(run func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, cmd, a, args)
	}
}

// adminRun wraps a command that needs a validated admin session
func adminRun(run func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return publicRun(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		err := session.Guard(ctx, a.session, func() error {
			return run(ctx, cmd, a, args)
		})
		switch {
		case errors.Is(err, session.ErrLoginRequired):
			return errNotLoggedIn
		case errors.Is(err, api.ErrUnauthorized):
			return errors.New("session expired, run 'kudos auth login' to sign in again")
		}
		return err
	})
}
