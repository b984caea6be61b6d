package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the admin session",
	Long:  `Sign in to the testimonial backend as an admin, create an admin account, or sign out.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an admin",
	RunE:  publicRun(runLogin),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new admin account and sign in",
	RunE:  publicRun(runRegister),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  publicRun(runLogout),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	RunE:  publicRun(runStatus),
}

var loginUsername string

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
}

func runLogin(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd)

	username := loginUsername
	if username == "" {
		var err error
		if username, err = p.ask("Username", ""); err != nil {
			return err
		}
	}
	password, err := p.password("Password")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "🔄 Logging in...")
	admin, err := a.session.Login(ctx, model.Credentials{Username: username, Password: password})
	if err != nil {
		if reportInvalid(out, err) {
			return errors.New("login failed")
		}
		return errors.New(api.Message(err, "Login failed"))
	}

	successColor.Fprintf(out, "✅ Logged in as %s\n", admin.Username)
	return nil
}

func runRegister(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd)

	var form validate.RegisterForm
	var err error
	if form.Username, err = p.ask("Username", ""); err != nil {
		return err
	}
	if form.Email, err = p.ask("Email", ""); err != nil {
		return err
	}
	if form.FullName, err = p.ask("Full name", ""); err != nil {
		return err
	}
	if form.Password, err = p.password("Password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = p.password("Confirm password"); err != nil {
		return err
	}

	fmt.Fprintln(out, "🔄 Creating account...")
	admin, err := a.session.Register(ctx, form)
	if err != nil {
		if reportInvalid(out, err) {
			return errors.New("registration failed")
		}
		return errors.New(api.Message(err, "Registration failed"))
	}

	successColor.Fprintf(out, "✅ Account created! Logged in as %s\n", admin.Username)
	return nil
}

func runLogout(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	a.session.Logout()
	successColor.Fprintln(cmd.OutOrStdout(), "✅ Logged out")
	return nil
}

func runStatus(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()

	if a.session.Token() == "" {
		warnColor.Fprintln(out, "Not logged in")
		return nil
	}
	if !a.session.CheckAuth(ctx) {
		warnColor.Fprintln(out, "Stored session is no longer valid, run 'kudos auth login'")
		return nil
	}

	state := a.session.State()
	headingColor.Fprintln(out, "Signed in")
	fmt.Fprintf(out, "  User:    %s\n", state.Admin.Username)
	fmt.Fprintf(out, "  Name:    %s\n", orDash(state.Admin.FullName))
	fmt.Fprintf(out, "  Email:   %s\n", orDash(state.Admin.Email))
	fmt.Fprintf(out, "  Backend: %s\n", a.client.BaseURL())
	if exp, ok := a.session.Expiry(); ok {
		fmt.Fprintf(out, "  Expires: %s (in %s)\n", exp.Local().Format(time.DateTime), time.Until(exp).Round(time.Minute))
	}
	return nil
}
