package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:     "token",
	Aliases: []string{"invite"},
	Short:   "Manage review invites",
	Long:    `Generate single-use review invites for a project, list and revoke them.`,
}

var tokenListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List invite tokens",
	RunE:    adminRun(runTokenList),
}

var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an invite link for a project",
	Long: `Generate a single-use invite link for a project.

Examples:
  kudos token generate --project 3f2a... --hours 168 --note "sent to Ada"`,
	Args: cobra.NoArgs,
	RunE: adminRun(runTokenGenerate),
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke [token-id]",
	Short: "Revoke an active invite",
	Args:  cobra.ExactArgs(1),
	RunE:  adminRun(runTokenRevoke),
}

var tokenValidateCmd = &cobra.Command{
	Use:   "validate [token]",
	Short: "Check whether a raw invite token can still be used",
	Args:  cobra.ExactArgs(1),
	RunE:  publicRun(runTokenValidate),
}

var (
	tokenList    listFlags
	tokenProject string
	tokenHours   int
	tokenNote    string
)

func init() {
	tokenList.register(tokenListCmd,
		[]string{listview.SortNewest, listview.SortOldest},
		[]string{string(model.TokenActive), string(model.TokenUsed), string(model.TokenExpired), string(model.TokenRevoked)},
		false)
	tokenListCmd.Flags().StringVar(&tokenProject, "project", "", "Only invites of this project")

	tokenGenerateCmd.Flags().StringVar(&tokenProject, "project", "", "Project ID (required)")
	tokenGenerateCmd.Flags().IntVar(&tokenHours, "hours", model.DefaultExpiresHours, "Hours until the invite expires")
	tokenGenerateCmd.Flags().StringVar(&tokenNote, "note", "", "Private note, e.g. who it was sent to")
	_ = tokenGenerateCmd.MarkFlagRequired("project")

	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenGenerateCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
	tokenCmd.AddCommand(tokenValidateCmd)
}

func runTokenList(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	var (
		tokens []model.InviteToken
		err    error
	)
	if tokenProject != "" {
		tokens, err = a.client.ListProjectTokens(ctx, tokenProject)
	} else {
		tokens, err = a.client.ListTokens(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list invites: %w", err)
	}

	list := listview.Tokens(appConfig.PageSizes.Tokens)
	list.Replace(list.BeginLoad(), tokens)
	if err := applyList(list, tokenList); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintf(out, "Invites (%d)\n", list.Total())
	for _, t := range list.Visible() {
		printTokenLine(out, t)
	}
	printPager(out, list)
	return nil
}

func tokenStatus(s model.TokenStatus) string {
	switch s {
	case model.TokenActive:
		return successColor.Sprint(s)
	case model.TokenUsed:
		return headingColor.Sprint(s)
	case model.TokenRevoked:
		return errorColor.Sprint(s)
	default:
		return mutedColor.Sprint(s)
	}
}

func printTokenLine(out io.Writer, t model.InviteToken) {
	fmt.Fprintf(out, "  %s  %-24s %-8s expires %s  %s\n",
		mutedColor.Sprint(t.ID), truncate(t.ProjectName, 24), tokenStatus(t.Status),
		formatDate(t.ExpiresAt), truncate(model.Deref(t.Note), 30))
}

func runTokenGenerate(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	req := model.TokenRequest{
		ProjectID:    tokenProject,
		ExpiresHours: tokenHours,
		Note:         model.Optional(tokenNote),
	}
	if err := validate.Token(&req); err != nil {
		reportInvalid(out, err)
		return errors.New("invite not generated")
	}

	token, err := a.client.GenerateToken(ctx, req)
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("project not found: %s", tokenProject)
	}
	if err != nil {
		return fmt.Errorf("failed to generate invite: %w", err)
	}

	successColor.Fprintf(out, "✅ Invite created for %s, expires %s\n", orDash(token.ProjectName), formatDate(token.ExpiresAt))
	fmt.Fprintf(out, "🔗 %s\n", token.Link(appConfig.ReviewBaseURL))
	return nil
}

func runTokenRevoke(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	err := a.client.RevokeToken(ctx, args[0])
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("invite not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to revoke invite: %s", api.Message(err, "request failed"))
	}
	successColor.Fprintln(cmd.OutOrStdout(), "✅ Invite revoked")
	return nil
}

func runTokenValidate(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	v, err := a.client.ValidateToken(ctx, args[0])
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("failed to validate invite: %w", err)
	}
	if err != nil || !v.Valid {
		warnColor.Fprintln(out, "❌ Token is invalid or has expired.")
		return nil
	}

	name := "-"
	if v.Project != nil {
		name = v.Project.Name
	}
	successColor.Fprintf(out, "✅ Token is valid for project %s\n", name)
	return nil
}
