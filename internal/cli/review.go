package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/existflow/kudos/internal/invite"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Write a testimonial with an invite token",
	Long: `Write a testimonial as an invited client. The token comes from the invite link.

Examples:
  kudos review --token 9c1b2f...`,
	Args: cobra.NoArgs,
	RunE: publicRun(runReview),
}

var reviewToken string

func init() {
	reviewCmd.Flags().StringVar(&reviewToken, "token", "", "Invite token")
}

var reviewFields = []struct {
	name  string
	label string
}{
	{invite.FieldName, "Your name"},
	{invite.FieldRole, "Your role (optional)"},
	{invite.FieldCompany, "Company (optional)"},
	{invite.FieldRating, "Rating 1-5"},
	{invite.FieldTitle, "Title"},
	{invite.FieldContent, "Your testimonial"},
}

func runReview(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	flow := invite.NewFlow(a.client)

	fmt.Fprintln(out, "🔄 Checking invite...")
	if flow.Start(ctx, reviewToken) == invite.Invalid {
		return errors.New(flow.Message())
	}

	if p := flow.Project(); p != nil {
		headingColor.Fprintf(out, "Review for %s\n", p.Name)
	}
	if msg := flow.Message(); msg != "" {
		mutedColor.Fprintln(out, msg)
	}

	p := newPrompter(cmd)
	pending := make([]string, 0, len(reviewFields))
	for _, f := range reviewFields {
		pending = append(pending, f.name)
	}

	for {
		for _, name := range pending {
			if err := askReviewField(p, flow, name); err != nil {
				return err
			}
		}

		err := flow.Submit(ctx)
		if err == nil {
			break
		}
		pending = pending[:0]

		errs := flow.Errors()
		if len(errs) == 0 {
			// The answers are kept, so a retry only resends them
			errorColor.Fprintf(out, "❌ %s\n", flow.LastError())
			if !p.confirmYes("Retry?") {
				return errors.New(flow.LastError())
			}
			continue
		}

		reportInvalid(out, errs)
		for _, f := range reviewFields {
			if errs.Field(f.name) != "" {
				pending = append(pending, f.name)
			}
		}
	}

	successColor.Fprintln(out, "✅ Thank you! Your testimonial has been submitted.")
	if t := flow.Result(); t != nil {
		fmt.Fprintf(out, "   %s %s\n", stars(t.Rating), t.Title)
	}
	return nil
}

func askReviewField(p *prompter, flow *invite.Flow, name string) error {
	label := name
	for _, f := range reviewFields {
		if f.name == name {
			label = f.label
		}
	}

	// Only the rating has a default; invalid text answers are asked for again from scratch
	def := ""
	if name == invite.FieldRating {
		def = strconv.Itoa(flow.Form().Rating)
	}

	for {
		value, err := p.ask(label, def)
		if err != nil {
			return err
		}
		if err := flow.SetField(name, value); err != nil {
			errorColor.Fprintf(p.out, "  %v\n", err)
			continue
		}
		return nil
	}
}
