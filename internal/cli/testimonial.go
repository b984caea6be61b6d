package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/model"
	"github.com/spf13/cobra"
)

var testimonialCmd = &cobra.Command{
	Use:     "testimonial",
	Aliases: []string{"t"},
	Short:   "Curate testimonials",
	Long:    `List, inspect, feature, publish and delete the testimonials clients submitted.`,
}

var testimonialListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List testimonials",
	RunE:    adminRun(runTestimonialList),
}

var testimonialShowCmd = &cobra.Command{
	Use:   "show [testimonial-id]",
	Short: "Show a testimonial",
	Args:  cobra.ExactArgs(1),
	RunE:  adminRun(runTestimonialShow),
}

var testimonialFeatureCmd = &cobra.Command{
	Use:   "feature [testimonial-id]",
	Short: "Toggle whether a testimonial is featured",
	Args:  cobra.ExactArgs(1),
	RunE:  adminRun(runTestimonialFeature),
}

var testimonialPublishCmd = &cobra.Command{
	Use:   "publish [testimonial-id]",
	Short: "Toggle whether a testimonial is published",
	Args:  cobra.ExactArgs(1),
	RunE:  adminRun(runTestimonialPublish),
}

var testimonialDeleteCmd = &cobra.Command{
	Use:     "delete [testimonial-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a testimonial",
	Args:    cobra.ExactArgs(1),
	RunE:    adminRun(runTestimonialDelete),
}

var (
	testimonialList     listFlags
	testimonialProject  string
	testimonialFeatured bool
	testimonialYes      bool
)

func init() {
	testimonialList.register(testimonialListCmd,
		[]string{listview.SortNewest, listview.SortOldest, listview.SortHighest, listview.SortLowest},
		[]string{listview.StatusFeatured, listview.StatusPublished, listview.StatusUnpublished},
		true)
	testimonialListCmd.Flags().StringVar(&testimonialProject, "project", "", "Only testimonials of this project")
	testimonialListCmd.Flags().BoolVar(&testimonialFeatured, "featured", false, "Only featured testimonials (filtered by the backend)")
	testimonialDeleteCmd.Flags().BoolVarP(&testimonialYes, "yes", "y", false, "Skip confirmation")

	testimonialCmd.AddCommand(testimonialListCmd)
	testimonialCmd.AddCommand(testimonialShowCmd)
	testimonialCmd.AddCommand(testimonialFeatureCmd)
	testimonialCmd.AddCommand(testimonialPublishCmd)
	testimonialCmd.AddCommand(testimonialDeleteCmd)
}

func runTestimonialList(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	items, err := a.client.ListTestimonials(ctx, api.TestimonialQuery{
		ProjectID:    testimonialProject,
		FeaturedOnly: testimonialFeatured,
	})
	if err != nil {
		return fmt.Errorf("failed to list testimonials: %w", err)
	}

	list := listview.AdminTestimonials(appConfig.PageSizes.Testimonials)
	list.Replace(list.BeginLoad(), items)
	if err := applyList(list, testimonialList); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintf(out, "Testimonials (%d)\n", list.Total())
	for _, t := range list.Visible() {
		printTestimonialLine(out, t)
	}
	printPager(out, list)
	return nil
}

func testimonialFlags(t model.Testimonial) string {
	s := ""
	if t.IsFeatured {
		s += starColor.Sprint("★ featured ")
	}
	if t.IsPublished {
		s += successColor.Sprint("published")
	} else {
		s += mutedColor.Sprint("draft")
	}
	return s
}

func printTestimonialLine(out io.Writer, t model.Testimonial) {
	fmt.Fprintf(out, "  %s  %s  %-20s %-32s %s\n",
		mutedColor.Sprint(t.ID), stars(t.Rating), truncate(t.ClientName, 20), truncate(t.Title, 32), testimonialFlags(t))
}

func loadTestimonial(ctx context.Context, a *app, id string) (*model.Testimonial, error) {
	t, err := a.client.GetTestimonial(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return nil, fmt.Errorf("testimonial not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load testimonial: %w", err)
	}
	return t, nil
}

func runTestimonialShow(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	t, err := loadTestimonial(ctx, a, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintln(out, t.Title)
	fmt.Fprintf(out, "  %s  %s\n", stars(t.Rating), testimonialFlags(*t))
	fmt.Fprintf(out, "  From:    %s\n", t.ClientName)
	fmt.Fprintf(out, "  Role:    %s\n", orDash(model.Deref(t.ClientRole)))
	fmt.Fprintf(out, "  Company: %s\n", orDash(model.Deref(t.ClientCompany)))
	fmt.Fprintf(out, "  Project: %s\n", orDash(t.ProjectName))
	fmt.Fprintf(out, "  Date:    %s\n", formatDate(t.CreatedAt))
	fmt.Fprintf(out, "\n%s\n", t.Content)
	return nil
}

func runTestimonialFeature(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	featured, err := a.client.ToggleFeatured(ctx, args[0])
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("testimonial not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to update testimonial: %w", err)
	}
	if featured {
		successColor.Fprintln(cmd.OutOrStdout(), "⭐ Testimonial is now featured")
	} else {
		successColor.Fprintln(cmd.OutOrStdout(), "Testimonial is no longer featured")
	}
	return nil
}

func runTestimonialPublish(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	published, err := a.client.TogglePublished(ctx, args[0])
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("testimonial not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to update testimonial: %w", err)
	}
	if published {
		successColor.Fprintln(cmd.OutOrStdout(), "✅ Testimonial is now published")
	} else {
		successColor.Fprintln(cmd.OutOrStdout(), "Testimonial is now unpublished")
	}
	return nil
}

func runTestimonialDelete(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	t, err := loadTestimonial(ctx, a, args[0])
	if err != nil {
		return err
	}

	if appConfig.ConfirmDelete && !testimonialYes {
		fmt.Fprintf(out, "About to delete: %q by %s\n", t.Title, t.ClientName)
		if !newPrompter(cmd).confirm("Are you sure?") {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	if err := a.client.DeleteTestimonial(ctx, t.ID); err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	successColor.Fprintf(out, "🗑️  Deleted testimonial: %s\n", t.Title)
	return nil
}
