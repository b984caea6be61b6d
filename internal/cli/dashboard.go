package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"stats"},
	Short:   "Show the admin dashboard summary",
	RunE:    adminRun(runDashboard),
}

func runDashboard(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	stats, err := a.client.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintln(out, "Dashboard")
	fmt.Fprintf(out, "  Projects:        %d\n", stats.TotalProjects)
	fmt.Fprintf(out, "  Testimonials:    %d (%d featured)\n", stats.TotalTestimonials, stats.FeaturedCount)
	fmt.Fprintf(out, "  Invite tokens:   %d (%d active)\n", stats.TotalTokens, stats.ActiveTokens)
	fmt.Fprintf(out, "  Average rating:  %.1f %s\n", stats.AverageRating, stars(int(stats.AverageRating+0.5)))

	if len(stats.RecentTestimonials) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	headingColor.Fprintln(out, "Recent testimonials")
	for _, t := range stats.RecentTestimonials {
		fmt.Fprintf(out, "  %s  %s  %-20s %s\n", formatDate(t.CreatedAt), stars(t.Rating), truncate(t.ClientName, 20), t.Title)
	}
	return nil
}
