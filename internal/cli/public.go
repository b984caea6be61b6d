package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/model"
	"github.com/spf13/cobra"
)

var publicCmd = &cobra.Command{
	Use:   "public",
	Short: "Browse what visitors of the public site see",
}

var publicTestimonialsCmd = &cobra.Command{
	Use:   "testimonials",
	Short: "List published testimonials",
	Args:  cobra.NoArgs,
	RunE:  publicRun(runPublicTestimonials),
}

var publicFeaturedCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured testimonials",
	Args:  cobra.NoArgs,
	RunE:  publicRun(runPublicFeatured),
}

var publicProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects shown on the public site",
	Args:  cobra.NoArgs,
	RunE:  publicRun(runPublicProjects),
}

var publicStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show public rating statistics",
	Args:  cobra.NoArgs,
	RunE:  publicRun(runPublicStats),
}

var (
	publicList     listFlags
	publicFeatured bool
	publicLimit    int
)

func init() {
	publicList.register(publicTestimonialsCmd,
		[]string{listview.SortNewest, listview.SortOldest, listview.SortHighest, listview.SortLowest},
		nil, true)
	publicTestimonialsCmd.Flags().BoolVar(&publicFeatured, "featured", false, "Only featured testimonials")
	publicTestimonialsCmd.Flags().IntVar(&publicLimit, "limit", 0, "Maximum number fetched from the backend")
	publicFeaturedCmd.Flags().IntVar(&publicLimit, "limit", 6, "Maximum number of testimonials")

	publicCmd.AddCommand(publicTestimonialsCmd)
	publicCmd.AddCommand(publicFeaturedCmd)
	publicCmd.AddCommand(publicProjectsCmd)
	publicCmd.AddCommand(publicStatsCmd)
}

func runPublicTestimonials(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	items, err := a.client.PublicTestimonials(ctx, publicFeatured, publicLimit)
	if err != nil {
		return fmt.Errorf("failed to load testimonials: %w", err)
	}

	list := listview.PublicTestimonials(appConfig.PageSizes.Public)
	list.Replace(list.BeginLoad(), items)
	if err := applyList(list, publicList); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintf(out, "What clients say (%d)\n", list.Total())
	for _, t := range list.Visible() {
		printTestimonialCard(out, t)
	}
	printPager(out, list)
	return nil
}

func runPublicFeatured(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	items, err := a.client.FeaturedTestimonials(ctx, publicLimit)
	if err != nil {
		return fmt.Errorf("failed to load featured testimonials: %w", err)
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintf(out, "Featured (%d)\n", len(items))
	for _, t := range items {
		printTestimonialCard(out, t)
	}
	return nil
}

func printTestimonialCard(out io.Writer, t model.Testimonial) {
	fmt.Fprintf(out, "\n  %s  %s\n", stars(t.Rating), headingColor.Sprint(t.Title))
	fmt.Fprintf(out, "  %s\n", t.Content)

	who := []string{t.ClientName}
	if role := model.Deref(t.ClientRole); role != "" {
		who = append(who, role)
	}
	if company := model.Deref(t.ClientCompany); company != "" {
		who = append(who, company)
	}
	mutedColor.Fprintf(out, "  - %s\n", strings.Join(who, ", "))
}

func runPublicProjects(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	projects, err := a.client.PublicProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintf(out, "Projects (%d)\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(out, "  %-28s %-24s %d testimonials\n",
			truncate(p.Name, 28), truncate(strings.Join(p.Tags, ", "), 24), len(p.Testimonials))
	}
	return nil
}

func runPublicStats(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	stats, err := a.client.PublicStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintln(out, "Statistics")
	fmt.Fprintf(out, "  Projects:      %d\n", stats.TotalProjects)
	fmt.Fprintf(out, "  Testimonials:  %d\n", stats.TotalTestimonials)
	fmt.Fprintf(out, "  Average:       %.1f\n", stats.AverageRating)
	fmt.Fprintf(out, "  Satisfaction:  %.0f%%\n", stats.SatisfactionRate)

	if len(stats.RatingDistribution) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	for r := model.MaxRating; r >= model.MinRating; r-- {
		n := stats.RatingDistribution[strconv.Itoa(r)]
		fmt.Fprintf(out, "  %s %s %d\n", stars(r), strings.Repeat("█", bar(n, stats.TotalTestimonials)), n)
	}
	return nil
}

// bar scales n out of total to at most 20 cells
func bar(n, total int) int {
	if total <= 0 {
		return 0
	}
	return n * 20 / total
}
