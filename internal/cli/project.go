package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create, list, edit and delete the client projects testimonials are collected for.`,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE:    adminRun(runProjectList),
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show a project with its invites and testimonials",
	Args:  cobra.ExactArgs(1),
	RunE:  adminRun(runProjectShow),
}

var projectNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a project",
	Long: `Create a project. Name and client are prompted for when not given.

Examples:
  kudos project new --name "Shop redesign" --client "Ada Lovelace" --tags "web, ecommerce"`,
	Args: cobra.NoArgs,
	RunE: adminRun(runProjectNew),
}

var projectEditCmd = &cobra.Command{
	Use:   "edit [project-id]",
	Short: "Update a project; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  adminRun(runProjectEdit),
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a project with its testimonials and invites",
	Args:    cobra.ExactArgs(1),
	RunE:    adminRun(runProjectDelete),
}

var (
	projectList listFlags
	projectYes  bool

	projectName        string
	projectClient      string
	projectEmail       string
	projectCompany     string
	projectURL         string
	projectDescription string
	projectTags        string
	projectStatus      string
)

func init() {
	projectList.register(projectListCmd,
		[]string{listview.SortNewest, listview.SortName},
		[]string{string(model.ProjectActive), string(model.ProjectCompleted), string(model.ProjectArchived)},
		false)

	for _, c := range []*cobra.Command{projectNewCmd, projectEditCmd} {
		c.Flags().StringVar(&projectName, "name", "", "Project name")
		c.Flags().StringVar(&projectClient, "client", "", "Client name")
		c.Flags().StringVar(&projectEmail, "email", "", "Client email")
		c.Flags().StringVar(&projectCompany, "company", "", "Client company")
		c.Flags().StringVar(&projectURL, "url", "", "Project URL")
		c.Flags().StringVar(&projectDescription, "description", "", "Description")
		c.Flags().StringVar(&projectTags, "tags", "", "Comma separated tags")
		c.Flags().StringVar(&projectStatus, "status", "", "Status (active, completed, archived)")
	}
	projectDeleteCmd.Flags().BoolVarP(&projectYes, "yes", "y", false, "Skip confirmation")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectList(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	projects, err := a.client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	list := listview.Projects(appConfig.PageSizes.Projects)
	list.Replace(list.BeginLoad(), projects)
	if err := applyList(list, projectList); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintf(out, "Projects (%d)\n", list.Total())
	for _, p := range list.Visible() {
		printProjectLine(out, p)
	}
	printPager(out, list)
	return nil
}

func printProjectLine(out io.Writer, p model.Project) {
	reviews := mutedColor.Sprint("no reviews")
	if p.TestimonialCount > 0 {
		reviews = successColor.Sprintf("%d reviews", p.TestimonialCount)
	}
	fmt.Fprintf(out, "  %s  %-28s %-20s %-10s %s\n",
		mutedColor.Sprint(p.ID), truncate(p.Name, 28), truncate(p.ClientName, 20), p.Status, reviews)
}

func runProjectShow(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	p, err := a.client.GetProject(ctx, args[0])
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("project not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	out := cmd.OutOrStdout()
	headingColor.Fprintln(out, p.Name)
	fmt.Fprintf(out, "  ID:          %s\n", p.ID)
	fmt.Fprintf(out, "  Status:      %s\n", p.Status)
	fmt.Fprintf(out, "  Client:      %s\n", p.ClientName)
	fmt.Fprintf(out, "  Email:       %s\n", orDash(model.Deref(p.ClientEmail)))
	fmt.Fprintf(out, "  Company:     %s\n", orDash(model.Deref(p.ClientCompany)))
	fmt.Fprintf(out, "  URL:         %s\n", orDash(model.Deref(p.ProjectURL)))
	fmt.Fprintf(out, "  Tags:        %s\n", orDash(strings.Join(p.Tags, ", ")))
	fmt.Fprintf(out, "  Created:     %s\n", formatDate(p.CreatedAt))
	if d := model.Deref(p.Description); d != "" {
		fmt.Fprintf(out, "\n  %s\n", d)
	}

	tokens, err := a.client.ListProjectTokens(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to list invites: %w", err)
	}
	fmt.Fprintln(out)
	headingColor.Fprintf(out, "Invites (%d)\n", len(tokens))
	for _, t := range tokens {
		printTokenLine(out, t)
	}

	testimonials, err := a.client.ListTestimonials(ctx, api.TestimonialQuery{ProjectID: p.ID})
	if err != nil {
		return fmt.Errorf("failed to list testimonials: %w", err)
	}
	fmt.Fprintln(out)
	headingColor.Fprintf(out, "Testimonials (%d)\n", len(testimonials))
	for _, t := range testimonials {
		printTestimonialLine(out, t)
	}
	return nil
}

// applyProjectFlags copies the flags the user set onto in
func applyProjectFlags(cmd *cobra.Command, in *model.ProjectInput) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = strings.TrimSpace(projectName)
	}
	if flags.Changed("client") {
		in.ClientName = strings.TrimSpace(projectClient)
	}
	if flags.Changed("email") {
		in.ClientEmail = model.Optional(projectEmail)
	}
	if flags.Changed("company") {
		in.ClientCompany = model.Optional(projectCompany)
	}
	if flags.Changed("url") {
		in.ProjectURL = model.Optional(projectURL)
	}
	if flags.Changed("description") {
		in.Description = model.Optional(projectDescription)
	}
	if flags.Changed("tags") {
		in.Tags = model.ParseTags(projectTags)
	}
	if flags.Changed("status") {
		in.Status = model.ProjectStatus(strings.TrimSpace(projectStatus))
	}
}

func runProjectNew(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	in := model.ProjectInput{Tags: []string{}, Status: model.ProjectActive}
	applyProjectFlags(cmd, &in)

	p := newPrompter(cmd)
	var err error
	if in.Name == "" {
		if in.Name, err = p.ask("Project name", ""); err != nil {
			return err
		}
	}
	if in.ClientName == "" {
		if in.ClientName, err = p.ask("Client name", ""); err != nil {
			return err
		}
	}

	if err := validate.Project(&in); err != nil {
		reportInvalid(out, err)
		return errors.New("project not created")
	}

	created, err := a.client.CreateProject(ctx, in)
	if err != nil {
		if reportInvalid(out, err) {
			return errors.New("project not created")
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	successColor.Fprintf(out, "✅ Created project: %s (ID: %s)\n", created.Name, created.ID)
	return nil
}

func runProjectEdit(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	current, err := a.client.GetProject(ctx, args[0])
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("project not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	in := current.Input()
	applyProjectFlags(cmd, &in)
	if err := validate.Project(&in); err != nil {
		reportInvalid(out, err)
		return errors.New("project not updated")
	}

	updated, err := a.client.UpdateProject(ctx, current.ID, in)
	if err != nil {
		if reportInvalid(out, err) {
			return errors.New("project not updated")
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	successColor.Fprintf(out, "✅ Updated project: %s\n", updated.Name)
	return nil
}

func runProjectDelete(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	p, err := a.client.GetProject(ctx, args[0])
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("project not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	if appConfig.ConfirmDelete && !projectYes {
		fmt.Fprintf(out, "About to delete: %q (ID: %s) with its testimonials and invites\n", p.Name, p.ID)
		if !newPrompter(cmd).confirm("Are you sure?") {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	if err := a.client.DeleteProject(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	successColor.Fprintf(out, "🗑️  Deleted project: %s\n", p.Name)
	return nil
}
