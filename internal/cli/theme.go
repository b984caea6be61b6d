package cli

import (
	"context"
	"fmt"

	"github.com/existflow/kudos/internal/theme"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|system]",
	Short:     "Show or set the color theme",
	Long:      `Show the stored theme, or set it. "system" follows the terminal background.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(theme.Light), string(theme.Dark), string(theme.System)},
	RunE:      publicRun(runTheme),
}

func runTheme(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	th, err := a.openTheme(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		t, err := theme.ParseTheme(args[0])
		if err != nil {
			return err
		}
		if err := th.Set(ctx, t); err != nil {
			return fmt.Errorf("failed to save theme: %w", err)
		}
		successColor.Fprintf(out, "✅ Theme set to %s\n", t)
	}

	fmt.Fprintf(out, "Theme: %s (showing %s)\n", th.Theme(), th.Resolved())
	return nil
}
