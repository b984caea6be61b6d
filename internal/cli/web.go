package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/web"
	"github.com/spf13/cobra"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the public testimonial site and review form",
	Args:  cobra.NoArgs,
	RunE:  publicRun(runWeb),
}

var webAddr string

func init() {
	webCmd.Flags().StringVar(&webAddr, "addr", "", "Listen address (default from config web_addr)")
}

func runWeb(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	addr := webAddr
	if addr == "" {
		addr = appConfig.WebAddr
	}

	srv, err := web.New(a.client, appConfig)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()
	successColor.Fprintf(cmd.OutOrStdout(), "🌐 Serving on %s (backend %s)\n", addr, a.client.BaseURL())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down web front end")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
