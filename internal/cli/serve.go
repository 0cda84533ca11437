package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/chatkeep/internal/httpapi"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: "Serve the chatkeep HTTP API until interrupted. A .env file in the\n" +
			"working directory is loaded first; variables already set win.",
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().String("host", "", "listen host (config http.host)")
	cmd.Flags().Int("port", 0, "listen port (config http.port)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	a.flags.verbose = true
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.v.BindPFlag(cfgKeyHTTPHost, cmd.Flags().Lookup("host")); err != nil {
		return sysError("bind flag", err)
	}
	if err := s.v.BindPFlag(cfgKeyHTTPPort, cmd.Flags().Lookup("port")); err != nil {
		return sysError("bind flag", err)
	}
	cfg := &httpapi.Config{Host: s.v.GetString(cfgKeyHTTPHost), Port: s.v.GetInt(cfgKeyHTTPPort)}

	srv, err := httpapi.NewServer(s.mgr, s.log, s.metrics, cfg)
	if err != nil {
		return sysError("create server", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, srv, s)
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *httpapi.Server, s *session) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		s.log.Error(context.Background(), "server stopped", zap.Error(err))
		return sysError("serve", err)
	}
	return nil
}
