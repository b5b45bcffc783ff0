package cmd

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/isometry/messaging-webhook-app/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func cmdService() *cobra.Command {
	return &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		Short:   "Serve the webhook over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd)
		},
	}
}

func runService(cmd *cobra.Command) error {
	logger = logger.With("mode", config.ModeService)
	logger.Info("spawning...")

	rtm, err := setup(cmd)
	if err != nil {
		return err
	}

	logger.Debug("creating HTTP server...")
	s := &http.Server{
		Handler:           rtm.HTTPHandler(),
		Addr:              net.JoinHostPort(cfg.Service.Addr, strconv.Itoa(cfg.ListenPort())),
		ReadHeaderTimeout: cfg.Service.Timeout,
		WriteTimeout:      cfg.Service.Timeout,
		ReadTimeout:       cfg.Service.Timeout,
		IdleTimeout:       cfg.Service.Timeout,
	}

	return serve(cmd.Context(), s)
}

// serve runs the server until it fails or the context is cancelled by a termination signal,
// then drains in-flight requests.
func serve(ctx context.Context, s *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.Addr)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("serving...", "address", listener.Addr().String(), "webhookPath", cfg.Webhook.Path, "timeout", cfg.Service.Timeout.String())
		if err := s.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.Timeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return s.Close()
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
