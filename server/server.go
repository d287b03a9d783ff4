package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/easyfin/easyfin/config"
	"golang.org/x/sync/errgroup"
)

// Server runs the HTTP listener until a termination signal arrives. SIGHUP
// calls the reload function instead, which swaps the configuration served
// by the provider.
type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	reloadFunc     func() error

	// closers run in order once the listener has stopped.
	closers []func() error

	// exitFunc is os.Exit outside tests.
	exitFunc func(int)
}

func NewServer(provider *config.Provider, h http.Handler, logger *slog.Logger, reloadFunc func() error) *Server {
	return &Server{
		configProvider: provider,
		handler:        h,
		logger:         logger,
		reloadFunc:     reloadFunc,
		exitFunc:       os.Exit,
	}
}

// AddCloser registers fn to run during shutdown, after in flight requests
// have finished. A failing closer makes the process exit with 1.
func (s *Server) AddCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Handler is the root handler, prerouter middlewares included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run() {
	cfg := s.configProvider.Get().Server

	s.logger.Info("Server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ListenAndServe error", "err", err)
			serverError <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGHUP,  // reload configuration
		syscall.SIGINT,  // Ctrl+c
		syscall.SIGTERM, // systemd, docker stop
		syscall.SIGQUIT,
	)
	defer signal.Stop(sigChan)

	exitCode := 0
wait:
	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				s.logger.Info("Received SIGHUP - reloading configuration")
				if err := s.reloadFunc(); err != nil {
					s.logger.Error("Configuration reload failed, keeping current configuration", "err", err)
				} else {
					s.logger.Info("Configuration reloaded")
				}
				continue
			}
			s.logger.Info("Received shutdown signal - gracefully shutting down", "signal", sig.String())
			break wait
		case err := <-serverError:
			s.logger.Error("Server error - initiating shutdown", "err", err)
			exitCode = 1
			break wait
		}
	}

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), s.configProvider.Get().Server.ShutdownGracefulTimeout.Duration)
	defer cancelShutdown()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)
	shutdownGroup.Go(func() error {
		s.logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		s.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	if err := shutdownGroup.Wait(); err != nil {
		s.logger.Error("Error during shutdown", "err", err)
		exitCode = 1
	}

	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.logger.Error("Error closing resource", "err", err)
			exitCode = 1
		}
	}

	if exitCode == 0 {
		s.logger.Info("All systems stopped gracefully")
	}
	s.exitFunc(exitCode)
}
