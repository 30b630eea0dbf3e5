package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/ideathon-portal/internal/config"
	"github.com/jrsteele09/ideathon-portal/internal/logging"
	"github.com/jrsteele09/ideathon-portal/server"
	"github.com/jrsteele09/ideathon-portal/server/flowrepo"
	"github.com/jrsteele09/ideathon-portal/sessions"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionRepo, closeRepo, err := openSessionRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepo()

	flows := flowrepo.NewInMemoryRepo()
	go flows.Run(ctx, time.Minute, c.GetFlowIdleTimeout())

	srv, err := server.New(c, sessionRepo, flows)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	return shutdown(httpServer)
}

// openSessionRepo picks the session storage named by STORAGE.
func openSessionRepo(ctx context.Context, c config.Config) (sessions.Repo, func(), error) {
	switch c.GetStorageBackend() {
	case config.StorageMemory:
		return sessions.NewInMemoryRepo(), func() {}, nil
	case config.StorageSQLite:
		repo, err := sessions.NewSQLiteRepo(ctx, c.GetSQLitePath())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite sessions: %w", err)
		}
		log.Info().Str("path", c.GetSQLitePath()).Msg("Using SQLite session storage")
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.Err(err).Msg("closing session storage")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE %q", c.GetStorageBackend())
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
