package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/azulbi/go-auth-gateway/audit"
	"github.com/azulbi/go-auth-gateway/auth"
	"github.com/azulbi/go-auth-gateway/internal/config"
	"github.com/azulbi/go-auth-gateway/provider"
	"github.com/azulbi/go-auth-gateway/ratelimit"
	"github.com/azulbi/go-auth-gateway/secondary"
	"github.com/azulbi/go-auth-gateway/server"
	"github.com/azulbi/go-auth-gateway/sessions"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	db, closeDB, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer closeDB()

	srv, err := buildServer(c, db)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildServer wires the stores, providers and orchestrators for both
// audiences.
func buildServer(c config.Config, db *sql.DB) (*server.Server, error) {
	sessionStore, auditLog, err := buildStorage(db)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	standardProvider, err := provider.NewOIDCProvider(ctx, provider.Config{
		IssuerURL:    c.GetStandardIssuerURL(),
		ClientID:     c.GetStandardClientID(),
		ClientSecret: c.GetStandardClientSecret(),
		CallTimeout:  c.GetProviderTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("standard provider: %w", err)
	}

	privilegedProvider, err := provider.NewOIDCProvider(ctx, provider.Config{
		IssuerURL:    c.GetPrivilegedIssuerURL(),
		ClientID:     c.GetPrivilegedClientID(),
		ClientSecret: c.GetPrivilegedClientSecret(),
		CallTimeout:  c.GetProviderTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("privileged provider: %w", err)
	}

	acquirer := secondary.NewHTTPAcquirer(c.GetSecondaryLoginURL(), c.GetSecondaryOrigin(), c.GetSecondaryTimeout())

	options := []auth.ServiceOption{
		auth.WithGracePeriod(c.GetGracePeriod()),
		auth.WithRotateRefreshTokens(c.GetRotateRefreshTokens()),
		auth.WithSecondaryTimeout(c.GetSecondaryTimeout()),
	}

	standard, err := auth.NewService(auth.Deps{
		Sessions:  sessionStore,
		Audit:     auditLog,
		Provider:  standardProvider,
		Secondary: acquirer,
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("standard orchestrator: %w", err)
	}

	privileged, err := auth.NewService(auth.Deps{
		Sessions:  sessionStore,
		Audit:     auditLog,
		Provider:  privilegedProvider,
		Secondary: acquirer,
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("privileged orchestrator: %w", err)
	}

	limiter := ratelimit.New(c.GetRateLimitMaxAttempts(), c.GetRateLimitWindow())

	return server.New(c, server.Orchestrators{Standard: standard, Privileged: privileged}, limiter)
}

// buildStorage returns SQLite-backed storage when a database handle exists,
// in-memory storage otherwise.
func buildStorage(db *sql.DB) (sessions.Store, audit.Log, error) {
	if db == nil {
		zlog.Info().Msg("No database path configured, using in-memory storage")
		return sessions.NewInMemoryStore(), audit.NewInMemoryLog(), nil
	}

	sessionStore, err := sessions.NewSQLiteStore(db)
	if err != nil {
		return nil, nil, err
	}
	auditLog, err := audit.NewSQLiteLog(db)
	if err != nil {
		return nil, nil, err
	}
	return sessionStore, auditLog, nil
}

func openDatabase(c config.Config) (*sql.DB, func(), error) {
	path := c.GetDatabasePath()
	if path == "" {
		return nil, func() {}, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	zlog.Info().Str("path", path).Msg("Database opened")
	return db, func() { _ = db.Close() }, nil
}

func configureLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
