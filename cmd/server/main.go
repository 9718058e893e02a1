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
	"github.com/jrsteele09/csv-sheet-sync/credentials"
	"github.com/jrsteele09/csv-sheet-sync/internal/config"
	"github.com/jrsteele09/csv-sheet-sync/server"
	"github.com/jrsteele09/csv-sheet-sync/spreadsheets"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
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
	setupLogging(c.GetEnv())
	if err := config.Validate(c); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	displayAppname(c.GetAppName())
	log.Info().Str("env", c.GetEnv()).Str("baseURL", c.GetBaseURL()).Msg("starting")

	ctx := context.Background()
	store, closeStore, err := credentialStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	broker := credentials.NewBroker(ctx, credentials.Options{
		ClientID:     c.GetGoogleClientID(),
		ClientSecret: c.GetGoogleClientSecret(),
		RedirectURL:  c.GetGoogleRedirectURI(),
	})

	handler, err := server.New(c, server.Deps{
		Broker:       broker,
		Spreadsheets: spreadsheets.NewClient(spreadsheets.Config{}),
		Store:        store,
	})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// credentialStore builds the configured store. The cookie mode has none and
// keeps credentials inside the session.
func credentialStore(ctx context.Context, c config.Config) (credentials.Store, func(), error) {
	switch c.GetCredentialStore() {
	case config.StoreMemory:
		log.Info().Msg("credentials kept in memory")
		return credentials.NewInMemoryStore(), func() {}, nil
	case config.StoreRedis:
		client, err := credentials.NewRedisClient(ctx, c.GetRedisAddr(), c.GetRedisPassword())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("credentials kept in redis")
		return credentials.NewRedisStore(client, c.GetSessionDuration()), func() { _ = client.Close() }, nil
	default:
		log.Info().Msg("credentials kept in the session cookie")
		return nil, func() {}, nil
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
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
