// Package app assembles the CAT62 service: configuration, logging, codec,
// HTTP server, operation archive and the optional NATS feed.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/cat62"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/logging"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/plots"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/publish"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/server"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/storage"
)

// Application represents the running service.
type Application struct {
	config    Config
	logger    *logrus.Logger
	server    *server.Server
	archive   *storage.DB
	publisher *publish.Publisher
}

// NewApplication creates an application instance from configuration.
func NewApplication(config Config) *Application {
	logger := logging.New(config.LogLevel, logging.FileOptions{
		Path:       config.LogFile,
		MaxSizeMB:  config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
		MaxAgeDays: config.LogMaxAgeDays,
	})
	return &Application{config: config, logger: logger}
}

// Logger exposes the application logger for command-level use.
func (app *Application) Logger() *logrus.Logger {
	return app.logger
}

// Start initializes all components and serves until SIGINT/SIGTERM.
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Starting CAT62 ASTERIX service")

	if err := app.initializeComponents(); err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer app.shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		app.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
		cancel()
	}()

	return app.server.Run(ctx)
}

// initializeComponents wires the codec pipeline and its optional sinks.
func (app *Application) initializeComponents() error {
	codec := cat62.NewCodec(app.logger)
	encoder := plots.NewEncoder(codec, app.logger, app.config.SAC, app.config.SIC)
	decoder := plots.NewDecoder(codec, app.logger)

	if app.config.ArchivePath != "" {
		archive, err := storage.Open(app.config.ArchivePath)
		if err != nil {
			return fmt.Errorf("failed to open operation archive: %w", err)
		}
		app.archive = archive
		app.logger.WithField("path", app.config.ArchivePath).Info("Operation archive opened")
	}

	if app.config.NATSURL != "" {
		publisher, err := publish.Connect(app.config.NATSURL, app.config.NATSSubject, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect track publisher: %w", err)
		}
		app.publisher = publisher
	}

	app.server = server.New(encoder, decoder, app.logger, server.Options{
		Addr:      app.config.ListenAddr,
		Archive:   app.archive,
		Publisher: app.publisher,
		TrackTTL:  time.Duration(app.config.TrackCacheTTL),
	})
	return nil
}

// shutdown releases the archive and publisher once the server has stopped.
func (app *Application) shutdown() {
	if app.publisher != nil {
		app.publisher.Close()
	}
	if app.archive != nil {
		if err := app.archive.Close(); err != nil {
			app.logger.WithError(err).Warn("Failed to close operation archive")
		}
	}
	app.logger.Info("Shutdown completed")
}
