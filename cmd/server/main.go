package main

import (
	"chat-sync/auth"
	"chat-sync/infrastructure/http/handler"
	"chat-sync/infrastructure/upload"
	"chat-sync/internal"
	"chat-sync/moderation"
	"chat-sync/observability"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/runtime/workers"
	"chat-sync/services"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal is received, so that
// deferred cleanups (badger, bluge) always execute before os.Exit.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, documentMapper)
	}

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	messages := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	profiles := repositories.NewProfileRepository(db)
	posts := repositories.NewPostRepository(db, logger)
	directory := repositories.NewDirectoryIndex(blugeWriter, logger)

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(registry)

	// 4. Moderation
	censored, err := moderation.NewEmbeddedLoader().LoadAll("censored")
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to load censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to build moderator: %w", err)
	}
	logger.Info("Moderation ready", "words", len(censored.Words), "languages", censored.Languages)

	// 5. Services
	synchronizer := runtime.NewSynchronizer(logger, runtime.NewWatchers(), messages, metrics,
		runtime.NewSenderLimiter(config.SendRatePerSecond, config.SendBurst), config.MaxContentLength)
	uploader := upload.NewCloudinaryUploader(logger, &http.Client{Timeout: 30 * time.Second},
		config.CloudinaryURL, config.CloudinaryPreset, config.MaxUploadBytes)

	chatService := services.NewChatService(synchronizer)
	profileService := services.NewProfileService(logger, profiles, directory, uploader, config.DirectoryLimit)
	feedService := services.NewFeedService(logger, posts, profiles, moderator, config.MaxContentLength)

	if err := profileService.Reindex(ctx); err != nil {
		return exitRuntime, fmt.Errorf("directory reindex failed: %w", err)
	}

	h := handler.New(logger, handler.Config{
		AllowedOrigins:   config.Origins(),
		MaxUploadBytes:   int64(config.MaxUploadBytes),
		DefaultFeedLimit: config.FeedLimit,
		WriteTimeout:     config.WriteTimeout,
	}, auth.NewTokenManager(config.JWTSecret, config.JWTIssuer), chatService, profileService, feedService, registry)

	// 6. Listeners
	httpAddress := fmt.Sprintf("0.0.0.0:%d", config.HTTPPort)
	httpListener, err := net.Listen("tcp", httpAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", httpAddress, err)
	}
	grpcAddress := fmt.Sprintf("0.0.0.0:%d", config.GRPCPort)
	grpcListener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		_ = httpListener.Close()
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}

	// 7. Supervision
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	supervisor.Add(
		workers.NewHTTPServerWorker(logger, httpListener, h.Handler(), config.ShutdownTimeout),
		workers.NewGRPCHealthWorker(logger, grpcListener),
		workers.NewHeartbeatWorker(logger, metrics, config.HeartbeatInterval),
	)

	logger.Info("Starting chat-sync", "http", httpAddress, "grpc", grpcAddress, "at", time.Now().UTC())
	// Run blocks until the signal context is cancelled and every worker returned.
	supervisor.Run(ctx)

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

func documentMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	doc := internal.DocumentMapper(key, val)
	row.Type = doc.Type
	row.Detail = doc.Detail
	return row
}
