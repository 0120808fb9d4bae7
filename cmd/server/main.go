package main

import (
	"chat-hub/contract"
	chatgrpc "chat-hub/grpc"
	"chat-hub/moderation"
	"chat-hub/protocol"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/search"
	"chat-hub/websocket"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and keeps cleanup in defers, main only turns the error into an exit code.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Search index & history
	var index *search.Index
	var historyIndex contract.HistoryIndex
	if config.SearchEnabled {
		var err error
		if index, err = search.NewIndex(log); err != nil {
			return fmt.Errorf("search index failed: %w", err)
		}
		defer func() { _ = index.Close() }()
		historyIndex = index
	}
	history, closeHistory, err := repositories.NewHistoryRepository(repositories.HistoryOptions{
		Backend: repositories.Backend(config.HistoryBackend),
		Index:   historyIndex,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing history store...")
		_ = closeHistory()
	}()

	// 3. Moderation
	moderator, err := newModerator(config, log)
	if err != nil {
		return err
	}

	// 4. Coordinator under supervision
	coordinator := runtime.NewCoordinator(runtime.CoordinatorConfig{
		MailboxSize:         config.MailboxSize,
		DeliveryTimeout:     config.DeliveryTimeout,
		AnnouncePresence:    config.AnnouncePresence,
		OfflineQueueEnabled: config.OfflineQueueEnabled,
		OfflineQueueLimit:   config.OfflineQueueLimit,
	}, history, historyIndex, moderator, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor := workers.NewMailboxMonitorWorker(log, config.MonitorInterval, config.MailboxWarnRatio,
		workers.Gauge{Name: "coordinator", Usage: coordinator.MailboxUsage})
	sup := workers.NewSupervisor(log, config.RestartInterval)
	supervised := make(chan struct{})
	go func() {
		sup.Add(coordinator, monitor).Run(ctx)
		close(supervised)
	}()

	// 5. Transports
	sessionOptions := protocol.Options{BufferSize: config.ConnectionBufferSize, RequestTimeout: config.RequestTimeout}
	errChan := make(chan error, 2)

	listener, err := net.Listen("tcp", config.GrpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.GrpcAddress(), err)
	}
	grpcServer := chatgrpc.NewServer(log, coordinator, sessionOptions)
	go func() {
		log.Info("Starting gRPC server", "address", config.GrpcAddress(), "at", time.Now().UTC())
		if err := grpcServer.Serve(listener); err != nil && !stderrors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	var wsServer *http.Server
	if config.WsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/ws", websocket.NewGateway(ctx, log, coordinator, sessionOptions))
		wsServer = &http.Server{Addr: config.WsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("Starting WebSocket server", "address", config.WsAddr)
			if err := wsServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("WebSocket server error: %w", err)
			}
		}()
	}

	// 6. Wait for Stop or Error
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		log.Error("Transport failed, shutting down", "error", runErr)
	}

	// 7. Final Cleanup
	if wsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = wsServer.Shutdown(shutdownCtx)
		cancel()
	}
	coordinator.Stop()
	grpcStopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(grpcStopped)
	}()
	select {
	case <-grpcStopped:
	case <-time.After(5 * time.Second):
		log.Warn("Sessions still open, forcing gRPC stop")
		grpcServer.Stop()
	}
	stop()
	<-supervised
	log.Info("Program stopped cleanly")

	return runErr
}

func newModerator(config Config, log *slog.Logger) (*moderation.Moderator, error) {
	char, err := config.CharacterRune()
	if err != nil {
		return nil, err
	}
	words := config.Words()
	if config.CensoredDir != "" {
		data, err := moderation.NewCensoredLoader(os.DirFS(config.CensoredDir)).LoadAll(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load censored words from %s: %w", config.CensoredDir, err)
		}
		log.Info("Censored words loaded", "count", len(data.Words), "languages", data.Languages)
		words = append(words, data.Words...)
	}
	return moderation.NewModerator(words, char, log)
}
