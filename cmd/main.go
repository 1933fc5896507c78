package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"quantum_gomoku/internal/adapters"
	"quantum_gomoku/internal/bootstrap"
	gameDelivery "quantum_gomoku/internal/delivery/game"
	grpcDelivery "quantum_gomoku/internal/delivery/grpc"
	ownMiddleware "quantum_gomoku/internal/middleware"
	repo "quantum_gomoku/internal/repository"
	gameuc "quantum_gomoku/internal/usecase/game"
)

func main() {
	logger := NewLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	store, closeStore, err := initGameStore(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize game store", zap.Error(err))
	}
	defer closeStore()

	hub := gameDelivery.NewHub(logger)
	gameUC := gameuc.NewGameUseCase(logger, store, hub)

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	gameDelivery.NewGameHandler(logger, gameUC, hub).Router(r)

	grpcServer := grpc.NewServer()
	grpcDelivery.Register(grpcServer, grpcDelivery.NewGameServer(logger, gameUC))

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatal("Failed to listen for grpc", zap.Error(err))
	}
	go func() {
		logger.Infof("gRPC server is running on port %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{Addr: cfg.ServerPort, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

// initGameStore picks the snapshot store named by STORE_DRIVER. The memory
// driver keeps games in process only and returns a nil store.
func initGameStore(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (gameuc.GameStore, func(), error) {
	switch cfg.StoreDriver {
	case bootstrap.StoreRedis:
		redisAdapter := adapters.NewAdapterRedis(cfg)
		if err := redisAdapter.Init(ctx); err != nil {
			return nil, nil, err
		}
		log.Info("Redis snapshot store initialized")
		return repo.NewGameRedisStorage(log, redisAdapter.GetClient(), cfg.SnapshotTTL),
			func() { _ = redisAdapter.Close(context.Background()) }, nil
	case bootstrap.StoreMongo:
		mongoAdapter := adapters.NewAdapterMongo(cfg)
		if err := mongoAdapter.Init(ctx); err != nil {
			return nil, nil, err
		}
		log.Info("MongoDB snapshot store initialized")
		return repo.NewGameMongoStorage(log, mongoAdapter),
			func() { _ = mongoAdapter.Close(context.Background()) }, nil
	default:
		log.Info("Games are kept in memory only")
		return nil, func() {}, nil
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
