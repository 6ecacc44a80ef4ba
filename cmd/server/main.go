// Command securepass-server serves the SecurePass credential and vault API
// over HTTP (echo) and gRPC.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/and161185/securepass/internal/api/securepassv1"
	"github.com/and161185/securepass/internal/config"
	"github.com/and161185/securepass/internal/crypto"
	"github.com/and161185/securepass/internal/migrate"
	"github.com/and161185/securepass/internal/repository"
	"github.com/and161185/securepass/internal/repository/postgres"
	"github.com/and161185/securepass/internal/repository/sqlite"
	grpcserver "github.com/and161185/securepass/internal/server/grpc"
	httpserver "github.com/and161185/securepass/internal/server/http"
	"github.com/and161185/securepass/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = lvl
	return zc.Build()
}

// openAccounts migrates the schema and returns the store with its closer.
func openAccounts(ctx context.Context, cfg *config.Config) (repository.AccountRepository, func(), error) {
	switch cfg.Storage.Driver {
	case migrate.DriverPostgres:
		if err := migrate.Up(ctx, migrate.DriverPostgres, cfg.Storage.DSN); err != nil {
			return nil, nil, err
		}
		db, err := postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAccountRepo(db), db.Close, nil
	default:
		db, err := sqlite.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.UpDB(ctx, db, migrate.DriverSQLite); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlite.NewAccountRepo(db), func() { _ = db.Close() }, nil
	}
}

// main loads configuration, prepares storage and runs both listeners until a signal arrives.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("http", cfg.HTTP.Addr),
		zap.String("grpc", cfg.GRPC.Addr),
		zap.String("driver", cfg.Storage.Driver),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	accounts, closeStore, err := openAccounts(ctx, cfg)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer closeStore()

	hasher, err := crypto.NewBcryptHasher(cfg.Hash.Cost)
	if err != nil {
		logger.Fatal("bcrypt hasher", zap.Error(err))
	}
	svc := service.NewAccountService(accounts, crypto.NewPool(hasher, cfg.Hash.Workers), logger)

	errCh := make(chan error, 2)

	var e *echo.Echo
	if cfg.HTTP.Addr != "" {
		e = httpserver.New(svc, logger, httpserver.Options{
			Static:    cfg.HTTP.Static,
			BodyLimit: cfg.HTTP.BodyLimit,
		})
		go func() {
			logger.Info("listening (HTTP)", zap.String("addr", cfg.HTTP.Addr))
			if err := e.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var (
		gs *grpc.Server
		hs *health.Server
	)
	if cfg.GRPC.Addr != "" {
		opts := []grpc.ServerOption{
			grpc.ChainUnaryInterceptor(
				grpcserver.RecoverUnary(logger),
				grpcserver.LoggingUnary(logger),
			),
		}
		if cfg.GRPC.Cert != "" {
			creds, err := credentials.NewServerTLSFromFile(cfg.GRPC.Cert, cfg.GRPC.Key)
			if err != nil {
				logger.Fatal("failed to load TLS cert/key", zap.Error(err))
			}
			opts = append(opts, grpc.Creds(creds))
		} else {
			logger.Warn("gRPC without TLS: passwords travel in plaintext")
		}
		gs = grpc.NewServer(opts...)
		securepassv1.RegisterSecurePassServer(gs, grpcserver.New(svc))

		hs = health.NewServer()
		hs.SetServingStatus(securepassv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(gs, hs)

		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
		go func() {
			logger.Info("listening (gRPC)", zap.String("addr", cfg.GRPC.Addr))
			if err := gs.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}
	shutdown(logger, cfg, e, gs, hs)
	logger.Info("shutdown complete")
}

// shutdown drains both listeners within the configured timeout.
func shutdown(logger *zap.Logger, cfg *config.Config, e *echo.Echo, gs *grpc.Server, hs *health.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if hs != nil {
		hs.Shutdown()
	}
	if e != nil {
		if err := e.Shutdown(ctx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}
	if gs != nil {
		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			gs.Stop()
		}
	}
}
