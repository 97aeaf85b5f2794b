package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"heart-clinic/internal/clinic"
	"heart-clinic/internal/config"
	"heart-clinic/internal/grpcweb"
	"heart-clinic/internal/handler"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/rpc"
	"heart-clinic/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:   "clinic-server",
		Short: "Heart clinic backend (HTTP JSON and gRPC)",
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and seed the default doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required")
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat)

			ctx := context.Background()
			st, err := store.Open(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info("migration applied")
			return clinic.New(st, cfg.JWT.Secret, log).SeedDoctor(ctx, cfg.Seed.DoctorUsername, cfg.Seed.DoctorPassword)
		},
	}
}

func serve(cfg *config.Config) error {
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// database
	var repo store.Repository
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		repo = store.NewMemory()
	} else {
		st, err := store.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer st.Close()
		log.Info("connected to postgres")

		if err := st.Migrate(ctx); err != nil {
			log.WithError(err).Warn("migration warning")
		} else {
			log.Info("migration applied")
		}
		repo = st
	}

	svc := clinic.New(repo, cfg.JWT.Secret, log)
	if err := svc.SeedDoctor(ctx, cfg.Seed.DoctorUsername, cfg.Seed.DoctorPassword); err != nil {
		return err
	}

	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer rl.Close()
	metrics := middleware.NewMetrics("clinic-server")

	// grpc server
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl, rpc.FullMethod(rpc.MethodLogin)),
			middleware.Auth(cfg.JWT.Secret, rpc.Policy()),
		),
	)
	rpc.RegisterClinicServer(srv, rpc.NewServer(svc, log))

	grpcAddr := ":" + strconv.Itoa(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		log.Infof("grpc on %s", grpcAddr)
		if err := srv.Serve(lis); err != nil {
			log.WithError(err).Error("grpc")
		}
	}()

	// grpc-web bridge over a loopback connection
	loop, err := rpc.Dial("127.0.0.1:" + strconv.Itoa(cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("dial loopback: %w", err)
	}
	defer loop.Close()

	router := mux.NewRouter()
	router.PathPrefix(grpcweb.Prefix).Handler(grpcweb.New(loop, log, cfg.CORS.Origins).Handler())
	router.PathPrefix("/").Handler(handler.New(svc, cfg.JWT.Secret, log).Routes(metrics, rl, cfg.CORS.Origins))

	httpSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("http on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.GracefulStop()
	return httpSrv.Shutdown(shutdownCtx)
}
