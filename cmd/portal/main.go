package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"heart-clinic/internal/config"
	"heart-clinic/internal/gateway"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/portal"
	"heart-clinic/internal/rpc"
	"heart-clinic/internal/session"
	"heart-clinic/internal/view"
)

func main() {
	root := &cobra.Command{
		Use:   "clinic-portal",
		Short: "Heart clinic web portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidatePortal(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// session storage
	var kv session.KV
	if cfg.Redis.URL == "" {
		log.Warn("REDIS_URL not set, sessions are kept in memory")
		kv = session.NewMemoryKV(cfg.Session.TTL)
	} else {
		rdb, err := session.OpenRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("connected to redis")
		kv = session.NewRedisKV(rdb, cfg.Session.TTL)
	}
	sessions := session.NewManager(kv, cfg.Session.Secret, cfg.Session.TTL)

	// backend
	var gw gateway.Gateway
	switch cfg.Portal.Transport {
	case config.TransportGRPC:
		conn, err := rpc.Dial(cfg.Portal.GRPCAddr)
		if err != nil {
			return fmt.Errorf("dial backend: %w", err)
		}
		defer conn.Close()
		gw = gateway.NewGRPC(conn)
		log.Infof("backend over grpc at %s", cfg.Portal.GRPCAddr)
	default:
		gw = gateway.NewHTTP(cfg.Portal.BackendURL, cfg.Portal.Timeout)
		log.Infof("backend over http at %s", cfg.Portal.BackendURL)
	}

	metrics := middleware.NewMetrics("clinic-portal")
	gw = gateway.Instrument(gw, cfg.Portal.Transport, metrics.Registerer(), log)

	opts := view.Options{
		HasMobileField:   cfg.Features.MobileField,
		HasPrescriptions: cfg.Features.Prescriptions,
	}
	srv, err := portal.New(gw, sessions, opts, log)
	if err != nil {
		return err
	}

	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer rl.Close()

	httpSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Portal.Port),
		Handler:           srv.Routes(metrics, rl, cfg.Portal.TrustProxy),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("portal on %s", httpSrv.Addr)
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
	return httpSrv.Shutdown(shutdownCtx)
}
