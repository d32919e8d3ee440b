// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/devtls"
	"github.com/gatehouse/gatehouse/internal/httpapi"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/store"
	"github.com/gatehouse/gatehouse/internal/xdg"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the auth API server",
		Long: `Start the HTTP API server plus the metrics/health endpoint.
Configuration comes from defaults, then the optional config file, then flags;
DATABASE_URL and GATEHOUSE_TOKEN_SECRET fill in anything still unset.`,
		RunE: runServe,
	}

	cmd.Flags().String("http-addr", "", "API listen address")
	cmd.Flags().String("metrics-addr", "", "metrics/health listen address (empty = disabled)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().Duration("token-ttl", 0, "bearer token lifetime")
	cmd.Flags().Duration("token-leeway", 0, "clock-skew allowance for expiry checks")
	cmd.Flags().String("log-format", "", "log format (json or text)")
	cmd.Flags().String("tls-cert", "", "TLS certificate file (serve over HTTPS)")
	cmd.Flags().String("tls-key", "", "TLS private key file")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		path = xdg.DefaultConfigPath()
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("gatehouse", version, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	issuer, err := auth.NewJWTIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL, cfg.TokenLeeway, nil)
	if err != nil {
		return err
	}

	svc, err := auth.NewService(authpg.NewAccountRepository(pool), auth.NewArgon2idHasher(), issuer)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	var obsErrCh <-chan error
	var obs *observability.Server
	if cfg.MetricsAddr != "" {
		obs = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err = obs.Start()
		if err != nil {
			return err
		}
		metrics = obs.Metrics()
	}

	api, err := httpapi.NewServer(cfg.HTTPAddr, svc, metrics, slog.Default())
	if err != nil {
		return err
	}
	if cfg.TLSCert != "" {
		tlsCfg, tlsErr := devtls.LoadConfig(cfg.TLSCert, cfg.TLSKey)
		if tlsErr != nil {
			return tlsErr
		}
		api.WithTLS(tlsCfg)
	}
	apiErrCh, err := api.Start()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			errutil.LogError(slog.Default(), "api server failed", serveErr)
		}
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			errutil.LogError(slog.Default(), "observability server failed", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Stop(shutdownCtx); err != nil {
		errutil.LogError(slog.Default(), "api server shutdown failed", err)
	}
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			errutil.LogError(slog.Default(), "observability server shutdown failed", err)
		}
	}
	return nil
}
