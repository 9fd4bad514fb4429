package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"synthetic-persona/backend/internal/config"
	"synthetic-persona/backend/internal/flags"
	"synthetic-persona/backend/internal/metrics"
	"synthetic-persona/backend/internal/server"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type ServerFlags struct {
	APIFlags *flags.APIFlags
	DBFlags  *flags.PostgresFlags
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		APIFlags: flags.NewAPIFlags(":8080"),
		DBFlags:  flags.NewPostgresDatabaseFlags(),
	}
}

func (f *ServerFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.APIFlags.BindFlags(flagSet)
	f.DBFlags.BindFlags(flagSet)
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat edge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadEdgeConfigFromEnv()
			if err != nil {
				return errors.WithMessage(err, "error loading edge config")
			}
			if !cfg.AgentConfigured() {
				log.WithError(cfg.AgentURLErr).Error("AI agent service is not configured, chat requests will fail")
			}

			personas, closeDB, err := f.DBFlags.GetPersonaRepository()
			if err != nil {
				return errors.WithMessage(err, "couldn't get persona directory")
			}
			defer func() {
				if err := closeDB(); err != nil {
					log.WithError(err).Warn("error closing persona database")
				}
			}()

			router := server.NewRouter(server.Dependencies{
				Config:     cfg,
				Personas:   personas,
				Middleware: []gin.HandlerFunc{metrics.NewGinMiddleware("")},
			})

			log.WithFields(log.Fields{
				"listen":           f.APIFlags.ListenAddr,
				"agent_url":        cfg.AgentBaseURL,
				"max_body_bytes":   cfg.MaxBodyBytes,
				"upstream_timeout": cfg.UpstreamDeadline,
			}).Info("starting chat edge")

			// Nothing outlives the platform cap; the upstream deadline is enforced
			// per request by the chat service.
			return runHTTPServer(&http.Server{
				Addr:              f.APIFlags.ListenAddr,
				Handler:           router,
				ReadHeaderTimeout: readHeaderTimeout,
				ReadTimeout:       cfg.PlatformRequestCap,
				WriteTimeout:      cfg.PlatformRequestCap,
			}, f.APIFlags.MetricsAddr)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}

// runHTTPServer serves srv, and prometheus metrics on metricsAddr when set,
// until SIGINT or SIGTERM.
func runHTTPServer(srv *http.Server, metricsAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		// Serve our metrics endpoint for prometheus to scrape
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsSrv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
			if err := metricsSrv.ListenAndServe(); err != nil {
				log.WithError(err).Error("metrics server exited")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server exited")
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
