// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/latticelabs/nodeintel/api"
	"github.com/latticelabs/nodeintel/config"
	"github.com/latticelabs/nodeintel/intel"
	"github.com/latticelabs/nodeintel/pkg/extensions"
	"github.com/latticelabs/nodeintel/pkg/logging"
	"github.com/latticelabs/nodeintel/telemetry"
)

// shutdownTimeout bounds graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Service: cfg.Telemetry.ServiceName,
		JSON:    cfg.Logging.Format == "json",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		tcfg := telemetry.DefaultConfig()
		tcfg.ServiceName = cfg.Telemetry.ServiceName
		if cfg.Telemetry.OTLPEndpoint != "" {
			tcfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
		} else {
			tcfg.TraceExporter = "stdout"
			tcfg.MetricExporter = "prometheus"
		}
		shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			log.Fatalf("Error initializing telemetry: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("Telemetry shutdown failed", "error", err)
			}
		}()
	}

	storeOpts, err := cfg.StoreOptions()
	if err != nil {
		log.Fatalf("Error building store options: %v", err)
	}
	store := intel.NewStore(storeOpts...)

	exts := extensions.DefaultOptions()
	exts.AuditLogger = extensions.NewSlogAuditLogger(logger.Slog())
	handlers := api.NewHandlers(store).WithExtensions(exts)

	// Set Gin mode
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	if debug {
		router.Use(gin.Logger())
	}
	if cfg.Telemetry.Enabled {
		router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	router.Use(api.AuthMiddleware(exts.AuthProvider))
	router.Use(api.WriteRateLimiter(cfg.Server.WriteRateLimit, cfg.Server.WriteRateBurst))

	v1 := router.Group("/v1")
	api.RegisterRoutes(v1, handlers)

	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		slog.Info("Starting node intelligence server",
			slog.String("address", addr),
			slog.Int("max_hierarchy_depth", cfg.Store.MaxHierarchyDepth),
			slog.Int("max_relationship_edges", cfg.Store.MaxRelationshipEdges),
			slog.Int("max_dataflow_entries", cfg.Store.MaxDataflowEntries))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down node intelligence server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}
