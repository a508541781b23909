// Entry point: load configuration, initialize dependencies and start the
// server; route registration lives in internal/api.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jairajmehra/projects-api/internal/airtable"
	"github.com/Jairajmehra/projects-api/internal/api"
	"github.com/Jairajmehra/projects-api/internal/cache"
	"github.com/Jairajmehra/projects-api/internal/config"
	"github.com/Jairajmehra/projects-api/internal/logger"
	"github.com/Jairajmehra/projects-api/internal/metrics"
	"github.com/Jairajmehra/projects-api/internal/middleware"
	"github.com/Jairajmehra/projects-api/internal/stats"
)

func main() {
	l := logger.Setup()
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_ok", "addr", cfg.Addr, "backoff_s", cfg.FetchBackoffSeconds)

	st, err := stats.Open(cfg.StatsDSN)
	if err != nil {
		l.Error("stats_open_error", "err", err)
		os.Exit(1)
	}
	if st == nil {
		l.Info("stats_disabled")
	} else {
		defer st.Close()
		l.Info("stats_open_ok")
	}

	var rc *redis.Client
	if addr := cfg.RedisAddr(); addr != "" {
		rc = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	} else {
		l.Info("redis_disabled")
	}

	client := airtable.NewClient(cfg.AirtableAPIKey, &http.Client{Timeout: 60 * time.Second})
	tables := cache.Tables{
		ResidentialProjects:   airtable.Table{Base: cfg.InventoryBaseID, ID: cfg.ResidentialProjectsTableID, View: "Production"},
		CommercialProjects:    airtable.Table{Base: cfg.ProjectsBaseID, ID: cfg.CommercialProjectsTableID},
		ResidentialProperties: airtable.Table{Base: cfg.InventoryBaseID, ID: cfg.ResidentialPropsTableID, View: "Production"},
		CommercialProperties:  airtable.Table{Base: cfg.InventoryBaseID, ID: cfg.CommercialPropsTableID, View: "Production"},
		Localities:            airtable.Table{Base: cfg.InventoryBaseID, ID: cfg.LocalitiesTableID},
	}
	store := cache.New(client, tables, cfg.FetchBackoff())
	// Kick off population at boot instead of waiting for the first request;
	// readers still poll until the snapshot flips to ready.
	store.EnsureInitialized()

	apiMux := api.BuildRoutes(store, rc, st, cfg.AdminToken)
	mux := http.NewServeMux()
	mux.Handle("/", apiMux)
	mux.Handle("/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler, middleware.Options{
		CORSOrigins:      cfg.CORSOrigins,
		RateLimitEnabled: cfg.RateLimitEnabled,
		RateLimitQPS:     cfg.RateLimitQPS,
	})
	s := &http.Server{Addr: cfg.Addr, Handler: handler}
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}
