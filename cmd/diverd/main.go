package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"divescore-backend/lib/configutil"
	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/lib/serviceutil"
	"divescore-backend/lib/sqliteutil"
	"divescore-backend/lib/telemetry"
	"divescore-backend/services/divers"
	diversdb "divescore-backend/services/divers/db"
)

type Config struct {
	Port     int    `json:"port"`
	Database string `json:"database"`
	// override for testing against a fixture server
	BaseUrl              string `json:"base_url"`
	MaxConcurrentFetches int    `json:"max_concurrent_fetches"`
}

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.InitSlog(false)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Port == 0 {
		config.Port = 8470
	}
	if config.Database == "" {
		config.Database = "divers.db"
	}

	t, err := telemetry.SetupFromEnv(ctx, "diverd")
	if err == nil {
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	} else {
		slog.Warn("telemetry disabled", "err", err)
	}

	database, err := sqliteutil.OpenDB(diversdb.Schema, config.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	scraper, err := divemeets.NewClient(divemeets.ClientOptions{
		BaseUrl: config.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize divemeets client", err)
	}

	service, err := divers.NewService(database, scraper, divers.ServiceOptions{
		MaxConcurrentFetches: config.MaxConcurrentFetches,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize divers service", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/divers/{number}", getDiver(service))
	mux.HandleFunc("GET /api/v1/divers/{number}/rankings", getRankings(service))
	go serviceutil.StartHttpServer(config.Port, mux)

	<-ctx.Done()
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func getDiver(service divers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := r.PathValue("number")
		record, err := service.GetOrCreate(r.Context(), number)
		if errors.Is(err, divers.ErrDiverNotFound) {
			writeJson(w, http.StatusNotFound, errorResponse{Error: "diver not found"})
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get diver", "number", number, "err", err)
			writeJson(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}
		writeJson(w, http.StatusOK, record)
	}
}

func getRankings(service divers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := r.PathValue("number")
		record, err := service.GetOrCreate(r.Context(), number)
		if errors.Is(err, divers.ErrDiverNotFound) {
			writeJson(w, http.StatusNotFound, errorResponse{Error: "diver not found"})
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get diver", "number", number, "err", err)
			writeJson(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}
		writeJson(w, http.StatusOK, record.Rankings)
	}
}
