package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/trialforge/platform/pkg/common/config"
	"github.com/trialforge/platform/pkg/common/database"
	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/warehouse"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()

	db, err := database.NewPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres(db)

	repo := warehouse.NewRepository(db)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analytics/sponsors", sponsorsHandler(repo)).Methods(http.MethodGet)
	api.HandleFunc("/analytics/conditions", conditionsHandler(repo)).Methods(http.MethodGet)
	api.HandleFunc("/analytics/phases", phasesHandler(repo)).Methods(http.MethodGet)
	api.HandleFunc("/analytics/quality", qualityHandler(repo)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Trials Analytics API started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down Trials Analytics API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("graceful shutdown failed")
	}
}

func sponsorsHandler(repo *warehouse.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		stats, err := repo.TopSponsors(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, stats)
	}
}

func conditionsHandler(repo *warehouse.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.ConditionCategories(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, stats)
	}
}

func phasesHandler(repo *warehouse.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.StatusByPhase(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, stats)
	}
}

func qualityHandler(repo *warehouse.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := repo.QualityOverview(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, summary)
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	logger.Log.WithError(err).Error("analytics query failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
}
