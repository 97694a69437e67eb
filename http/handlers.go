package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"formcast/db"
	"formcast/ml"
	"formcast/monitoring"
)

// PredictionRecorder stores served predictions.
type PredictionRecorder interface {
	SavePrediction(ctx context.Context, entry db.PredictionLog) error
	RecentPredictions(ctx context.Context, model string, limit int) ([]db.PredictionLog, error)
}

// Deps are the process-wide, read-only dependencies shared by all handlers.
// History and Metrics are optional.
type Deps struct {
	Models    *ml.Store
	Templates *Templates
	Logger    *zap.Logger
	History   PredictionRecorder
	Metrics   *monitoring.Metrics
}

func RegisterHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /api/health", deps.handleHealth)
	if deps.History != nil {
		mux.HandleFunc("GET /api/predictions", deps.handlePredictions)
	}
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}
}

type modelInfo struct {
	Name   string `json:"name"`
	Task   string `json:"task"`
	Output string `json:"output"`
}

func (d Deps) handleHealth(w http.ResponseWriter, r *http.Request) {
	models := make([]modelInfo, 0)
	for _, m := range d.Models.Models() {
		models = append(models, modelInfo{Name: m.Name, Task: string(m.Task), Output: m.Output})
	}
	respondJSON(w, d.Logger, map[string]interface{}{
		"status": "ok",
		"models": models,
	})
}

func (d Deps) handlePredictions(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")

	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > 1000 {
			http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = l
	}

	logs, err := d.History.RecentPredictions(r.Context(), model, limit)
	if err != nil {
		d.Logger.Error("query prediction log failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	respondJSON(w, d.Logger, map[string]interface{}{
		"model": model,
		"data":  logs,
	})
}

// respondJSON 统一JSON响应
func respondJSON(w http.ResponseWriter, logger *zap.Logger, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode JSON", zap.Error(err))
	}
}
