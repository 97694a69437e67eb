package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"formcast/config"
	"formcast/db"
	"formcast/ml"
	"formcast/monitoring"
	"formcast/records"
)

var pageTitles = map[ml.Task]string{
	ml.TaskRegression:     "HDB Resale Price Prediction",
	ml.TaskAnomaly:        "Spending Anomaly Detection",
	ml.TaskClassification: "Mushroom Classification",
}

type pageData struct {
	Title      string
	Action     string
	Prediction string
	Fields     []string
}

// familyHandler 一个模型族的首页与预测路由
type familyHandler struct {
	deps  Deps
	route config.Route
	task  ml.Task
	model *ml.Model
}

// RegisterPredictRoutes 按配置挂载各模型族路由
func RegisterPredictRoutes(mux *http.ServeMux, deps Deps, routes []config.Route) error {
	for _, route := range routes {
		task, err := ml.ParseTask(route.Task)
		if err != nil {
			return err
		}
		model, ok := deps.Models.Get(task)
		if !ok {
			return fmt.Errorf("no model loaded for task %s", task)
		}
		if route.Mode == config.ModeRender && !deps.Templates.Has(route.Template) {
			return fmt.Errorf("template %s not found for task %s", route.Template, task)
		}

		h := &familyHandler{deps: deps, route: route, task: task, model: model}
		if route.Prefix == "" {
			mux.HandleFunc("GET /{$}", h.home)
		} else {
			mux.HandleFunc("GET "+route.Prefix, h.home)
			mux.HandleFunc("GET "+route.Prefix+"/{$}", h.home)
		}
		mux.HandleFunc("POST "+route.Prefix+"/predict", h.predict)
	}
	return nil
}

func (h *familyHandler) page(prediction string) pageData {
	data := pageData{
		Title:      pageTitles[h.task],
		Action:     h.route.Prefix + "/predict",
		Prediction: prediction,
	}
	if h.task == ml.TaskClassification {
		data.Fields = records.MushroomColumns
	}
	return data
}

func (h *familyHandler) home(w http.ResponseWriter, r *http.Request) {
	if h.route.Mode == config.ModeRedirect {
		http.Redirect(w, r, h.route.RedirectURL, http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, h.page(""))
}

func (h *familyHandler) predict(w http.ResponseWriter, r *http.Request) {
	logger := h.deps.Logger.With(
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("model", h.model.Name),
	)

	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	input, err := records.Build(h.task, r.PostForm)
	if err != nil {
		h.observe(r.Context(), r.PostForm.Encode(), "", monitoring.OutcomeInvalidInput, err, 0)
		logger.Info("rejected prediction input", zap.Error(err))
		http.Error(w, "invalid input: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	raw, err := h.model.Invoke(r.Context(), input)
	var prediction string
	if err == nil {
		prediction, err = ml.FormatResult(h.task, raw)
	}
	elapsed := time.Since(start)

	if err != nil {
		h.observe(r.Context(), frameJSON(input), "", monitoring.OutcomeError, err, elapsed)
		logger.Error("prediction failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		status := statusForError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.observe(r.Context(), frameJSON(input), prediction, monitoring.OutcomeOK, nil, elapsed)
	logger.Debug("prediction served", zap.String("prediction", prediction), zap.Duration("elapsed", elapsed))

	if h.route.Mode == config.ModeRedirect {
		target, err := predictionURL(h.route.RedirectURL, prediction)
		if err != nil {
			logger.Error("bad redirect url", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, h.page(prediction))
}

func (h *familyHandler) render(w http.ResponseWriter, status int, data pageData) {
	if err := h.deps.Templates.Render(w, status, h.route.Template, data); err != nil {
		h.deps.Logger.Error("render failed", zap.String("template", h.route.Template), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// observe 记录指标与预测日志；日志写入失败不影响响应
func (h *familyHandler) observe(ctx context.Context, input string, prediction, outcome string, err error, elapsed time.Duration) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.ObservePrediction(h.model.Name, outcome, elapsed)
	}
	if h.deps.History == nil {
		return
	}

	entry := db.PredictionLog{
		Model:      h.model.Name,
		Task:       string(h.task),
		Input:      input,
		Prediction: prediction,
		Status:     outcome,
		DurationMs: float64(elapsed.Microseconds()) / 1000,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if saveErr := h.deps.History.SavePrediction(context.WithoutCancel(ctx), entry); saveErr != nil {
		h.deps.Logger.Warn("save prediction log failed", zap.Error(saveErr))
	}
}

func frameJSON(f ml.Frame) string {
	payload, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return string(payload)
}

// predictionURL 在外部页面地址上追加经过编码的prediction参数
func predictionURL(base, prediction string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("prediction", prediction)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ml.ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
