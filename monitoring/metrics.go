// Package monitoring 提供推理服务的Prometheus指标
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "formcast"

// Outcome labels for predictions_total.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// Metrics 指标收集器
type Metrics struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheHits   *prometheus.CounterVec
}

// NewMetrics 创建指标收集器，使用独立的registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by model and outcome.",
		}, []string{"model", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Time spent in model inference.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"model"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Predictions served from the result cache.",
		}, []string{"model"}),
	}
	m.registry.MustRegister(
		m.predictions,
		m.duration,
		m.cacheHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePrediction 记录一次预测
func (m *Metrics) ObservePrediction(model, outcome string, elapsed time.Duration) {
	m.predictions.WithLabelValues(model, outcome).Inc()
	if outcome != OutcomeInvalidInput {
		m.duration.WithLabelValues(model).Observe(elapsed.Seconds())
	}
}

// CacheHit 记录缓存命中
func (m *Metrics) CacheHit(model string) {
	m.cacheHits.WithLabelValues(model).Inc()
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 返回底层registry，供测试读取
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
