package monitoring

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObservePrediction("regression_model", OutcomeOK, 20*time.Millisecond)
	m.ObservePrediction("regression_model", OutcomeOK, 30*time.Millisecond)
	m.ObservePrediction("regression_model", OutcomeInvalidInput, 0)
	m.CacheHit("regression_model")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("regression_model", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("regression_model", OutcomeInvalidInput)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues("regression_model")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "formcast_inference_duration_seconds_count{model=\"regression_model\"} 2"))
}
