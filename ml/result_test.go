package ml

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnomalyLabel(t *testing.T) {
	cases := []struct {
		score any
		want  string
	}{
		{0.0001, LabelAnomaly},
		{1.0, LabelAnomaly},
		{0.0, LabelNotAnomaly},
		{-0.3, LabelNotAnomaly},
		{nil, LabelNotAnomaly},
		{math.NaN(), LabelNotAnomaly},
		{"0.5", LabelAnomaly},
		{"abc", LabelNotAnomaly},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AnomalyLabel(c.score), "score %v", c.score)
	}
}

func TestFormatResult(t *testing.T) {
	got, err := FormatResult(TaskRegression, 452312.5625)
	require.NoError(t, err)
	assert.Equal(t, "452312.5625", got)

	got, err = FormatResult(TaskRegression, 520000.0)
	require.NoError(t, err)
	assert.Equal(t, "520000", got)

	_, err = FormatResult(TaskRegression, nil)
	assert.ErrorIs(t, err, ErrNullPrediction)

	_, err = FormatResult(TaskRegression, "cheap")
	assert.Error(t, err)

	got, err = FormatResult(TaskClassification, "p")
	require.NoError(t, err)
	assert.Equal(t, "p", got)

	got, err = FormatResult(TaskClassification, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	_, err = FormatResult(TaskClassification, nil)
	assert.ErrorIs(t, err, ErrNullPrediction)
}

type staticPredictor struct {
	out   Frame
	err   error
	calls int
}

func (s *staticPredictor) Predict(ctx context.Context, input Frame) (Frame, error) {
	s.calls++
	return s.out, s.err
}

func TestModelInvokeRequiresOneRow(t *testing.T) {
	model := NewModel("m", TaskRegression, &staticPredictor{})
	_, err := model.Invoke(context.Background(), Frame{Columns: []string{"x"}})
	assert.Error(t, err)
}

func TestCachedPredictorSkipsErrors(t *testing.T) {
	next := &staticPredictor{err: errors.New("boom")}
	cached, err := NewCachedPredictor(next, 4, nil)
	require.NoError(t, err)

	input := NewFrame([]string{"x"}, []any{1.0})
	for i := 0; i < 2; i++ {
		_, err := cached.Predict(context.Background(), input)
		assert.Error(t, err)
	}
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 0, cached.Len())
}
