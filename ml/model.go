package ml

import (
	"context"
	"errors"
	"fmt"
)

type Task string

const (
	TaskRegression     Task = "regression"
	TaskAnomaly        Task = "anomaly"
	TaskClassification Task = "classification"
)

var (
	ErrNoRows        = errors.New("model output has no rows")
	ErrMissingColumn = errors.New("model output is missing column")
	ErrBackend       = errors.New("inference backend failed")
)

func ParseTask(s string) (Task, error) {
	switch Task(s) {
	case TaskRegression, TaskAnomaly, TaskClassification:
		return Task(s), nil
	default:
		return "", fmt.Errorf("unknown task %q", s)
	}
}

// OutputColumn is the column the model family writes its prediction to.
func (t Task) OutputColumn() string {
	switch t {
	case TaskRegression:
		return "prediction_label"
	case TaskAnomaly:
		return "Anomaly_Score"
	case TaskClassification:
		return "Label"
	default:
		return ""
	}
}

type Predictor interface {
	Predict(ctx context.Context, input Frame) (Frame, error)
}

// Model is a loaded, immutable model handle shared by all requests.
type Model struct {
	Name   string
	Task   Task
	Output string

	predictor Predictor
}

func NewModel(name string, task Task, predictor Predictor) *Model {
	return &Model{
		Name:      name,
		Task:      task,
		Output:    task.OutputColumn(),
		predictor: predictor,
	}
}

// Invoke runs a single-row frame through the model and returns the first
// value of the output column.
func (m *Model) Invoke(ctx context.Context, input Frame) (any, error) {
	if len(input.Data) != 1 {
		return nil, fmt.Errorf("model %s expects exactly one input row, got %d", m.Name, len(input.Data))
	}
	output, err := m.predictor.Predict(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", m.Name, err)
	}
	value, err := output.Value(m.Output)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", m.Name, err)
	}
	return value, nil
}
