package ml

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	LabelAnomaly    = "Anomaly"
	LabelNotAnomaly = "Not Anomaly"
)

var ErrNullPrediction = errors.New("model returned a null prediction")

// AnomalyLabel maps an anomaly score to its display label. Only a strictly
// positive score is anomalous; zero, null and non-numeric scores are not.
func AnomalyLabel(score any) string {
	if f, ok := Float(score); ok && f > 0 {
		return LabelAnomaly
	}
	return LabelNotAnomaly
}

// FormatResult turns the raw output cell of a task into its display string.
func FormatResult(task Task, value any) (string, error) {
	switch task {
	case TaskRegression:
		f, ok := Float(value)
		if !ok {
			if value == nil {
				return "", ErrNullPrediction
			}
			return "", fmt.Errorf("regression output %v is not numeric", value)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case TaskAnomaly:
		return AnomalyLabel(value), nil
	case TaskClassification:
		switch v := value.(type) {
		case nil:
			return "", ErrNullPrediction
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		default:
			return fmt.Sprint(v), nil
		}
	default:
		return "", fmt.Errorf("unknown task %q", task)
	}
}
