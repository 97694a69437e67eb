// Package records maps submitted form fields onto the fixed-schema,
// single-row inputs each model family expects.
package records

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/multierr"

	"formcast/ml"
)

// FieldError reports a form field that could not be turned into a column value.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s: %q", e.Field, e.Reason, e.Value)
}

// Build parses form into the record for task and returns its frame.
func Build(task ml.Task, form url.Values) (ml.Frame, error) {
	switch task {
	case ml.TaskRegression:
		rec, err := ParseRegression(form)
		if err != nil {
			return ml.Frame{}, err
		}
		return rec.Frame(), nil
	case ml.TaskAnomaly:
		return ParseAnomaly(form).Frame(), nil
	case ml.TaskClassification:
		return ParseMushroom(form).Frame(), nil
	default:
		return ml.Frame{}, fmt.Errorf("no record type for task %q", task)
	}
}

// optional returns nil when field was not submitted at all. A submitted
// empty string is kept as an empty string.
func optional(form url.Values, field string) *string {
	values, ok := form[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func requiredFloat(form url.Values, field string) (float64, error) {
	raw := optional(form, field)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return 0, &FieldError{Field: field, Reason: "is required"}
	}
	f, ok := parseFloat(*raw)
	if !ok {
		return 0, &FieldError{Field: field, Value: *raw, Reason: "is not a number"}
	}
	return f, nil
}

// coerceFloat never fails: anything that is not a finite number becomes null.
func coerceFloat(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	f, ok := parseFloat(*raw)
	if !ok {
		return nil
	}
	return &f
}

func parseFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringCell(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Errors splits an aggregated validation error into its field errors.
func Errors(err error) []error {
	return multierr.Errors(err)
}
