package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predict(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-models", "../../models"}, args...), &out)
	return out.String(), err
}

func TestBundledModels(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"small flat near cbd", []string{"-task", "regression", "floor_area=70", "cbd_dist=5000", "min_dist_mrt=300"}, "520000\n"},
		{"large flat near mrt", []string{"-task", "regression", "floor_area=120", "cbd_dist=5000", "min_dist_mrt=300"}, "690000\n"},
		{"ordinary spend", []string{"-task", "anomaly", "amt=250.5", "dept_name=PARKS"}, "Not Anomaly\n"},
		{"non numeric amount", []string{"-task", "anomaly", "amt=abc"}, "Not Anomaly\n"},
		{"large spend", []string{"-task", "anomaly", "amt=250000"}, "Anomaly\n"},
		{"foul odor", []string{"-task", "classification", "odor=f"}, "p\n"},
		{"no odor", []string{"-task", "classification", "odor=n", "spore_print_color=k"}, "e\n"},
		{"empty form", []string{"-task", "classification"}, "e\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := predict(t, c.args...)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestRunErrors(t *testing.T) {
	_, err := predict(t, "-task", "forecast")
	assert.Error(t, err)

	_, err = predict(t, "-task", "regression", "floor_area")
	assert.ErrorContains(t, err, "key=value")

	_, err = predict(t, "-task", "regression", "floor_area=big", "cbd_dist=1", "min_dist_mrt=1")
	assert.ErrorContains(t, err, "floor_area is not a number")

	var out bytes.Buffer
	err = run(context.Background(), []string{"-models", t.TempDir(), "-task", "anomaly"}, &out)
	assert.ErrorContains(t, err, "load models")
}

func TestRunWithCache(t *testing.T) {
	got, err := predict(t, "-cache", "8", "-task", "classification", "odor=a")
	require.NoError(t, err)
	assert.Equal(t, "e\n", got)
}
