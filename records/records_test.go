package records

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcast/ml"
)

func TestParseRegression(t *testing.T) {
	form := url.Values{"floor_area": {"70"}, "cbd_dist": {"5000"}, "min_dist_mrt": {" 300.5 "}}

	rec, err := ParseRegression(form)
	require.NoError(t, err)
	assert.Equal(t, Regression{FloorAreaSqm: 70, CBDDist: 5000, MinDistMRT: 300.5}, rec)

	frame := rec.Frame()
	require.Len(t, frame.Data, 1)
	assert.Equal(t, RegressionColumns, frame.Columns)
	assert.Len(t, frame.Data[0], 15)
	assert.Equal(t, 70.0, frame.Data[0][0])
	for i, cell := range frame.Data[0][3:] {
		assert.Nil(t, cell, "placeholder %s", RegressionColumns[i+3])
	}
}

func TestParseRegressionInvalid(t *testing.T) {
	form := url.Values{"floor_area": {"big"}, "cbd_dist": {""}, "min_dist_mrt": {"NaN"}}

	_, err := ParseRegression(form)
	require.Error(t, err)

	errs := Errors(err)
	require.Len(t, errs, 3)
	var fe *FieldError
	require.True(t, errors.As(errs[0], &fe))
	assert.Equal(t, "floor_area", fe.Field)
	assert.Contains(t, errs[1].Error(), "cbd_dist is required")
	assert.Contains(t, errs[2].Error(), "min_dist_mrt is not a number")
}

func TestParseAnomalyCoercesAmount(t *testing.T) {
	cases := map[string]any{
		"12.5": 12.5,
		"-3":   -3.0,
		"abc":  nil,
		"":     nil,
		"inf":  nil,
	}
	for amt, want := range cases {
		form := url.Values{
			"fiscal_year":  {"2019"},
			"fiscal_month": {"7"},
			"dept_name":    {"PARKS"},
			"div_name":     {"ADMIN"},
			"cat_desc":     {"TRAVEL"},
			"amt":          {amt},
		}
		frame := ParseAnomaly(form).Frame()
		assert.Equal(t, AnomalyColumns, frame.Columns)
		assert.Equal(t, want, frame.Data[0][5], "amt %q", amt)
		assert.Equal(t, "2019", frame.Data[0][0])
	}
}

func TestParseAnomalyMissingFields(t *testing.T) {
	rec := ParseAnomaly(url.Values{"dept_name": {""}})
	assert.Nil(t, rec.FiscalYear)
	assert.Nil(t, rec.Amount)
	require.NotNil(t, rec.DeptName)
	assert.Equal(t, "", *rec.DeptName)
}

func TestParseMushroom(t *testing.T) {
	form := url.Values{}
	for _, col := range MushroomColumns {
		form.Set(col, "x")
	}
	form.Set("odor", "n")
	form.Set("habitat", "not-a-real-code")

	frame := ParseMushroom(form).Frame()
	require.Len(t, frame.Columns, 22)
	record := frame.Record(0)
	assert.Equal(t, "n", record["odor"])
	assert.Equal(t, "not-a-real-code", record["habitat"])
	assert.Equal(t, "x", record["cap_shape"])
}

func TestParseMushroomPartial(t *testing.T) {
	rec := ParseMushroom(url.Values{"odor": {"f"}})
	require.NotNil(t, rec.Odor)
	assert.Equal(t, "f", *rec.Odor)

	nulls := 0
	for _, cell := range rec.Frame().Data[0] {
		if cell == nil {
			nulls++
		}
	}
	assert.Equal(t, 21, nulls)
}

func TestBuild(t *testing.T) {
	_, err := Build(ml.TaskRegression, url.Values{})
	assert.Error(t, err)

	frame, err := Build(ml.TaskAnomaly, url.Values{})
	require.NoError(t, err)
	assert.Len(t, frame.Data, 1)

	frame, err = Build(ml.TaskClassification, url.Values{})
	require.NoError(t, err)
	assert.Len(t, frame.Columns, 22)

	_, err = Build(ml.Task("clustering"), url.Values{})
	assert.Error(t, err)
}
