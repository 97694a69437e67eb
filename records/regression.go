package records

import (
	"net/url"

	"go.uber.org/multierr"

	"formcast/ml"
)

// RegressionColumns is the resale price model's input schema. Only the
// first three columns carry values; the rest are always null.
var RegressionColumns = []string{
	"floor_area_sqm",
	"cbd_dist",
	"min_dist_mrt",
	"block",
	"street_name",
	"town",
	"postal_code",
	"month",
	"flat_type",
	"storey_range",
	"flat_model",
	"lease_commence_date",
	"latitude",
	"longitude",
	"flat_age",
}

type Regression struct {
	FloorAreaSqm float64
	CBDDist      float64
	MinDistMRT   float64
}

// ParseRegression reads floor_area, cbd_dist and min_dist_mrt. All three
// are required and must be finite numbers.
func ParseRegression(form url.Values) (Regression, error) {
	var errs error
	area, err := requiredFloat(form, "floor_area")
	errs = multierr.Append(errs, err)
	cbd, err := requiredFloat(form, "cbd_dist")
	errs = multierr.Append(errs, err)
	mrt, err := requiredFloat(form, "min_dist_mrt")
	errs = multierr.Append(errs, err)
	if errs != nil {
		return Regression{}, errs
	}
	return Regression{FloorAreaSqm: area, CBDDist: cbd, MinDistMRT: mrt}, nil
}

func (r Regression) Frame() ml.Frame {
	row := make([]any, len(RegressionColumns))
	row[0] = r.FloorAreaSqm
	row[1] = r.CBDDist
	row[2] = r.MinDistMRT
	return ml.NewFrame(RegressionColumns, row)
}
