package records

import (
	"net/url"

	"formcast/ml"
)

var AnomalyColumns = []string{"FISCAL_YR", "FISCAL_MTH", "DEPT_NAME", "DIV_NAME", "CAT_DESC", "AMT"}

// Anomaly is one spending transaction. Nil fields are nulls.
type Anomaly struct {
	FiscalYear  *string
	FiscalMonth *string
	DeptName    *string
	DivName     *string
	CatDesc     *string
	Amount      *float64
}

// ParseAnomaly never rejects input: a missing field is null and an amount
// that is not a finite number is coerced to null.
func ParseAnomaly(form url.Values) Anomaly {
	return Anomaly{
		FiscalYear:  optional(form, "fiscal_year"),
		FiscalMonth: optional(form, "fiscal_month"),
		DeptName:    optional(form, "dept_name"),
		DivName:     optional(form, "div_name"),
		CatDesc:     optional(form, "cat_desc"),
		Amount:      coerceFloat(optional(form, "amt")),
	}
}

func (a Anomaly) Frame() ml.Frame {
	return ml.NewFrame(AnomalyColumns, []any{
		stringCell(a.FiscalYear),
		stringCell(a.FiscalMonth),
		stringCell(a.DeptName),
		stringCell(a.DivName),
		stringCell(a.CatDesc),
		floatCell(a.Amount),
	})
}
