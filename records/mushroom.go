package records

import (
	"net/url"

	"formcast/ml"
)

// MushroomColumns doubles as the list of form field names.
var MushroomColumns = []string{
	"cap_shape",
	"cap_surface",
	"cap_color",
	"bruises",
	"odor",
	"gill_attachment",
	"gill_spacing",
	"gill_size",
	"gill_color",
	"stalk_shape",
	"stalk_root",
	"stalk_surface_above_ring",
	"stalk_surface_below_ring",
	"stalk_color_above_ring",
	"stalk_color_below_ring",
	"veil_type",
	"veil_color",
	"ring_number",
	"ring_type",
	"spore_print_color",
	"population",
	"habitat",
}

// Mushroom holds the categorical attribute codes as submitted. Codes are not
// checked against any vocabulary.
type Mushroom struct {
	CapShape              *string
	CapSurface            *string
	CapColor              *string
	Bruises               *string
	Odor                  *string
	GillAttachment        *string
	GillSpacing           *string
	GillSize              *string
	GillColor             *string
	StalkShape            *string
	StalkRoot             *string
	StalkSurfaceAboveRing *string
	StalkSurfaceBelowRing *string
	StalkColorAboveRing   *string
	StalkColorBelowRing   *string
	VeilType              *string
	VeilColor             *string
	RingNumber            *string
	RingType              *string
	SporePrintColor       *string
	Population            *string
	Habitat               *string
}

// fields lists the struct fields in MushroomColumns order.
func (m *Mushroom) fields() []**string {
	return []**string{
		&m.CapShape,
		&m.CapSurface,
		&m.CapColor,
		&m.Bruises,
		&m.Odor,
		&m.GillAttachment,
		&m.GillSpacing,
		&m.GillSize,
		&m.GillColor,
		&m.StalkShape,
		&m.StalkRoot,
		&m.StalkSurfaceAboveRing,
		&m.StalkSurfaceBelowRing,
		&m.StalkColorAboveRing,
		&m.StalkColorBelowRing,
		&m.VeilType,
		&m.VeilColor,
		&m.RingNumber,
		&m.RingType,
		&m.SporePrintColor,
		&m.Population,
		&m.Habitat,
	}
}

func ParseMushroom(form url.Values) Mushroom {
	var m Mushroom
	for i, field := range m.fields() {
		*field = optional(form, MushroomColumns[i])
	}
	return m
}

func (m Mushroom) Frame() ml.Frame {
	fields := m.fields()
	row := make([]any, len(fields))
	for i, field := range fields {
		row[i] = stringCell(*field)
	}
	return ml.NewFrame(MushroomColumns, row)
}
