package charts

import (
	"github.com/jgoulah/personadash/internal/aggregate"
)

const (
	PersonaBoxPlotID = "boxplot"
	ClusterBoxPlotID = "cluster-boxplot"
	RadarID          = "radar"

	consumptionAxisTitle = "Monthly Consumption (kWh)"
	white                = "#ffffff"
)

// Frame holds the columns a chart may draw from. A nil slice means the column
// was not available for this dataset.
type Frame struct {
	Consumption []float64
	Personas    []string
	Clusters    []string
	Locations   []string
	RadarValues []float64
	RadarSize   int
}

// Builder returns a chart for the frame, or false when the columns it needs
// are missing
type Builder func(f *Frame) (Spec, bool)

// Default is every chart the dashboard knows, in display order
var Default = []Builder{PersonaBoxPlot, ClusterBoxPlot, Radar}

// Compose runs each builder and keeps the charts that could be built
func Compose(f *Frame, builders ...Builder) []Spec {
	specs := make([]Spec, 0, len(builders))
	for _, build := range builders {
		if spec, ok := build(f); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// PersonaBoxPlot draws the consumption distribution of each persona
func PersonaBoxPlot(f *Frame) (Spec, bool) {
	if f.Consumption == nil || f.Personas == nil {
		return Spec{}, false
	}
	return boxPlot(PersonaBoxPlotID, "Consumption Boxplot by Persona", aggregate.GroupBy(f.Personas, f.Consumption)), true
}

// ClusterBoxPlot draws the consumption distribution of each pre-assigned cluster
func ClusterBoxPlot(f *Frame) (Spec, bool) {
	if f.Consumption == nil || f.Clusters == nil {
		return Spec{}, false
	}
	return boxPlot(ClusterBoxPlotID, "Consumption Boxplot by Cluster", aggregate.GroupBy(f.Clusters, f.Consumption)), true
}

// Radar draws the first RadarSize locations and their values
func Radar(f *Frame) (Spec, bool) {
	if f.Locations == nil || f.RadarValues == nil {
		return Spec{}, false
	}

	pairs := aggregate.Radar(f.Locations, f.RadarValues, f.RadarSize)
	trace := Trace{
		Type:  "scatterpolar",
		Name:  "Sample CO₂ Offset",
		Fill:  "toself",
		R:     make([]float64, len(pairs)),
		Theta: make([]string, len(pairs)),
	}
	for i, p := range pairs {
		trace.R[i] = p.Value
		trace.Theta[i] = p.Category
	}

	hideLegend := false
	return Spec{
		ID:   RadarID,
		Data: []Trace{trace},
		Layout: Layout{
			Title:        Text{Text: "Radar Chart – Simulated CO₂ Offset per Location"},
			Polar:        &Polar{RadialAxis: RadialAxis{Visible: true}},
			ShowLegend:   &hideLegend,
			PaperBGColor: white,
		},
	}, true
}

func boxPlot(id, title string, groups []aggregate.Group) Spec {
	traces := make([]Trace, len(groups))
	for i, g := range groups {
		traces[i] = Trace{
			Type:      "box",
			Name:      g.Key,
			Y:         g.Values,
			BoxPoints: "all",
			Jitter:    0.3,
			Marker:    &Marker{Size: 4},
			Line:      &Line{Width: 1.5},
		}
	}

	return Spec{
		ID:   id,
		Data: traces,
		Layout: Layout{
			Title:        Text{Text: title},
			YAxis:        &Axis{Title: Text{Text: consumptionAxisTitle}},
			PaperBGColor: white,
			PlotBGColor:  white,
		},
	}
}
