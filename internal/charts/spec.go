// Package charts turns classified data into plotly.js figure specifications
// and static PNG renderings.
package charts

// Spec is a plotly.js figure: data traces plus layout, keyed by a DOM id
type Spec struct {
	ID     string  `json:"id"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is the subset of plotly trace attributes the dashboard uses
type Trace struct {
	Type      string    `json:"type"`
	Name      string    `json:"name,omitempty"`
	Y         []float64 `json:"y,omitempty"`
	R         []float64 `json:"r,omitempty"`
	Theta     []string  `json:"theta,omitempty"`
	Fill      string    `json:"fill,omitempty"`
	BoxPoints string    `json:"boxpoints,omitempty"`
	Jitter    float64   `json:"jitter,omitempty"`
	Marker    *Marker   `json:"marker,omitempty"`
	Line      *Line     `json:"line,omitempty"`
}

// Marker sets the size of the points drawn over a box
type Marker struct {
	Size float64 `json:"size"`
}

// Line sets the outline width of a box
type Line struct {
	Width float64 `json:"width"`
}

// Layout is the subset of plotly layout attributes the dashboard uses
type Layout struct {
	Title        Text   `json:"title"`
	YAxis        *Axis  `json:"yaxis,omitempty"`
	Polar        *Polar `json:"polar,omitempty"`
	ShowLegend   *bool  `json:"showlegend,omitempty"`
	PaperBGColor string `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string `json:"plot_bgcolor,omitempty"`
}

// Text is a plotly title object
type Text struct {
	Text string `json:"text"`
}

// Axis is a cartesian axis with a title
type Axis struct {
	Title Text `json:"title"`
}

// Polar configures the polar subplot of a radar chart
type Polar struct {
	RadialAxis RadialAxis `json:"radialaxis"`
}

// RadialAxis is the value axis of a polar subplot
type RadialAxis struct {
	Visible bool `json:"visible"`
}
