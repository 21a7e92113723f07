// Package pipeline runs one ingest, classify and aggregate cycle over a data
// source. Both the startup auto-load and every upload go through Run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/personadash/internal/aggregate"
	"github.com/jgoulah/personadash/internal/charts"
	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/internal/persona"
	"github.com/jgoulah/personadash/pkg/models"
)

// PersonaColumn is the name of the derived label column in the table view
const PersonaColumn = "Persona"

// Options parameterize a run
type Options struct {
	Columns    config.ColumnProfile
	RadarSize  int
	RatePerKWh float64
}

// Result is everything the presentation layer needs from one cycle. It is not
// modified after Run returns.
type Result struct {
	RunID          string
	Source         string
	Kind           string
	Columns        config.ColumnProfile
	Table          *dataset.Dataset // Source records plus the Persona column when classified
	Classification *persona.Classification
	Summary        models.Summary
	Frame          *charts.Frame
	Charts         []charts.Spec
	Notes          []string // Charts dropped for reasons other than a missing column
}

// Run loads the source and derives personas, summary and charts. A source
// without records fails with *persona.EmptyDatasetError; unreadable input and
// non-numeric cells in a numeric column fail with *dataset.ParseError.
// Missing optional columns only remove the charts that need them.
func Run(ctx context.Context, src dataset.Source, opts Options) (*Result, error) {
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, &persona.EmptyDatasetError{Source: src.Name()}
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Source:  src.Name(),
		Kind:    src.Kind(),
		Columns: opts.Columns,
		Table:   ds,
		Frame:   &charts.Frame{RadarSize: opts.RadarSize},
	}
	res.Summary = models.Summary{
		RunID:       res.RunID,
		Source:      res.Source,
		Records:     ds.Len(),
		GeneratedAt: time.Now().UTC(),
	}

	if err := res.classify(ds, opts); err != nil {
		return nil, err
	}
	if err := res.collect(ds, opts.Columns); err != nil {
		return nil, err
	}

	res.Charts = charts.Compose(res.Frame, charts.Default...)
	return res, nil
}

func (r *Result) classify(ds *dataset.Dataset, opts Options) error {
	col := opts.Columns.Consumption
	if !ds.HasColumn(col) {
		return nil
	}

	consumption, err := ds.Floats(col)
	if err != nil {
		return err
	}

	cls, err := persona.Classify(consumption)
	if err != nil {
		return err
	}

	labels := cls.Strings()
	table, err := ds.WithColumn(PersonaColumn, labels)
	if err != nil {
		return fmt.Errorf("adding persona column: %w", err)
	}

	r.Table = table
	r.Classification = cls
	r.Frame.Consumption = consumption
	r.Frame.Personas = labels
	r.Summary.Classified = true
	r.Summary.MeanConsumption = cls.Mean
	r.Summary.Personas = persona.WithCosts(persona.Counts(cls.Labels), cls.Labels, consumption, opts.RatePerKWh)
	return nil
}

func (r *Result) collect(ds *dataset.Dataset, cols config.ColumnProfile) error {
	if cols.Cluster != "" && ds.HasColumn(cols.Cluster) {
		clusters, err := ds.Strings(cols.Cluster)
		if err != nil {
			return err
		}
		r.Frame.Clusters = clusters
		for _, c := range aggregate.CountBy(clusters) {
			r.Summary.Clusters = append(r.Summary.Clusters, models.ClusterCount{Cluster: c.Key, Households: c.Count})
		}
	}

	if ds.HasColumn(cols.Location) && ds.HasColumn(cols.RadarValue) {
		locations, err := ds.Strings(cols.Location)
		if err != nil {
			return err
		}
		values, err := ds.Floats(cols.RadarValue)
		if err != nil {
			// The radar chart is optional; a bad cell drops it rather than the run
			r.Notes = append(r.Notes, fmt.Sprintf("radar chart omitted: %v", err))
			return nil
		}
		r.Frame.Locations = locations
		r.Frame.RadarValues = values
	}
	return nil
}

// PersonaGroups returns consumption grouped by persona, or nil when unclassified
func (r *Result) PersonaGroups() []aggregate.Group {
	if r.Frame.Personas == nil {
		return nil
	}
	return aggregate.GroupBy(r.Frame.Personas, r.Frame.Consumption)
}

// ClusterGroups returns consumption grouped by cluster, or nil when either column is missing
func (r *Result) ClusterGroups() []aggregate.Group {
	if r.Frame.Clusters == nil || r.Frame.Consumption == nil {
		return nil
	}
	return aggregate.GroupBy(r.Frame.Clusters, r.Frame.Consumption)
}

// NewOptions builds run options from the configuration for one column profile
func NewOptions(cfg *config.Config, cols config.ColumnProfile) Options {
	return Options{
		Columns:    cols,
		RadarSize:  cfg.Dashboard.RadarSize,
		RatePerKWh: cfg.RatePerKWh,
	}
}
