package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jgoulah/personadash/internal/charts"
	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/internal/persona"
	"github.com/jgoulah/personadash/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const autoloadCSV = `Household,Location,Consumption
H1,Leeds,10
H2,York,20
H3,Hull,30
`

const uploadCSV = `Household,Location,Monthly Consumption (kWh),Cluster,CO2 Offset (kg)
H1,Leeds,120,Low,3.1
H2,York,300,High,7.5
H3,Hull,210,Avg,5.2
H4,Bath,90,Low,2.4
H5,Ely,330,High,8.0
H6,Rye,200,Avg,4.9
H7,Wells,180,Avg,4.4
H8,Ripon,95,Low,2.2
`

func options(cols config.ColumnProfile) Options {
	return NewOptions(config.Default(), cols)
}

func TestRun_AutoLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(autoloadCSV), 0644))

	res, err := Run(context.Background(), dataset.FileSource{Path: path}, options(config.Default().AutoLoad))
	require.NoError(t, err)

	assert.Equal(t, path, res.Source)
	assert.Equal(t, "file", res.Kind)
	assert.NotEmpty(t, res.RunID)
	assert.True(t, res.Summary.Classified)
	assert.Equal(t, 20.0, res.Summary.MeanConsumption)
	assert.Equal(t, 3, res.Summary.Records)
	assert.Equal(t, []models.Persona{models.Saver, models.Moderate, models.Overconsumer}, res.Classification.Labels)

	assert.Equal(t, []string{"Household", "Location", "Consumption", "Persona"}, res.Table.Columns())
	assert.Equal(t, []string{"H1", "Leeds", "10", "Saver"}, res.Table.Row(0))

	var ids []string
	for _, c := range res.Charts {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{charts.PersonaBoxPlotID, charts.RadarID}, ids)
	assert.Nil(t, res.ClusterGroups())
	assert.Len(t, res.PersonaGroups(), 3)
}

func TestRun_Upload(t *testing.T) {
	src := dataset.BytesSource{Filename: "households.csv", Data: []byte(uploadCSV)}

	res, err := Run(context.Background(), src, options(config.Default().Upload))
	require.NoError(t, err)

	assert.Equal(t, "upload", res.Kind)
	assert.Len(t, res.Charts, 3)
	assert.Equal(t, []models.ClusterCount{
		{Cluster: "Low", Households: 3},
		{Cluster: "High", Households: 2},
		{Cluster: "Avg", Households: 3},
	}, res.Summary.Clusters)

	// Radar uses the offset column, first six rows only
	assert.Equal(t, []float64{3.1, 7.5, 5.2, 2.4, 8.0, 4.9}, res.Charts[2].Data[0].R)
	assert.Equal(t, []string{"Leeds", "York", "Hull", "Bath", "Ely", "Rye"}, res.Charts[2].Data[0].Theta)

	groups := res.ClusterGroups()
	require.Len(t, groups, 3)
	assert.Equal(t, "Low", groups[0].Key)
	assert.Equal(t, []float64{120, 90, 95}, groups[0].Values)
}

func TestRun_MissingColumnsSkipCharts(t *testing.T) {
	src := dataset.BytesSource{Filename: "partial.csv", Data: []byte("Household,Location\nH1,Leeds\nH2,York\n")}

	res, err := Run(context.Background(), src, options(config.Default().Upload))
	require.NoError(t, err)

	assert.False(t, res.Summary.Classified)
	assert.Nil(t, res.Classification)
	assert.Empty(t, res.Charts)
	assert.Equal(t, []string{"Household", "Location"}, res.Table.Columns())
}

func TestRun_BadRadarValuesDropOnlyTheRadar(t *testing.T) {
	csv := "Location,Consumption\nLeeds,10\nYork,20\n"
	cols := config.ColumnProfile{Consumption: "Consumption", Location: "Location", RadarValue: "Location"}

	res, err := Run(context.Background(), dataset.BytesSource{Data: []byte(csv)}, options(cols))
	require.NoError(t, err)

	require.Len(t, res.Charts, 1)
	assert.Equal(t, charts.PersonaBoxPlotID, res.Charts[0].ID)
	assert.Len(t, res.Notes, 1)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		check func(t *testing.T, err error)
	}{
		{
			name: "header only",
			data: "Location,Consumption\n",
			check: func(t *testing.T, err error) {
				var empty *persona.EmptyDatasetError
				assert.ErrorAs(t, err, &empty)
			},
		},
		{
			name: "empty file",
			data: "",
			check: func(t *testing.T, err error) {
				assert.True(t, dataset.IsParseError(err))
			},
		},
		{
			name: "non numeric consumption",
			data: "Location,Consumption\nLeeds,lots\n",
			check: func(t *testing.T, err error) {
				assert.True(t, dataset.IsParseError(err))
			},
		},
		{
			name: "binary",
			data: "\x00\x01\x02",
			check: func(t *testing.T, err error) {
				assert.True(t, dataset.IsParseError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), dataset.BytesSource{Data: []byte(tt.data)}, options(config.Default().AutoLoad))
			assert.Nil(t, res)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	_, err := Run(context.Background(), dataset.FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")}, options(config.Default().AutoLoad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, dataset.IsParseError(err))
}

func TestRun_Deterministic(t *testing.T) {
	src := dataset.BytesSource{Data: []byte(uploadCSV)}

	first, err := Run(context.Background(), src, options(config.Default().Upload))
	require.NoError(t, err)
	second, err := Run(context.Background(), src, options(config.Default().Upload))
	require.NoError(t, err)

	assert.Equal(t, first.Charts, second.Charts)
	assert.Equal(t, first.Classification, second.Classification)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_EstimatedCosts(t *testing.T) {
	opts := options(config.Default().AutoLoad)
	opts.RatePerKWh = 0.5

	res, err := Run(context.Background(), dataset.BytesSource{Data: []byte(autoloadCSV)}, opts)
	require.NoError(t, err)

	for _, c := range res.Summary.Personas {
		assert.NotEmpty(t, c.EstimatedCost, "persona %s", c.Persona)
	}
}

func TestRun_DataURISource(t *testing.T) {
	src := dataset.DataURISource{Filename: "x.csv", URI: "data:text/csv,Location%2CConsumption%0ALeeds%2C5%0A"}

	res, err := Run(context.Background(), src, options(config.Default().AutoLoad))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Households(models.Moderate))
}
