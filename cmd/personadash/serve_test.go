package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/internal/dataset"
	"github.com/jgoulah/personadash/pkg/models"
)

func TestAutoLoad_DefaultDataFile(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("data.csv", []byte("Location,Consumption\nLeeds,10\nYork,20\nHull,30\n"), 0644))

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	cfg := config.Default()

	res, err := autoLoad(context.Background(), cfg, logger, dataset.FileSource{Path: cfg.Dashboard.DataFile})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "data.csv", res.Source)
	assert.Equal(t, 3, res.Summary.Records)
	assert.InDelta(t, 20.0, res.Summary.MeanConsumption, 1e-9)
	assert.Equal(t, 1, res.Summary.Households(models.Saver))
	assert.Equal(t, 1, res.Summary.Households(models.Overconsumer))
	assert.Contains(t, logs.String(), `"msg":"dataset auto-loaded"`)
}

func TestAutoLoad_MissingDataFile(t *testing.T) {
	chdir(t, t.TempDir())
	cfg := config.Default()

	_, err := autoLoad(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), dataset.FileSource{Path: cfg.Dashboard.DataFile})
	assert.ErrorContains(t, err, "auto-loading data.csv")
}

func TestAutoLoad_NoSource(t *testing.T) {
	res, err := autoLoad(context.Background(), config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
