package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/pkg/models"
)

func TestClassifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homes.csv")
	require.NoError(t, os.WriteFile(path, []byte("Location,Consumption\nLeeds,10\nYork,20\nHull,30\n"), 0644))

	res, err := classifyFile(context.Background(), config.Default(), path, "autoload")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Households(models.Saver))
	assert.Equal(t, 1, res.Summary.Households(models.Overconsumer))

	_, err = classifyFile(context.Background(), config.Default(), path, "nope")
	assert.ErrorContains(t, err, "unknown profile")
}

func TestConfigInit(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { cfgFile = "" })

	require.NoError(t, runConfigInit(configInitCmd, nil))
	assert.Error(t, runConfigInit(configInitCmd, nil))

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Default().Server.Port, cfg.Server.Port)
}
