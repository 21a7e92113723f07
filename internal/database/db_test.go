package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/personadash/internal/dataset"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sample(t *testing.T, consumption ...string) *dataset.Dataset {
	t.Helper()
	rows := make([][]string, len(consumption))
	for i, c := range consumption {
		rows[i] = []string{"L" + c, c}
	}
	ds, err := dataset.New([]string{"Location", "Consumption"}, rows)
	require.NoError(t, err)
	return ds
}

func TestInsertAndLoadLatest(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.InsertDataset(ctx, "homes", sample(t, "10", "20"))
	require.NoError(t, err)
	id, err := db.InsertDataset(ctx, "homes", sample(t, "5", "6", "7"))
	require.NoError(t, err)

	info, ds, err := db.LatestDataset(ctx, "homes")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, 3, info.Rows)
	assert.Equal(t, []string{"Location", "Consumption"}, info.Columns)
	assert.Nil(t, info.PublishedAt)

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"L7", "7"}, ds.Row(2))
}

func TestLatestDataset_Missing(t *testing.T) {
	db := openTestDB(t)

	info, ds, err := db.LatestDataset(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Nil(t, ds)
}

func TestInsertDataset_HeaderOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	empty, err := dataset.New([]string{"Consumption"}, nil)
	require.NoError(t, err)
	_, err = db.InsertDataset(ctx, "empty", empty)
	require.NoError(t, err)

	_, ds, err := db.LatestDataset(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, []string{"Consumption"}, ds.Columns())
}

func TestListDatasetsAndMarkPublished(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.InsertDataset(ctx, "a", sample(t, "1"))
	require.NoError(t, err)
	_, err = db.InsertDataset(ctx, "b", sample(t, "2", "3"))
	require.NoError(t, err)

	require.NoError(t, db.MarkPublished(ctx, first))
	assert.Error(t, db.MarkPublished(ctx, 999))

	list, err := db.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Name)
	assert.Nil(t, list[0].PublishedAt)
	assert.Equal(t, "a", list[1].Name)
	assert.NotNil(t, list[1].PublishedAt)

	info, err := db.GetDataset(ctx, first)
	require.NoError(t, err)
	assert.NotNil(t, info.PublishedAt)

	missing, err := db.GetDataset(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSource(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	src := db.Source("homes")
	assert.Equal(t, "store", src.Kind())
	assert.Equal(t, "homes", src.Name())

	_, err := src.Load(ctx)
	assert.Error(t, err)

	_, err = db.InsertDataset(ctx, "homes", sample(t, "10"))
	require.NoError(t, err)

	ds, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestImportSource_PinnedToImport(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.InsertDataset(ctx, "homes", sample(t, "10", "20"))
	require.NoError(t, err)
	info, _, err := db.LatestDataset(ctx, "homes")
	require.NoError(t, err)

	_, err = db.InsertDataset(ctx, "homes", sample(t, "30", "40", "50"))
	require.NoError(t, err)

	src := db.ImportSource(info)
	assert.Equal(t, "homes", src.Name())
	assert.Equal(t, "store", src.Kind())

	ds, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	latest, err := db.Source("homes").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Len())
}
