package db

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/monitoring"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/testutil"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

// setupTestDB creates a migrated database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNewDB_MigratesToLatest(t *testing.T) {
	database := setupTestDB(t)

	migFS, err := getMigrationsFS()
	require.NoError(t, err)

	status, err := database.GetMigrationStatus(migFS)
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.LatestVersion)
	assert.Equal(t, status.LatestVersion, status.CurrentVersion)
	assert.False(t, status.Dirty)
	assert.Zero(t, status.Pending())

	var n int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('datasets', 'accidents')`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestEmbeddedMigrationsFS(t *testing.T) {
	migFS, err := getMigrationsFS()
	require.NoError(t, err)

	ups, err := fs.Glob(migFS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migFS, "*.down.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups), "every up migration needs a down")
}

func TestMigrateDownAndUp(t *testing.T) {
	database, err := OpenDB(filepath.Join(t.TempDir(), "mig.db"))
	require.NoError(t, err)
	defer database.Close()

	migFS, err := getMigrationsFS()
	require.NoError(t, err)

	version, _, err := database.MigrateVersion(migFS)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, database.MigrateUp(migFS))
	version, _, err = database.MigrateVersion(migFS)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	require.NoError(t, database.MigrateDown(migFS))
	version, _, err = database.MigrateVersion(migFS)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	// up again is idempotent past the latest version
	require.NoError(t, database.MigrateUp(migFS))
	require.NoError(t, database.MigrateUp(migFS))
}

func TestMigrateForce(t *testing.T) {
	database := setupTestDB(t)
	migFS, err := getMigrationsFS()
	require.NoError(t, err)

	require.NoError(t, database.MigrateForce(migFS, 1))
	status, err := database.GetMigrationStatus(migFS)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.CurrentVersion)
	assert.Equal(t, uint(1), status.Pending())
}

func TestGetLatestMigrationVersion_Empty(t *testing.T) {
	_, err := GetLatestMigrationVersion(fstest.MapFS{})
	assert.Error(t, err)

	v, err := GetLatestMigrationVersion(fstest.MapFS{
		"000003_c.up.sql": {Data: []byte("SELECT 1;")},
		"000010_j.up.sql": {Data: []byte("SELECT 1;")},
		"README.md":       {Data: []byte("notes")},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(10), v)
}

func sampleDataset() accident.Dataset {
	ds := testutil.Dataset(
		testutil.Record(0, 19.07, 72.87, "Fatal"),
		testutil.Record(1, 28.61, 77.20, ""),
		testutil.Record(2, 12.97, 77.59, "weird"),
		accident.Record{Index: 3, Longitude: accident.Float64(10), Severity: accident.SeverityMinor,
			TimeOfDay: accident.Night, Weather: accident.Foggy},
		testutil.Record(4, math.NaN(), 1, "Major"),
	)
	ds.Records[0].TimeOfDay = accident.Morning
	ds.Records[0].Weather = accident.Rainy
	return ds
}

func TestCreateAndLoadDataset(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	ds := sampleDataset()

	info, err := database.CreateDataset(ctx, "mumbai", ds)
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "mumbai", info.Name)
	assert.Equal(t, 5, info.RecordCount)

	gotInfo, got, err := database.LoadDataset(ctx, info.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(info, gotInfo); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}

	// NaN is stored as NULL and comes back missing
	want := ds
	want.Records = append([]accident.Record(nil), ds.Records...)
	want.Records[4].Latitude = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, accident.SeverityUnknown, got.Records[1].Severity)
	assert.Equal(t, accident.SeverityOther, got.Records[2].Severity)
}

func TestListAndDeleteDatasets(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	list, err := database.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	clock := timeutil.NewMockClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	database.SetClock(clock)

	a, err := database.CreateDataset(ctx, "a", sampleDataset())
	require.NoError(t, err)
	clock.Advance(time.Minute)
	b, err := database.CreateDataset(ctx, "b", testutil.Dataset())
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), b.CreatedAt)

	list, err = database.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// newest first
	assert.Equal(t, []string{b.ID, a.ID}, []string{list[0].ID, list[1].ID})
	assert.Equal(t, 0, list[0].RecordCount)

	require.NoError(t, database.DeleteDataset(ctx, a.ID))

	_, _, err = database.LoadDataset(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))

	// records cascade with the dataset
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM accidents WHERE dataset_id = ?`, a.ID).Scan(&n))
	assert.Zero(t, n)

	err = database.DeleteDataset(ctx, a.ID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestGetDatasetInfo_NotFound(t *testing.T) {
	database := setupTestDB(t)
	_, err := database.GetDatasetInfo(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestCreateDataset_DuplicateIndexRollsBack(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	ds := testutil.Dataset(testutil.Record(0, 1, 1, "Minor"), testutil.Record(0, 2, 2, "Minor"))

	_, err := database.CreateDataset(ctx, "dup", ds)
	require.Error(t, err)

	list, err := database.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "failed insert must not leave a dataset behind")
}

func TestCreateDataset_InfiniteCoordinatesStoredAsNull(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	ds := testutil.Dataset(
		testutil.Record(0, math.Inf(1), 1, "Minor"),
		testutil.Record(1, 2, math.Inf(-1), "Minor"),
	)

	info, err := database.CreateDataset(ctx, "inf", ds)
	require.NoError(t, err)
	_, got, err := database.LoadDataset(ctx, info.ID)
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	assert.Nil(t, got.Records[0].Latitude)
	assert.Equal(t, 1.0, *got.Records[0].Longitude)
	assert.Nil(t, got.Records[1].Longitude)
}

func TestOpenDB_RemembersPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elsewhere.db")
	database, err := NewDB(path)
	require.NoError(t, err)
	defer database.Close()
	assert.Equal(t, path, database.Path())
}

func TestAttachAdminRoutes(t *testing.T) {
	database := setupTestDB(t)
	mux := http.NewServeMux()
	database.AttachAdminRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/debug/backup", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gzip", w.Header().Get("Content-Type"))
	// gzip magic
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0x1f, 0x8b}))
}

func TestRunMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	var out bytes.Buffer

	require.NoError(t, RunMigrateCommand([]string{"status"}, path, &out))
	assert.Contains(t, out.String(), "behind")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"up"}, path, &out))
	assert.Contains(t, out.String(), "Current version: 2")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"status"}, path, &out))
	assert.Contains(t, out.String(), "up to date")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"down"}, path, &out))
	assert.Contains(t, out.String(), "Current version: 1")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"force", "2"}, path, &out))
	assert.Contains(t, out.String(), "forced to 2")

	assert.Error(t, RunMigrateCommand([]string{"force"}, path, &out))
	assert.Error(t, RunMigrateCommand([]string{"force", "x"}, path, &out))
	assert.Error(t, RunMigrateCommand([]string{"sideways"}, path, &out))
	assert.Error(t, RunMigrateCommand(nil, path, &out))

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"help"}, path, &out))
	assert.Contains(t, out.String(), "Database Migration Commands")
}
