package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type timeArg time.Time

func (a timeArg) Match(v driver.Value) bool {
	t, ok := v.(time.Time)
	return ok && t.Equal(time.Time(a))
}

func setupMock(t *testing.T, policy string) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	store := NewPostgresStore(sqlxDB, Options{
		Retention:    24 * time.Hour,
		InsertPolicy: policy,
		Now:          func() time.Time { return fixedNow },
	})
	return store, mock
}

func sampleResult(n int) models.ScrapeResult {
	classes := make([]models.FitnessClass, 0, n)
	for i := 0; i < n; i++ {
		start := fixedNow.Add(time.Duration(24+i) * time.Hour)
		classes = append(classes, models.FitnessClass{
			ID:         models.ClassID("cyclebar-sf", start, "Classic 50"),
			StudioID:   "cyclebar-sf",
			ClassName:  "Classic 50",
			Instructor: "Jordan",
			StartTime:  start,
			EndTime:    start.Add(50 * time.Minute),
			Duration:   50,
			Capacity:   models.IntPtr(20),
		})
	}
	return models.ScrapeResult{
		Brand:      "CycleBar",
		Status:     models.StatusSuccess,
		Message:    "Successfully fetched classes",
		Classes:    classes,
		ClassCount: n,
	}
}

func TestWriteScrapeResult_CommitsPruneInsertAndLog(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)
	result := sampleResult(2)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fitness_classes").
		WithArgs(timeArg(fixedNow.Add(-24*time.Hour)), "CycleBar").
		WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare(`ON CONFLICT \(id\) DO NOTHING`)
	for _, c := range result.Classes {
		prep.ExpectExec().
			WithArgs(c.ID, "cyclebar-sf", "Classic 50", "Jordan", timeArg(c.StartTime), timeArg(c.EndTime),
				50, 20, nil, nil, nil, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO scrape_logs").
		WithArgs("CycleBar", "success", "Successfully fetched classes", 2, timeArg(fixedNow), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.WriteScrapeResult(context.Background(), result))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteScrapeResult_ZeroClassesStillPrunesAndLogs(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)
	result := sampleResult(0)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fitness_classes").
		WithArgs(sqlmock.AnyArg(), "CycleBar").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO scrape_logs").
		WithArgs("CycleBar", "success", sqlmock.AnyArg(), 0, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.WriteScrapeResult(context.Background(), result))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteScrapeResult_RollsBackOnInsertFailure(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)
	result := sampleResult(2)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fitness_classes").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO fitness_classes")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	err := store.WriteScrapeResult(context.Background(), result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert class")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteScrapeResult_RollsBackOnLogFailure(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fitness_classes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO fitness_classes").ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO scrape_logs").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.WriteScrapeResult(context.Background(), sampleResult(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert scrape log")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteScrapeResult_UpsertPolicy(t *testing.T) {
	store, mock := setupMock(t, config.InsertUpsert)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fitness_classes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(`ON CONFLICT \(id\) DO UPDATE SET`).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO scrape_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.WriteScrapeResult(context.Background(), sampleResult(1)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteScrapeResult_RejectsFailedResult(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)

	err := store.WriteScrapeResult(context.Background(), models.ScrapeResult{Brand: "CycleBar", Status: models.StatusError})
	require.ErrorIs(t, err, ErrNotSuccessful)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendScrapeLog_FillsCompletedAt(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)

	mock.ExpectExec("INSERT INTO scrape_logs").
		WithArgs("Rumble", "error", "upstream down", 0, timeArg(fixedNow), "upstream down").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.AppendScrapeLog(context.Background(), models.ScrapeLog{
		Brand:        "Rumble",
		Status:       "error",
		Message:      models.OptionalString("upstream down"),
		ErrorDetails: models.OptionalString("upstream down"),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentScrapeLogs(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)

	rows := sqlmock.NewRows([]string{"id", "brand", "status", "message", "class_count", "completed_at", "error_details"}).
		AddRow(2, "Rumble", "error", "boom", 0, fixedNow, "boom").
		AddRow(1, "Rumble", "success", nil, 12, fixedNow.Add(-time.Hour), nil)
	mock.ExpectQuery("FROM scrape_logs").WithArgs("Rumble", 10).WillReturnRows(rows)

	logs, err := store.RecentScrapeLogs(context.Background(), "Rumble", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(2), logs[0].ID)
	require.NotNil(t, logs[0].ErrorDetails)
	assert.Nil(t, logs[1].Message)
	assert.Equal(t, 12, logs[1].ClassCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandStats(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)

	first := fixedNow.Add(time.Hour)
	rows := sqlmock.NewRows([]string{"brand", "studios", "classes", "upcoming", "first_start", "last_start"}).
		AddRow("CycleBar", 2, 14, 14, first, first.Add(72*time.Hour))
	mock.ExpectQuery("FROM fitness_classes").WithArgs("CycleBar", timeArg(fixedNow)).WillReturnRows(rows)

	stats, err := store.BrandStats(context.Background(), "CycleBar")
	require.NoError(t, err)
	assert.Equal(t, 14, stats.Classes)
	assert.Equal(t, 2, stats.Studios)
	require.NotNil(t, stats.First)
	assert.True(t, stats.First.Equal(first))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertStudios(t *testing.T) {
	store, mock := setupMock(t, config.InsertSkip)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO studios").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO studios").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpsertStudios(context.Background(), []models.Studio{
		{ID: "cyclebar-sf", Name: "CycleBar SoMa", Brand: "CycleBar", Location: "San Francisco"},
		{ID: "cyclebar-oak", Name: "CycleBar Rockridge", Brand: "CycleBar", Location: "Oakland"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
