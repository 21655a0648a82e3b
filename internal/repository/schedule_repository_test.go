package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestScheduleRepositoryGetWeeklyPattern(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "resource_id", "day_of_week", "available",
		"slot1_start", "slot1_end", "slot2_start", "slot2_end", "slot3_start", "slot3_end",
		"created_at", "updated_at",
	}).
		AddRow("wk-1", "res-1", 0, false, nil, nil, nil, nil, nil, nil, now, now).
		AddRow("wk-2", "res-1", 1, true, "08:00", "12:00", "13:00", "17:00", nil, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM weekly_availability WHERE resource_id = $1 ORDER BY day_of_week ASC")).
		WithArgs("res-1").
		WillReturnRows(rows)

	pattern, err := repo.GetWeeklyPattern(context.Background(), "res-1")
	require.NoError(t, err)
	require.Len(t, pattern, 2)
	assert.False(t, pattern[0].Available)
	assert.Len(t, pattern[1].Windows(), 2)
}

func TestScheduleRepositoryGetExceptions(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "resource_id", "date", "morning", "afternoon", "evening",
		"morning_start", "morning_end", "afternoon_start", "afternoon_end", "evening_start", "evening_end",
		"created_at", "updated_at",
	}).
		AddRow("ex-1", "res-1", from.AddDate(0, 0, 4), true, false, false,
			nil, nil, nil, nil, nil, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM availability_exceptions WHERE resource_id = $1 AND date >= $2 AND date <= $3")).
		WithArgs("res-1", from, to).
		WillReturnRows(rows)

	exceptions, err := repo.GetExceptions(context.Background(), "res-1", from, to)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	assert.True(t, exceptions[0].Open(models.DayPartMorning))
	assert.False(t, exceptions[0].Open(models.DayPartAfternoon))
}

func TestScheduleRepositoryUpsertWeeklyAssignsID(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_availability")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	row := &models.WeeklyAvailability{ResourceID: "res-1", DayOfWeek: 2, Available: true}
	require.NoError(t, repo.UpsertWeekly(context.Background(), row))
	assert.NotEmpty(t, row.ID)
}

func TestScheduleRepositoryDeleteException(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	date := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_exceptions WHERE resource_id = $1 AND date = $2")).
		WithArgs("res-1", date).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteException(context.Background(), "res-1", date))
}
