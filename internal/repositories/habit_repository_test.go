package repositories

import (
	"context"
	"math"
	"testing"
	"time"

	"habittracker/internal/domain"
	"habittracker/internal/domain/models"
	"habittracker/internal/sorting"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var habitRowColumns = []string{
	"id", "user_id", "name", "description", "type",
	"frequency_type", "frequency_times_per_period",
	"target_value", "target_unit", "status", "is_archived", "end_date",
	"milestone_target", "milestone_current",
	"created_at_utc", "updated_at_utc", "last_completed_at_utc",
}

var created = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func habitRow(rows *sqlmock.Rows, id, name string) *sqlmock.Rows {
	return rows.AddRow(id, "u_1", name, nil, "measurable",
		"daily", 1, 30, "pages", "ongoing", false, nil,
		nil, nil, created, nil, nil)
}

func newMock(t *testing.T) (HabitRepository, TagRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return HabitRepository{DB: conn}, TagRepository{DB: conn}, mock
}

func TestHabitListPagesAndCounts(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM habits WHERE user_id = \? AND \(LOWER\(name\) LIKE \?`).
		WithArgs("u_1", "%read%", "%read%", "measurable").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`FROM habits WHERE .* ORDER BY name ASC, created_at_utc DESC, id ASC LIMIT \? OFFSET \?`).
		WithArgs("u_1", "%read%", "%read%", "measurable", 5, 5).
		WillReturnRows(habitRow(habitRow(sqlmock.NewRows(habitRowColumns), "h_1", "Read"), "h_2", "Read more"))

	steps := []sorting.OrderStep{{Path: "Name", Ascending: true}, {Path: "CreatedAtUtc"}}
	habits, total, err := repo.List(context.Background(),
		HabitFilter{UserID: "u_1", Search: " Read ", Type: models.HabitTypeMeasurable}, steps, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, habits, 2)
	assert.Equal(t, "h_2", habits[1].ID)
	assert.Nil(t, habits[0].Description)
	assert.Nil(t, habits[0].Milestone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitListEscapesLikeWildcards(t *testing.T) {
	f := HabitFilter{UserID: "u_1", Search: "100%_done"}
	_, args := f.where()
	assert.Equal(t, []any{"u_1", `%100\%\_done%`, `%100\%\_done%`}, args)
}

func TestHabitListUnknownSortIsConfigurationError(t *testing.T) {
	repo, _, _ := newMock(t)
	_, _, err := repo.List(context.Background(), HabitFilter{UserID: "u_1"},
		[]sorting.OrderStep{{Path: "Nope"}}, 1, 10)
	assert.True(t, domain.IsConfiguration(err))
}

func TestHabitGetByIDWithTags(t *testing.T) {
	repo, _, mock := newMock(t)
	rows := sqlmock.NewRows(habitRowColumns).AddRow("h_1", "u_1", "Read", "daily pages", "measurable",
		"daily", 1, 30, "pages", "ongoing", false, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		100, 20, created, nil, nil)
	mock.ExpectQuery(`FROM habits WHERE id = \? AND user_id = \?`).WithArgs("h_1", "u_1").WillReturnRows(rows)
	mock.ExpectQuery(`FROM tags t\s+JOIN habit_tags`).WithArgs("h_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "description", "created_at_utc", "updated_at_utc"}).
			AddRow("t_1", "u_1", "health", nil, created, nil))

	h, err := repo.GetByID(context.Background(), "u_1", "h_1")
	require.NoError(t, err)
	require.NotNil(t, h.Description)
	assert.Equal(t, "daily pages", *h.Description)
	require.NotNil(t, h.Milestone)
	assert.Equal(t, 20, h.Milestone.Current)
	require.NotNil(t, h.EndDate)
	require.Len(t, h.Tags, 1)
	assert.Equal(t, "health", h.Tags[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitGetByIDNotFound(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.ExpectQuery(`FROM habits WHERE id = \?`).WithArgs("h_x", "u_1").
		WillReturnRows(sqlmock.NewRows(habitRowColumns))

	_, err := repo.GetByID(context.Background(), "u_1", "h_x")
	assert.True(t, domain.IsNotFound(err))
}

func TestHabitCreate(t *testing.T) {
	repo, _, mock := newMock(t)
	h := models.Habit{
		ID: "h_1", UserID: "u_1", Name: "Read", Type: models.HabitTypeMeasurable,
		Frequency: models.Frequency{Type: models.FrequencyDaily, TimesPerPeriod: 1},
		Target:    models.Target{Value: 30, Unit: "pages"},
		Status:    models.HabitStatusOngoing, CreatedAtUTC: created,
		Milestone: &models.Milestone{Target: 10},
	}
	mock.ExpectExec("INSERT INTO habits").
		WithArgs("h_1", "u_1", "Read", nil, "measurable", "daily", 1, 30, "pages", "ongoing", false, nil,
			10, 0, created, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), h))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitDeleteMissing(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.ExpectExec("DELETE FROM habits").WithArgs("h_x", "u_1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u_1", "h_x")
	assert.True(t, domain.IsNotFound(err))
}

func TestReplaceTagsAppliesDifference(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tags WHERE user_id = \? AND id IN \(\?, \?\)`).
		WithArgs("u_1", "t_2", "t_3").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT tag_id FROM habit_tags").WithArgs("h_1").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow("t_1").AddRow("t_2"))
	mock.ExpectExec(`DELETE FROM habit_tags WHERE habit_id = \? AND tag_id IN \(\?\)`).
		WithArgs("h_1", "t_1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO habit_tags`).
		WithArgs("h_1", "t_3", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := repo.ReplaceTags(context.Background(), "u_1", "h_1", []string{"t_2", "t_3", "t_3"}, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTagsUnchanged(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT tag_id FROM habit_tags").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow("t_1"))
	mock.ExpectRollback()

	changed, err := repo.ReplaceTags(context.Background(), "u_1", "h_1", []string{"t_1"}, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTagsRejectsForeignTag(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := repo.ReplaceTags(context.Background(), "u_1", "h_1", []string{"t_9"}, time.Now())
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagCreateDuplicateIsConflict(t *testing.T) {
	_, repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO tags").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), models.Tag{ID: "t_1", UserID: "u_1", Name: "health", CreatedAtUTC: created})
	require.True(t, domain.IsConflict(err))
	assert.Contains(t, err.Error(), "The tag 'health' already exists")
}

func TestTagList(t *testing.T) {
	_, repo, mock := newMock(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tags`).WithArgs("u_1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM tags WHERE user_id = \? ORDER BY name ASC, id ASC LIMIT`).WithArgs("u_1", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "description", "created_at_utc", "updated_at_utc"}).
			AddRow("t_1", "u_1", "health", "body", created, created))

	tags, total, err := repo.List(context.Background(), "u_1", nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tags, 1)
	require.NotNil(t, tags[0].UpdatedAtUTC)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitListHugePageNeverSendsNegativeOffset(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT COUNT`).WithArgs("u_1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`LIMIT \? OFFSET \?`).
		WithArgs("u_1", 10, (math.MaxInt/10-1)*10).
		WillReturnRows(sqlmock.NewRows(habitRowColumns))

	habits, total, err := repo.List(context.Background(), HabitFilter{UserID: "u_1"}, nil, math.MaxInt, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, habits)
	assert.NoError(t, mock.ExpectationsWereMet())
}
