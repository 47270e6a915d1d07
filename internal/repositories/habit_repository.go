package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "habittracker/internal/config"
	intdb "habittracker/internal/db"
	"habittracker/internal/domain"
	"habittracker/internal/domain/models"
	"habittracker/internal/paging"
	"habittracker/internal/sorting"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// HabitColumns whitelists the habit sort expressions.
var HabitColumns = intdb.Columns{
	"Id":                       "id",
	"Name":                     "name",
	"Description":              "description",
	"Type":                     "type",
	"Frequency.Type":           "frequency_type",
	"Frequency.TimesPerPeriod": "frequency_times_per_period",
	"Target.Value":             "target_value",
	"Target.Unit":              "target_unit",
	"Status":                   "status",
	"EndDate":                  "end_date",
	"CreatedAtUtc":             "created_at_utc",
	"UpdatedAtUtc":             "updated_at_utc",
	"LastCompletedAtUtc":       "last_completed_at_utc",
}

const habitSelect = `
	SELECT id, user_id, name, description, type,
	       frequency_type, frequency_times_per_period,
	       target_value, target_unit, status, is_archived, end_date,
	       milestone_target, milestone_current,
	       created_at_utc, updated_at_utc, last_completed_at_utc
	FROM habits`

// HabitFilter narrows a habit listing. Zero values mean no filter.
type HabitFilter struct {
	UserID string
	Search string
	Type   models.HabitType
	Status models.HabitStatus
}

func (f HabitFilter) where() (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		like := "%" + escapeLike(q) + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(COALESCE(description,'')) LIKE ?)")
		args = append(args, like, like)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

type HabitRepository struct {
	DB *sql.DB
}

func (r HabitRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// List returns one page of habits and the total match count. The count and
// the page are queried concurrently. pageSize <= 0 returns every match.
func (r HabitRepository) List(ctx context.Context, f HabitFilter, steps []sorting.OrderStep, page, pageSize int) ([]models.Habit, int, error) {
	db := r.db()
	if db == nil {
		return nil, 0, domain.InternalError{Msg: "db tidak tersedia"}
	}
	order, err := intdb.OrderBy(steps, HabitColumns, "CreatedAtUtc", "id")
	if err != nil {
		return nil, 0, domain.ConfigurationError{Msg: "habit sort", Err: err}
	}
	where, args := f.where()

	var (
		total  int
		habits []models.Habit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.QueryRowContext(gctx, "SELECT COUNT(*) FROM habits"+where, args...).Scan(&total)
	})
	g.Go(func() error {
		query := habitSelect + where + order
		pageArgs := append([]any{}, args...)
		if pageSize > 0 {
			query += " LIMIT ? OFFSET ?"
			pageArgs = append(pageArgs, pageSize, paging.Offset(page, pageSize))
		}
		rows, err := db.QueryContext(gctx, query, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			h, err := scanHabit(rows)
			if err != nil {
				return err
			}
			habits = append(habits, h)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("list habits: %w", err)
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, total, nil
}

// GetByID loads one habit of the user together with its tags.
func (r HabitRepository) GetByID(ctx context.Context, userID, id string) (models.Habit, error) {
	db := r.db()
	if db == nil {
		return models.Habit{}, domain.InternalError{Msg: "db tidak tersedia"}
	}
	row := db.QueryRowContext(ctx, habitSelect+" WHERE id = ? AND user_id = ? LIMIT 1", id, userID)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, domain.NotFoundError{Resource: "habit", Err: err}
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("get habit: %w", err)
	}
	tags, err := r.tagsOf(ctx, db, id)
	if err != nil {
		return models.Habit{}, err
	}
	h.Tags = tags
	return h, nil
}

func (r HabitRepository) tagsOf(ctx context.Context, db *sql.DB, habitID string) ([]models.Tag, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.name, t.description, t.created_at_utc, t.updated_at_utc
		FROM tags t
		JOIN habit_tags ht ON ht.tag_id = t.id
		WHERE ht.habit_id = ?
		ORDER BY t.name ASC`, habitID)
	if err != nil {
		return nil, fmt.Errorf("habit tags: %w", err)
	}
	defer rows.Close()
	tags := []models.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r HabitRepository) Create(ctx context.Context, h models.Habit) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db tidak tersedia"}
	}
	mTarget, mCurrent := milestoneArgs(h.Milestone)
	_, err := db.ExecContext(ctx, `
		INSERT INTO habits (
			id, user_id, name, description, type,
			frequency_type, frequency_times_per_period,
			target_value, target_unit, status, is_archived, end_date,
			milestone_target, milestone_current,
			created_at_utc, updated_at_utc, last_completed_at_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, intdb.NullString(h.Description), string(h.Type),
		string(h.Frequency.Type), h.Frequency.TimesPerPeriod,
		h.Target.Value, h.Target.Unit, string(h.Status), h.IsArchived, nullTime(h.EndDate),
		mTarget, mCurrent,
		h.CreatedAtUTC, nullTime(h.UpdatedAtUTC), nullTime(h.LastCompletedAtUTC),
	)
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	return nil
}

// Update writes every mutable column of h.
func (r HabitRepository) Update(ctx context.Context, h models.Habit) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db tidak tersedia"}
	}
	mTarget, mCurrent := milestoneArgs(h.Milestone)
	_, err := db.ExecContext(ctx, `
		UPDATE habits SET
			name = ?, description = ?, type = ?,
			frequency_type = ?, frequency_times_per_period = ?,
			target_value = ?, target_unit = ?, status = ?, is_archived = ?, end_date = ?,
			milestone_target = ?, milestone_current = ?,
			updated_at_utc = ?, last_completed_at_utc = ?
		WHERE id = ? AND user_id = ?`,
		h.Name, intdb.NullString(h.Description), string(h.Type),
		string(h.Frequency.Type), h.Frequency.TimesPerPeriod,
		h.Target.Value, h.Target.Unit, string(h.Status), h.IsArchived, nullTime(h.EndDate),
		mTarget, mCurrent,
		nullTime(h.UpdatedAtUTC), nullTime(h.LastCompletedAtUTC),
		h.ID, h.UserID,
	)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	return nil
}

func (r HabitRepository) Delete(ctx context.Context, userID, id string) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db tidak tersedia"}
	}
	res, err := db.ExecContext(ctx, "DELETE FROM habits WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "habit"}
	}
	return nil
}

// ReplaceTags makes tagIDs the exact tag set of the habit. It reports
// whether anything changed. Every tag must belong to the user.
func (r HabitRepository) ReplaceTags(ctx context.Context, userID, habitID string, tagIDs []string, now time.Time) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db tidak tersedia"}
	}
	wanted := lo.Uniq(tagIDs)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if len(wanted) > 0 {
		var owned int
		query := "SELECT COUNT(*) FROM tags WHERE user_id = ? AND id IN (" + placeholders(len(wanted)) + ")"
		args := append([]any{userID}, anyArgs(wanted)...)
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&owned); err != nil {
			return false, fmt.Errorf("cek tag: %w", err)
		}
		if owned != len(wanted) {
			return false, domain.ValidationError{Field: "tagIds", Msg: "One or more tag IDs is invalid"}
		}
	}

	rows, err := tx.QueryContext(ctx, "SELECT tag_id FROM habit_tags WHERE habit_id = ?", habitID)
	if err != nil {
		return false, fmt.Errorf("habit tags: %w", err)
	}
	var current []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, err
		}
		current = append(current, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	removed, added := lo.Difference(current, wanted)
	if len(removed) == 0 && len(added) == 0 {
		return false, nil
	}
	if len(removed) > 0 {
		query := "DELETE FROM habit_tags WHERE habit_id = ? AND tag_id IN (" + placeholders(len(removed)) + ")"
		args := append([]any{habitID}, anyArgs(removed)...)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("hapus habit tags: %w", err)
		}
	}
	if len(added) > 0 {
		values := make([]string, 0, len(added))
		args := make([]any, 0, len(added)*3)
		for _, tagID := range added {
			values = append(values, "(?, ?, ?)")
			args = append(args, habitID, tagID, now.UTC())
		}
		query := "INSERT INTO habit_tags (habit_id, tag_id, created_at_utc) VALUES " + strings.Join(values, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("tambah habit tags: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(s rowScanner) (models.Habit, error) {
	var (
		h                              models.Habit
		description                    sql.NullString
		typ, freqType, status          string
		endDate, updated, lastComplete sql.NullTime
		mTarget, mCurrent              sql.NullInt64
	)
	err := s.Scan(
		&h.ID, &h.UserID, &h.Name, &description, &typ,
		&freqType, &h.Frequency.TimesPerPeriod,
		&h.Target.Value, &h.Target.Unit, &status, &h.IsArchived, &endDate,
		&mTarget, &mCurrent,
		&h.CreatedAtUTC, &updated, &lastComplete,
	)
	if err != nil {
		return models.Habit{}, err
	}
	h.Type = models.HabitType(typ)
	h.Frequency.Type = models.FrequencyType(freqType)
	h.Status = models.HabitStatus(status)
	h.Description = stringPtr(description)
	h.EndDate = timePtr(endDate)
	h.UpdatedAtUTC = timePtr(updated)
	h.LastCompletedAtUTC = timePtr(lastComplete)
	if mTarget.Valid {
		h.Milestone = &models.Milestone{Target: int(mTarget.Int64), Current: int(mCurrent.Int64)}
	}
	return h, nil
}

func milestoneArgs(m *models.Milestone) (any, any) {
	if m == nil {
		return nil, nil
	}
	return m.Target, m.Current
}

func anyArgs(ids []string) []any {
	return lo.Map(ids, func(id string, _ int) any { return id })
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
