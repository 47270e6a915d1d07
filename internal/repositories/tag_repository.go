package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "habittracker/internal/config"
	intdb "habittracker/internal/db"
	"habittracker/internal/domain"
	"habittracker/internal/domain/models"
	"habittracker/internal/paging"
	"habittracker/internal/sorting"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/sync/errgroup"
)

const mysqlDuplicateEntry = 1062

var TagColumns = intdb.Columns{
	"Id":           "id",
	"Name":         "name",
	"CreatedAtUtc": "created_at_utc",
}

const tagSelect = `SELECT id, user_id, name, description, created_at_utc, updated_at_utc FROM tags`

type TagRepository struct {
	DB *sql.DB
}

func (r TagRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r TagRepository) List(ctx context.Context, userID string, steps []sorting.OrderStep, page, pageSize int) ([]models.Tag, int, error) {
	db := r.db()
	if db == nil {
		return nil, 0, domain.InternalError{Msg: "db tidak tersedia"}
	}
	order, err := intdb.OrderBy(steps, TagColumns, "Name", "id")
	if err != nil {
		return nil, 0, domain.ConfigurationError{Msg: "tag sort", Err: err}
	}
	var (
		total int
		tags  []models.Tag
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.QueryRowContext(gctx, "SELECT COUNT(*) FROM tags WHERE user_id = ?", userID).Scan(&total)
	})
	g.Go(func() error {
		query := tagSelect + " WHERE user_id = ?" + order
		args := []any{userID}
		if pageSize > 0 {
			query += " LIMIT ? OFFSET ?"
			args = append(args, pageSize, paging.Offset(page, pageSize))
		}
		rows, err := db.QueryContext(gctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			t, err := scanTag(rows)
			if err != nil {
				return err
			}
			tags = append(tags, t)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, total, nil
}

func (r TagRepository) GetByID(ctx context.Context, userID, id string) (models.Tag, error) {
	db := r.db()
	if db == nil {
		return models.Tag{}, domain.InternalError{Msg: "db tidak tersedia"}
	}
	t, err := scanTag(db.QueryRowContext(ctx, tagSelect+" WHERE id = ? AND user_id = ? LIMIT 1", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tag{}, domain.NotFoundError{Resource: "tag", Err: err}
	}
	if err != nil {
		return models.Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

func (r TagRepository) Create(ctx context.Context, t models.Tag) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db tidak tersedia"}
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO tags (id, user_id, name, description, created_at_utc, updated_at_utc) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.Name, intdb.NullString(t.Description), t.CreatedAtUTC, nullTime(t.UpdatedAtUTC),
	)
	if err != nil {
		return tagWriteError(t.Name, err)
	}
	return nil
}

func (r TagRepository) Update(ctx context.Context, t models.Tag) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db tidak tersedia"}
	}
	_, err := db.ExecContext(ctx,
		"UPDATE tags SET name = ?, description = ?, updated_at_utc = ? WHERE id = ? AND user_id = ?",
		t.Name, intdb.NullString(t.Description), nullTime(t.UpdatedAtUTC), t.ID, t.UserID,
	)
	if err != nil {
		return tagWriteError(t.Name, err)
	}
	return nil
}

func (r TagRepository) Delete(ctx context.Context, userID, id string) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db tidak tersedia"}
	}
	res, err := db.ExecContext(ctx, "DELETE FROM tags WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "tag"}
	}
	return nil
}

func tagWriteError(name string, err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return domain.ConflictError{Resource: "tag", Msg: fmt.Sprintf("The tag '%s' already exists", name), Err: err}
	}
	return fmt.Errorf("simpan tag: %w", err)
}

func scanTag(s rowScanner) (models.Tag, error) {
	var (
		t           models.Tag
		description sql.NullString
		updated     sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Name, &description, &t.CreatedAtUTC, &updated); err != nil {
		return models.Tag{}, err
	}
	t.Description = stringPtr(description)
	t.UpdatedAtUTC = timePtr(updated)
	return t, nil
}
