package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "habittracker/internal/config"
	"habittracker/internal/domain"
	"habittracker/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, domain.InternalError{Msg: "db tidak tersedia"}
	}
	var (
		u       models.User
		updated sql.NullTime
	)
	err := db.QueryRowContext(ctx,
		"SELECT id, email, name, created_at_utc, updated_at_utc FROM users WHERE id = ? LIMIT 1", id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAtUTC, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	u.UpdatedAtUTC = timePtr(updated)
	return u, nil
}
