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

// GitHubTokenRepository keeps at most one token per user.
type GitHubTokenRepository struct {
	DB *sql.DB
}

func (r GitHubTokenRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r GitHubTokenRepository) GetByUser(ctx context.Context, userID string) (models.GitHubAccessToken, error) {
	db := r.db()
	if db == nil {
		return models.GitHubAccessToken{}, domain.InternalError{Msg: "db tidak tersedia"}
	}
	var t models.GitHubAccessToken
	err := db.QueryRowContext(ctx,
		"SELECT id, user_id, token, created_at_utc, expires_at_utc FROM github_access_tokens WHERE user_id = ? LIMIT 1", userID,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAtUTC, &t.ExpiresAtUTC)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GitHubAccessToken{}, domain.NotFoundError{Resource: "github token", Err: err}
	}
	if err != nil {
		return models.GitHubAccessToken{}, fmt.Errorf("get github token: %w", err)
	}
	return t, nil
}

// Upsert stores t, replacing the token and expiry of an existing row for
// the same user. The row keeps its original id.
func (r GitHubTokenRepository) Upsert(ctx context.Context, t models.GitHubAccessToken) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db tidak tersedia"}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO github_access_tokens (id, user_id, token, created_at_utc, expires_at_utc)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE token = VALUES(token), expires_at_utc = VALUES(expires_at_utc)
	`, t.ID, t.UserID, t.Token, t.CreatedAtUTC, t.ExpiresAtUTC)
	if err != nil {
		return fmt.Errorf("simpan github token: %w", err)
	}
	return nil
}

// DeleteByUser removes the user's token. It reports whether a row existed.
func (r GitHubTokenRepository) DeleteByUser(ctx context.Context, userID string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db tidak tersedia"}
	}
	res, err := db.ExecContext(ctx, "DELETE FROM github_access_tokens WHERE user_id = ?", userID)
	if err != nil {
		return false, fmt.Errorf("hapus github token: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
