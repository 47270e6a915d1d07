package services

import (
	"context"
	"errors"
	"time"

	"habittracker/internal/domain"
	"habittracker/internal/domain/models"
	"habittracker/internal/dto"
	"habittracker/internal/github"
	"habittracker/internal/secrets"
	"habittracker/internal/utils"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type UserService struct {
	Users UserStore
}

// Me returns the profile of the authenticated user.
func (s UserService) Me(ctx context.Context, userID string) (models.User, error) {
	if s.Users == nil {
		return models.User{}, domain.ConfigurationError{Msg: "user store kosong"}
	}
	return s.Users.GetByID(ctx, userID)
}

type GitHubTokenStore interface {
	GetByUser(ctx context.Context, userID string) (models.GitHubAccessToken, error)
	Upsert(ctx context.Context, t models.GitHubAccessToken) error
	DeleteByUser(ctx context.Context, userID string) (bool, error)
}

type ProfileFetcher interface {
	GetUserProfile(ctx context.Context, accessToken string) (github.UserProfile, error)
}

// GitHubService keeps one sealed personal access token per user and uses it
// to read the user's GitHub profile.
type GitHubService struct {
	Tokens    GitHubTokenStore
	Sealer    *secrets.Sealer
	GitHub    ProfileFetcher
	RequestID string
	Now       func() time.Time
	NewID     func(prefix string) string
}

func (s GitHubService) clock() clock { return clock{Now: s.Now, NewID: s.NewID} }

func (s GitHubService) sealer() (*secrets.Sealer, error) {
	if s.Sealer == nil {
		return nil, secrets.ErrNoKey
	}
	return s.Sealer, nil
}

// StoreToken saves the token, replacing any earlier one of the user.
func (s GitHubService) StoreToken(ctx context.Context, userID string, in dto.StoreGitHubTokenDTO) error {
	sealer, err := s.sealer()
	if err != nil {
		return err
	}
	sealed, err := sealer.Seal(in.AccessToken, userID)
	if err != nil {
		return err
	}
	c := s.clock()
	now := c.now()
	t := models.GitHubAccessToken{
		ID:           c.id("gh"),
		UserID:       userID,
		Token:        sealed,
		CreatedAtUTC: now,
		ExpiresAtUTC: now.AddDate(0, 0, in.ExpiresInDays),
	}
	if err := s.Tokens.Upsert(ctx, t); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "github", "store_token", "user_id="+userID)
	return nil
}

// RevokeToken deletes the user's token. Revoking without a token succeeds.
func (s GitHubService) RevokeToken(ctx context.Context, userID string) error {
	existed, err := s.Tokens.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if existed {
		utils.LogEvent(s.RequestID, "github", "revoke_token", "user_id="+userID)
	}
	return nil
}

// AccessToken returns the user's plain token. A missing or expired token
// is not found.
func (s GitHubService) AccessToken(ctx context.Context, userID string) (string, error) {
	sealer, err := s.sealer()
	if err != nil {
		return "", err
	}
	t, err := s.Tokens.GetByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if t.Expired(s.clock().now()) {
		return "", domain.NotFoundError{Resource: "github token"}
	}
	plain, err := sealer.Open(t.Token, userID)
	if errors.Is(err, secrets.ErrCorrupt) {
		utils.LogError(s.RequestID, "github", "open_token", err)
		return "", domain.NotFoundError{Resource: "github token", Err: err}
	}
	return plain, err
}

func (s GitHubService) Profile(ctx context.Context, userID string) (github.UserProfile, error) {
	token, err := s.AccessToken(ctx, userID)
	if err != nil {
		return github.UserProfile{}, err
	}
	p, err := s.GitHub.GetUserProfile(ctx, token)
	if domain.IsNotFound(err) {
		utils.LogEvent(s.RequestID, "github", "profile_rejected", "user_id="+userID)
	}
	return p, err
}
