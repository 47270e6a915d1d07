package models

import "time"

// GitHubAccessToken is a personal access token stored for one user. Token
// holds the sealed value, never the plain token.
type GitHubAccessToken struct {
	ID           string
	UserID       string
	Token        string
	CreatedAtUTC time.Time
	ExpiresAtUTC time.Time
}

// Expired reports whether the token can no longer be used at now.
func (t GitHubAccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAtUTC)
}
