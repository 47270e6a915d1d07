package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"habittracker/internal/domain"
)

const (
	DefaultBaseURL = "https://api.github.com"
	mediaType      = "application/vnd.github+json"
	userAgent      = "HabitTracker/1.0"
)

// UserProfile is the subset of GET /user served to clients. Field names
// follow GitHub's snake_case.
type UserProfile struct {
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	AvatarURL   string  `json:"avatar_url"`
	Bio         *string `json:"bio"`
	PublicRepos int64   `json:"public_repos"`
	Followers   int64   `json:"followers"`
	Following   int64   `json:"following"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) Client {
	return Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (c Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c Client) url(path string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + path
}

// GetUserProfile fetches the profile of the token's owner. A rejected token
// or any other non-2xx answer is reported as not found.
func (c Client) GetUserProfile(ctx context.Context, accessToken string) (UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/user"), nil)
	if err != nil {
		return UserProfile{}, fmt.Errorf("github request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", mediaType)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.httpClient().Do(req)
	if err != nil {
		return UserProfile{}, fmt.Errorf("github user: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		return UserProfile{}, domain.NotFoundError{
			Resource: "github profile",
			Err:      fmt.Errorf("github status %d", res.StatusCode),
		}
	}
	var p UserProfile
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&p); err != nil {
		return UserProfile{}, fmt.Errorf("decode github user: %w", err)
	}
	return p, nil
}
