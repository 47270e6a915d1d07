package config

import (
	"errors"
	"fmt"
	"strings"

	"habittracker/internal/utils"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const DefaultDSN = "root:@tcp(127.0.0.1:3306)/habittracker?charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"

type Env struct {
	AppAddr            string
	GinMode            string
	DBDSN              string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	LogLevel           string
	CORSAllowedOrigins []string
	TrustedProxies     []string
	DefaultPageSize    int
	MaxPageSize        int

	// EncryptionKey seals stored GitHub tokens. Empty disables the
	// GitHub endpoints.
	EncryptionKey string
	GitHubAPIURL  string

	RateLimitTokens             int
	RateLimitTokensPerMinute    int
	RateLimitQueue              int
	RateLimitAnonymousPerMinute int
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AutomaticEnv()

	v.SetDefault("app_addr", ":8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("db_dsn", DefaultDSN)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("jwt_audience", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_allowed_origins", "http://localhost:3000")
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("default_page_size", 10)
	v.SetDefault("max_page_size", 100)
	v.SetDefault("encryption_key", "")
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("rate_limit_tokens", 100)
	v.SetDefault("rate_limit_tokens_per_minute", 25)
	v.SetDefault("rate_limit_queue", 5)
	v.SetDefault("rate_limit_anonymous_per_minute", 5)
	return v
}

// LoadEnv reads config.yaml from configPath when present, then lets
// environment variables (APP_ADDR, DB_DSN, ...) override it.
func LoadEnv(configPath string) (Env, error) {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Env{}, fmt.Errorf("baca config: %w", err)
		}
	}

	env := Env{
		AppAddr:            strings.TrimSpace(v.GetString("app_addr")),
		GinMode:            strings.TrimSpace(v.GetString("gin_mode")),
		DBDSN:              strings.TrimSpace(v.GetString("db_dsn")),
		JWTSecret:          v.GetString("jwt_secret"),
		JWTIssuer:          strings.TrimSpace(v.GetString("jwt_issuer")),
		JWTAudience:        strings.TrimSpace(v.GetString("jwt_audience")),
		LogLevel:           strings.TrimSpace(v.GetString("log_level")),
		CORSAllowedOrigins: list(v, "cors_allowed_origins"),
		TrustedProxies:     list(v, "trusted_proxies"),
		DefaultPageSize:    v.GetInt("default_page_size"),
		MaxPageSize:        v.GetInt("max_page_size"),

		EncryptionKey: v.GetString("encryption_key"),
		GitHubAPIURL:  strings.TrimRight(strings.TrimSpace(v.GetString("github_api_url")), "/"),

		RateLimitTokens:             v.GetInt("rate_limit_tokens"),
		RateLimitTokensPerMinute:    v.GetInt("rate_limit_tokens_per_minute"),
		RateLimitQueue:              v.GetInt("rate_limit_queue"),
		RateLimitAnonymousPerMinute: v.GetInt("rate_limit_anonymous_per_minute"),
	}
	if env.AppAddr == "" {
		env.AppAddr = ":8080"
	}
	if env.GitHubAPIURL == "" {
		env.GitHubAPIURL = "https://api.github.com"
	}
	if env.DefaultPageSize <= 0 || env.MaxPageSize < env.DefaultPageSize {
		return Env{}, fmt.Errorf("page size tidak valid: default=%d max=%d", env.DefaultPageSize, env.MaxPageSize)
	}
	return env, nil
}

// list accepts a yaml list or a comma separated env value.
func list(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case []any, []string:
		return utils.SplitList(strings.Join(cast.ToStringSlice(raw), ","))
	default:
		return utils.SplitList(cast.ToString(raw))
	}
}
