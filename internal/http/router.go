package api

import (
	"database/sql"
	stdhttp "net/http"

	intconfig "habittracker/internal/config"
	"habittracker/internal/dto"
	"habittracker/internal/github"
	"habittracker/internal/hateoas"
	h "habittracker/internal/http/handlers"
	"habittracker/internal/http/middleware"
	"habittracker/internal/query"
	"habittracker/internal/secrets"
	"habittracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// NewDeps builds the sort catalog and the shaping registry. A mapping or
// registration mistake fails here, before the server accepts requests, and
// so does a malformed trusted proxy list.
func NewDeps(db *sql.DB, env intconfig.Env) (h.Deps, error) {
	sorts, err := dto.SortCatalog()
	if err != nil {
		return h.Deps{}, err
	}
	shapes, err := dto.ShapeRegistry()
	if err != nil {
		return h.Deps{}, err
	}
	proxies, err := hateoas.ParseTrustedProxies(env.TrustedProxies)
	if err != nil {
		return h.Deps{}, err
	}
	var sealer *secrets.Sealer
	if env.EncryptionKey != "" {
		if sealer, err = secrets.NewSealer(env.EncryptionKey); err != nil {
			return h.Deps{}, err
		}
	}
	return h.Deps{
		DB:      db,
		Sorts:   sorts,
		Shapes:  shapes,
		Routes:  hateoas.NewRouteTable(),
		Proxies: proxies,
		Limits:  query.Limits{DefaultPageSize: env.DefaultPageSize, MaxPageSize: env.MaxPageSize},
		Sealer:  sealer,
		GitHub:  github.NewClient(env.GitHubAPIURL),
	}, nil
}

func NewRouter(env intconfig.Env, deps h.Deps, log *zap.Logger) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidations(v); err != nil {
			return nil, err
		}
	}
	if deps.Routes == nil {
		deps.Routes = hateoas.NewRouteTable()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	var trusted []string
	if len(env.TrustedProxies) > 0 {
		trusted = env.TrustedProxies
	}
	if err := r.SetTrustedProxies(trusted); err != nil {
		utils.LogError("", "http", "trusted_proxies", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck(deps.DB))

		authCfg := middleware.AuthConfig{
			Secret:   env.JWTSecret,
			Issuer:   env.JWTIssuer,
			Audience: env.JWTAudience,
		}
		auth := middleware.Auth(authCfg)
		api.GET("/routes", auth, middleware.RequireRoles("admin"), h.Routes(deps.Routes))

		authed := api.Group("", auth)

		// Habits are rate limited per caller, anonymous callers included.
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			TokenLimit:         env.RateLimitTokens,
			TokensPerMinute:    env.RateLimitTokensPerMinute,
			QueueLimit:         env.RateLimitQueue,
			AnonymousPerMinute: env.RateLimitAnonymousPerMinute,
			Identify:           middleware.TokenSubject(authCfg),
		})
		habits := api.Group("/habits", limiter.Handler(), auth)
		h.NewHabitHandler(deps).Mount(habits)

		// Tags
		tags := authed.Group("/tags")
		h.NewTagHandler(deps).Mount(tags)

		// Users
		users := authed.Group("/users")
		h.NewUserHandler(deps).Mount(users)

		// GitHub
		gh := authed.Group("/github")
		h.NewGitHubHandler(deps).Mount(gh)
	}

	return r, nil
}
