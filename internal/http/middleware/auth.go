package middleware

import (
	"errors"
	"net/http"
	"strings"

	"habittracker/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

func (a AuthConfig) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.Issuer))
	}
	if a.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.Audience))
	}
	return opts
}

// Auth verifies an HS256 bearer token and stores the caller's user id and
// role on the context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	key := []byte(cfg.Secret)
	opts := cfg.parserOptions()

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || len(key) == 0 {
			unauthorized(c, "token tidak ditemukan")
			return
		}

		claims, err := parseClaims(key, opts, raw)
		if err != nil {
			msg := "token tidak valid"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token kedaluwarsa"
			}
			unauthorized(c, msg)
			return
		}

		uid := subject(claims)
		if uid == "" {
			unauthorized(c, "token tanpa user id")
			return
		}

		c.Set(userIDKey, uid)
		c.Set(userRoleKey, cast.ToString(claims["role"]))
		c.Next()
	}
}

func parseClaims(key []byte, opts []jwt.ParserOption, raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil }, opts...)
	return claims, err
}

// subject reads "sub", or "user_id" for tokens issued by older clients.
func subject(claims jwt.MapClaims) string {
	uid, _ := claims.GetSubject()
	if uid == "" {
		uid = cast.ToString(claims["user_id"])
	}
	return strings.TrimSpace(uid)
}

// TokenSubject returns the user id of a valid bearer token on c, or "" when
// the request carries none. It never aborts.
func TokenSubject(cfg AuthConfig) func(c *gin.Context) string {
	key := []byte(cfg.Secret)
	opts := cfg.parserOptions()
	return func(c *gin.Context) string {
		if uid := c.GetString(userIDKey); uid != "" {
			return uid
		}
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || len(key) == 0 {
			return ""
		}
		claims, err := parseClaims(key, opts, raw)
		if err != nil {
			return ""
		}
		return subject(claims)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="habittracker"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      "unauthorized: " + msg,
		"request_id": GetRequestID(c),
	})
}

// CurrentUser returns the authenticated caller set by Auth.
func CurrentUser(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID: c.GetString(userIDKey),
		Role:   c.GetString(userRoleKey),
	}
}
