package handlers

import (
	"database/sql"
	"time"

	"habittracker/internal/hateoas"
	"habittracker/internal/query"
	"habittracker/internal/secrets"
	"habittracker/internal/services"
	"habittracker/internal/shaping"
	"habittracker/internal/sorting"
)

// Deps are shared by every resource handler. They are built once at
// startup and only read afterwards.
type Deps struct {
	DB      *sql.DB
	Sorts   *sorting.Catalog
	Shapes  *shaping.Registry
	Routes  *hateoas.RouteTable
	Proxies hateoas.TrustedProxies
	Limits  query.Limits
	// Sealer is nil when no encryption key is configured.
	Sealer  *secrets.Sealer
	GitHub  services.ProfileFetcher
	Now     func() time.Time
	NewID   func(prefix string) string
}
