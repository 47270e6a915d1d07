package hateoas

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrUnknownRoute is returned when a link targets an action nobody registered.
var ErrUnknownRoute = errors.New("unknown route")

// Router maps (action, controller, params) to a URL path with query string.
type Router interface {
	URL(action, controller string, params map[string]string) (string, error)
}

// Route is a named endpoint.
type Route struct {
	Controller string
	Action     string
	Method     string
	Path       string
}

type routeKey struct {
	controller string
	action     string
}

// RouteTable records named gin routes so links can be generated from action
// names. Routes are added while the engine is built; the table is read-only
// once the server starts.
type RouteTable struct {
	routes map[routeKey]Route
}

func NewRouteTable() *RouteTable {
	return &RouteTable{routes: map[routeKey]Route{}}
}

// Routes lists every registered route.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Controller returns a registrar that names routes under controller.
func (t *RouteTable) Controller(group *gin.RouterGroup, controller string) *Registrar {
	return &Registrar{table: t, group: group, controller: controller}
}

// Registrar registers gin handlers and records their names.
type Registrar struct {
	table      *RouteTable
	group      *gin.RouterGroup
	controller string
}

// Handle registers a named route on the underlying gin group.
func (r *Registrar) Handle(action, method, relativePath string, handlers ...gin.HandlerFunc) {
	r.group.Handle(method, relativePath, handlers...)
	r.table.routes[routeKey{r.controller, action}] = Route{
		Controller: r.controller,
		Action:     action,
		Method:     method,
		Path:       path.Join(r.group.BasePath(), relativePath),
	}
}

// URL resolves the route and fills its path parameters. Remaining params are
// encoded as a sorted query string.
func (t *RouteTable) URL(action, controller string, params map[string]string) (string, error) {
	route, ok := t.routes[routeKey{controller, action}]
	if !ok {
		return "", fmt.Errorf("%s.%s: %w", controller, action, ErrUnknownRoute)
	}

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	segments := strings.Split(route.Path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") && !strings.HasPrefix(seg, "*") {
			continue
		}
		name := seg[1:]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%s.%s: missing path parameter %q", controller, action, name)
		}
		segments[i] = url.PathEscape(value)
		query.Del(name)
	}

	href := strings.Join(segments, "/")
	if encoded := query.Encode(); encoded != "" {
		href += "?" + encoded
	}
	return href, nil
}
