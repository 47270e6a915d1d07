package query

import (
	"strings"

	"habittracker/internal/hateoas"
	"habittracker/internal/paging"

	"github.com/gin-gonic/gin"
)

// Parameters are the shaping, sorting and paging inputs shared by list
// endpoints.
type Parameters struct {
	Sort     string `form:"sort"`
	Fields   string `form:"fields"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Accept   string `form:"-"`
}

// Limits bound the page size a client may ask for.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits mirrors the paging defaults.
var DefaultLimits = Limits{DefaultPageSize: paging.DefaultPageSize, MaxPageSize: 100}

// Normalize applies defaults and bounds.
func (p *Parameters) Normalize(l Limits) {
	p.Sort = strings.TrimSpace(p.Sort)
	p.Fields = strings.TrimSpace(p.Fields)
	if p.Page < 1 {
		p.Page = paging.DefaultPage
	}
	if l.DefaultPageSize < 1 {
		l.DefaultPageSize = paging.DefaultPageSize
	}
	if p.PageSize < 1 {
		p.PageSize = l.DefaultPageSize
	}
	if l.MaxPageSize > 0 && p.PageSize > l.MaxPageSize {
		p.PageSize = l.MaxPageSize
	}
	if maxPage := paging.MaxPage(p.PageSize); p.Page > maxPage {
		p.Page = maxPage
	}
}

// IncludeLinks reports whether the client asked for hypermedia.
func (p Parameters) IncludeLinks() bool {
	return hateoas.WantsLinks(p.Accept)
}

// Values returns the parameters as route values for link generation.
func (p Parameters) Values() hateoas.Values {
	return hateoas.Values{
		"page":     p.Page,
		"pageSize": p.PageSize,
		"fields":   p.Fields,
		"sort":     p.Sort,
	}
}

// Common lets Bind reach the shared parameters of an embedding struct.
func (p *Parameters) Common() *Parameters { return p }

// Bindable is any query struct that embeds Parameters.
type Bindable interface {
	Common() *Parameters
}

// Bind reads dst from the query string and the Accept header, then applies
// defaults and bounds.
func Bind(c *gin.Context, dst Bindable, l Limits) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return err
	}
	params := dst.Common()
	params.Accept = c.GetHeader("Accept")
	params.Normalize(l)
	return nil
}
