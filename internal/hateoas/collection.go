package hateoas

import "net/http"

// CollectionRequest describes the page a collection response is built for.
// Params holds every query parameter of the current request.
type CollectionRequest struct {
	ListAction      string
	CreateAction    string
	Params          Values
	Page            int
	HasPreviousPage bool
	HasNextPage     bool
}

// PageParam is the query parameter rewritten for previous/next links.
const PageParam = "page"

// CreateLinksForCollection emits self and create, plus previous-page and
// next-page when those pages exist. Only the page parameter differs between
// the page links.
func (s *LinkService) CreateLinksForCollection(req CollectionRequest) ([]Link, error) {
	self := req.Params.Clone(Values{PageParam: req.Page})
	return s.Build().
		Add(req.ListAction, RelSelf, http.MethodGet, self).
		Add(req.CreateAction, RelCreate, http.MethodPost, nil).
		AddIf(req.HasPreviousPage, req.ListAction, RelPreviousPage, http.MethodGet,
			req.Params.Clone(Values{PageParam: req.Page - 1})).
		AddIf(req.HasNextPage, req.ListAction, RelNextPage, http.MethodGet,
			req.Params.Clone(Values{PageParam: req.Page + 1})).
		Links()
}
