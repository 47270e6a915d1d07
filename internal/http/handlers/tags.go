package handlers

import (
	"net/http"

	"habittracker/internal/domain/models"
	"habittracker/internal/dto"
	"habittracker/internal/hateoas"
	"habittracker/internal/http/middleware"
	"habittracker/internal/paging"
	"habittracker/internal/query"
	"habittracker/internal/repositories"
	"habittracker/internal/services"
	"habittracker/internal/shaping"
	"habittracker/internal/sorting"

	"github.com/gin-gonic/gin"
)

const (
	TagsController = "Tags"

	ActionGetTags   = "GetTags"
	ActionGetTag    = "GetTag"
	ActionCreateTag = "CreateTag"
	ActionUpdateTag = "UpdateTag"
	ActionDeleteTag = "DeleteTag"
)

type TagHandler struct {
	Deps
}

func NewTagHandler(d Deps) *TagHandler {
	return &TagHandler{Deps: d}
}

func (h *TagHandler) Mount(g *gin.RouterGroup) {
	r := h.Routes.Controller(g, TagsController)
	r.Handle(ActionGetTags, http.MethodGet, "", h.List)
	r.Handle(ActionGetTag, http.MethodGet, "/:id", h.Get)
	r.Handle(ActionCreateTag, http.MethodPost, "", h.Create)
	r.Handle(ActionUpdateTag, http.MethodPut, "/:id", h.Update)
	r.Handle(ActionDeleteTag, http.MethodDelete, "/:id", h.Delete)
}

func (h *TagHandler) service(c *gin.Context) services.TagService {
	return services.TagService{
		Tags:      repositories.TagRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
		Now:       h.Now,
		NewID:     h.NewID,
	}
}

// GET /tags
func (h *TagHandler) List(c *gin.Context) {
	var q query.Parameters
	if err := query.Bind(c, &q, h.Limits); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "query tidak valid", validationDetails(err))
		return
	}
	ok, err := sorting.ValidateSort[dto.TagDTO, models.Tag](h.Sorts, q.Sort)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ok {
		RespondDomainError(c, &sorting.InvalidSortError{Sort: q.Sort})
		return
	}
	if ok, err = shaping.ValidateFields[dto.TagDTO](h.Shapes, q.Fields); err != nil || !ok {
		if err == nil {
			err = &shaping.InvalidFieldsError{Fields: q.Fields}
		}
		RespondDomainError(c, err)
		return
	}
	steps, err := sorting.SortSteps[dto.TagDTO, models.Tag](h.Sorts, q.Sort)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	tags, total, err := h.service(c).List(c.Request.Context(), middleware.CurrentUser(c).UserID, steps, q.Page, q.PageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	ls := hateoas.ForRequest(h.Routes, h.Proxies, c, TagsController)
	var inject shaping.LinkInjector[dto.TagDTO]
	if q.IncludeLinks() {
		inject = func(d dto.TagDTO) (any, error) { return tagLinks(ls, d.ID, q.Fields) }
	}
	dtos := make([]dto.TagDTO, 0, len(tags))
	for _, t := range tags {
		dtos = append(dtos, dto.TagToDTO(t))
	}
	records, err := shaping.ShapeCollection(h.Shapes, dtos, q.Fields, inject)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	result := paging.New(records, q.Page, q.PageSize, total)
	if q.IncludeLinks() {
		result.Links, err = ls.CreateLinksForCollection(hateoas.CollectionRequest{
			ListAction:      ActionGetTags,
			CreateAction:    ActionCreateTag,
			Params:          q.Values(),
			Page:            result.Page,
			HasPreviousPage: result.HasPreviousPage(),
			HasNextPage:     result.HasNextPage(),
		})
		if err != nil {
			RespondDomainError(c, err)
			return
		}
	}
	writeJSON(c, http.StatusOK, q.IncludeLinks(), result)
}

// GET /tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	var q query.Parameters
	if err := query.Bind(c, &q, h.Limits); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "query tidak valid", validationDetails(err))
		return
	}
	ok, err := shaping.ValidateFields[dto.TagDTO](h.Shapes, q.Fields)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ok {
		RespondDomainError(c, &shaping.InvalidFieldsError{Fields: q.Fields})
		return
	}

	id := c.Param("id")
	tag, err := h.service(c).Get(c.Request.Context(), middleware.CurrentUser(c).UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec, err := shaping.Shape(h.Shapes, dto.TagToDTO(tag), q.Fields)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if q.IncludeLinks() {
		links, err := tagLinks(hateoas.ForRequest(h.Routes, h.Proxies, c, TagsController), id, q.Fields)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		rec.Set(shaping.LinksKey, links)
	}
	writeJSON(c, http.StatusOK, q.IncludeLinks(), rec)
}

// POST /tags
func (h *TagHandler) Create(c *gin.Context) {
	var in dto.CreateTagDTO
	if !BindJSONOrError(c, &in) {
		return
	}
	tag, err := h.service(c).Create(c.Request.Context(), middleware.CurrentUser(c).UserID, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec, err := shaping.Shape(h.Shapes, dto.TagToDTO(tag), "")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	links, err := tagLinks(hateoas.ForRequest(h.Routes, h.Proxies, c, TagsController), tag.ID, "")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec.Set(shaping.LinksKey, links)
	c.Header("Location", links[0].Href)
	writeJSON(c, http.StatusCreated, hateoas.WantsLinks(c.GetHeader("Accept")), rec)
}

// PUT /tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	var in dto.UpdateTagDTO
	if !BindJSONOrError(c, &in) {
		return
	}
	if err := h.service(c).Update(c.Request.Context(), middleware.CurrentUser(c).UserID, c.Param("id"), in); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.service(c).Delete(c.Request.Context(), middleware.CurrentUser(c).UserID, c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func tagLinks(ls *hateoas.LinkService, id, fields string) ([]hateoas.Link, error) {
	byID := hateoas.Values{"id": id}
	return ls.Build().
		Add(ActionGetTag, hateoas.RelSelf, http.MethodGet, hateoas.Values{"id": id, "fields": fields}).
		Add(ActionUpdateTag, hateoas.RelUpdate, http.MethodPut, byID).
		Add(ActionDeleteTag, hateoas.RelDelete, http.MethodDelete, byID).
		Links()
}
