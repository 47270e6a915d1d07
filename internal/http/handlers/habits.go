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
	HabitsController    = "Habits"
	HabitTagsController = "HabitTags"

	ActionGetHabits    = "GetHabits"
	ActionGetHabit     = "GetHabit"
	ActionCreateHabit  = "CreateHabit"
	ActionUpdateHabit  = "UpdateHabit"
	ActionPatchHabit   = "PatchHabit"
	ActionDeleteHabit  = "DeleteHabit"
	ActionExportHabits = "ExportHabits"
	ActionUpsertTags   = "UpsertHabitTags"

	RelUpsertTags = "upsert-tags"
)

// HabitsQuery is the query string of the habit list and export endpoints.
type HabitsQuery struct {
	query.Parameters
	Search string             `form:"q"`
	Type   models.HabitType   `form:"type" binding:"omitempty,oneof=binary measurable"`
	Status models.HabitStatus `form:"status" binding:"omitempty,oneof=ongoing completed"`
	Format string             `form:"format"`
}

// Values are the route values every collection link carries.
func (q HabitsQuery) Values() hateoas.Values {
	v := q.Parameters.Values()
	v["q"] = q.Search
	v["type"] = string(q.Type)
	v["status"] = string(q.Status)
	return v
}

func (q HabitsQuery) filter(userID string) repositories.HabitFilter {
	return repositories.HabitFilter{UserID: userID, Search: q.Search, Type: q.Type, Status: q.Status}
}

type HabitHandler struct {
	Deps
}

func NewHabitHandler(d Deps) *HabitHandler {
	return &HabitHandler{Deps: d}
}

// Mount registers the habit routes under their action names.
func (h *HabitHandler) Mount(g *gin.RouterGroup) {
	habits := h.Routes.Controller(g, HabitsController)
	habits.Handle(ActionGetHabits, http.MethodGet, "", h.List)
	habits.Handle(ActionExportHabits, http.MethodGet, "/export", h.Export)
	habits.Handle(ActionGetHabit, http.MethodGet, "/:id", h.Get)
	habits.Handle(ActionCreateHabit, http.MethodPost, "", h.Create)
	habits.Handle(ActionUpdateHabit, http.MethodPut, "/:id", h.Update)
	habits.Handle(ActionPatchHabit, http.MethodPatch, "/:id", h.Patch)
	habits.Handle(ActionDeleteHabit, http.MethodDelete, "/:id", h.Delete)

	tags := h.Routes.Controller(g, HabitTagsController)
	tags.Handle(ActionUpsertTags, http.MethodPut, "/:id/tags", h.UpsertTags)
}

func (h *HabitHandler) service(c *gin.Context) services.HabitService {
	return services.HabitService{
		Habits:    repositories.HabitRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
		Now:       h.Now,
		NewID:     h.NewID,
	}
}

// checkQuery validates sort and fields before any data is touched.
func (h *HabitHandler) checkQuery(p query.Parameters) ([]sorting.OrderStep, error) {
	ok, err := sorting.ValidateSort[dto.HabitDTO, models.Habit](h.Sorts, p.Sort)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &sorting.InvalidSortError{Sort: p.Sort}
	}
	ok, err = shaping.ValidateFields[dto.HabitDTO](h.Shapes, p.Fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &shaping.InvalidFieldsError{Fields: p.Fields}
	}
	return sorting.SortSteps[dto.HabitDTO, models.Habit](h.Sorts, p.Sort)
}

// GET /habits
func (h *HabitHandler) List(c *gin.Context) {
	var q HabitsQuery
	if err := query.Bind(c, &q, h.Limits); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "query tidak valid", validationDetails(err))
		return
	}
	steps, err := h.checkQuery(q.Parameters)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	habits, total, err := h.service(c).List(c.Request.Context(), q.filter(user.UserID), steps, q.Page, q.PageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	links := hateoas.ForRequest(h.Routes, h.Proxies, c, HabitsController)
	var inject shaping.LinkInjector[dto.HabitDTO]
	if q.IncludeLinks() {
		inject = func(d dto.HabitDTO) (any, error) { return habitLinks(links, d.ID, q.Fields) }
	}
	dtos := make([]dto.HabitDTO, 0, len(habits))
	for _, m := range habits {
		dtos = append(dtos, dto.HabitToDTO(m))
	}
	records, err := shaping.ShapeCollection(h.Shapes, dtos, q.Fields, inject)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	result := paging.New(records, q.Page, q.PageSize, total)
	if q.IncludeLinks() {
		result.Links, err = links.CreateLinksForCollection(hateoas.CollectionRequest{
			ListAction:      ActionGetHabits,
			CreateAction:    ActionCreateHabit,
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

// GET /habits/:id
func (h *HabitHandler) Get(c *gin.Context) {
	var q query.Parameters
	if err := query.Bind(c, &q, h.Limits); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "query tidak valid", validationDetails(err))
		return
	}
	ok, err := shaping.ValidateFields[dto.HabitWithTagsDTO](h.Shapes, q.Fields)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ok {
		RespondDomainError(c, &shaping.InvalidFieldsError{Fields: q.Fields})
		return
	}

	id := c.Param("id")
	habit, err := h.service(c).Get(c.Request.Context(), middleware.CurrentUser(c).UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec, err := shaping.Shape(h.Shapes, dto.HabitToDTOWithTags(habit), q.Fields)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if q.IncludeLinks() {
		links, err := habitLinks(hateoas.ForRequest(h.Routes, h.Proxies, c, HabitsController), id, q.Fields)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		rec.Set(shaping.LinksKey, links)
	}
	writeJSON(c, http.StatusOK, q.IncludeLinks(), rec)
}

// POST /habits
func (h *HabitHandler) Create(c *gin.Context) {
	var in dto.CreateHabitDTO
	if !BindJSONOrError(c, &in) {
		return
	}
	habit, err := h.service(c).Create(c.Request.Context(), middleware.CurrentUser(c).UserID, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec, err := shaping.Shape(h.Shapes, dto.HabitToDTO(habit), "")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	ls := hateoas.ForRequest(h.Routes, h.Proxies, c, HabitsController)
	links, err := habitLinks(ls, habit.ID, "")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rec.Set(shaping.LinksKey, links)
	c.Header("Location", links[0].Href)
	writeJSON(c, http.StatusCreated, hateoas.WantsLinks(c.GetHeader("Accept")), rec)
}

// PUT /habits/:id
func (h *HabitHandler) Update(c *gin.Context) {
	var in dto.UpdateHabitDTO
	if !BindJSONOrError(c, &in) {
		return
	}
	if err := h.service(c).Update(c.Request.Context(), middleware.CurrentUser(c).UserID, c.Param("id"), in); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PATCH /habits/:id with an RFC 6902 JSON Patch body.
func (h *HabitHandler) Patch(c *gin.Context) {
	doc, ok := readRawBody(c)
	if !ok {
		return
	}
	if err := h.service(c).Patch(c.Request.Context(), middleware.CurrentUser(c).UserID, c.Param("id"), doc); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /habits/:id
func (h *HabitHandler) Delete(c *gin.Context) {
	if err := h.service(c).Delete(c.Request.Context(), middleware.CurrentUser(c).UserID, c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /habits/:id/tags
func (h *HabitHandler) UpsertTags(c *gin.Context) {
	var in dto.UpsertHabitTagsDTO
	if !BindJSONOrError(c, &in) {
		return
	}
	if err := h.service(c).UpsertTags(c.Request.Context(), middleware.CurrentUser(c).UserID, c.Param("id"), in); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /habits/export?format=pdf|xlsx
func (h *HabitHandler) Export(c *gin.Context) {
	var q HabitsQuery
	if err := query.Bind(c, &q, h.Limits); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "query tidak valid", validationDetails(err))
		return
	}
	format, ok := services.ParseExportFormat(q.Format)
	if !ok {
		respondError(c, http.StatusBadRequest, "validation_error", "format export harus pdf atau xlsx", nil)
		return
	}
	steps, err := h.checkQuery(q.Parameters)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	habits, _, err := h.service(c).List(c.Request.Context(), q.filter(middleware.CurrentUser(c).UserID), steps, 1, 0)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	dtos := make([]dto.HabitDTO, 0, len(habits))
	for _, m := range habits {
		dtos = append(dtos, dto.HabitToDTO(m))
	}
	records, err := shaping.ShapeCollection(h.Shapes, dtos, q.Fields, nil)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.ExportService{RequestID: middleware.GetRequestID(c), Now: h.Now}
	out, filename, err := svc.Export(format, "habits", records)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), out)
}

// habitLinks are the links of a single habit. fields is carried on self so
// following it keeps the same projection.
func habitLinks(ls *hateoas.LinkService, id, fields string) ([]hateoas.Link, error) {
	byID := hateoas.Values{"id": id}
	return ls.Build().
		Add(ActionGetHabit, hateoas.RelSelf, http.MethodGet, hateoas.Values{"id": id, "fields": fields}).
		Add(ActionUpdateHabit, hateoas.RelUpdate, http.MethodPut, byID).
		Add(ActionPatchHabit, hateoas.RelPartialUpdate, http.MethodPatch, byID).
		Add(ActionDeleteHabit, hateoas.RelDelete, http.MethodDelete, byID).
		Add(ActionUpsertTags, RelUpsertTags, http.MethodPut, byID, HabitTagsController).
		Links()
}
