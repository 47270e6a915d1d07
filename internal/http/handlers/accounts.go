package handlers

import (
	"net/http"

	"habittracker/internal/dto"
	"habittracker/internal/http/middleware"
	"habittracker/internal/repositories"
	"habittracker/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	UsersController  = "Users"
	GitHubController = "GitHub"

	ActionGetCurrentUser   = "GetCurrentUser"
	ActionGetUserByID      = "GetUserById"
	ActionStoreToken       = "StoreAccessToken"
	ActionRevokeToken      = "RevokeAccessToken"
	ActionGetGitHubProfile = "GetUserProfile"
)

type UserHandler struct {
	Deps
}

func NewUserHandler(d Deps) *UserHandler {
	return &UserHandler{Deps: d}
}

func (h *UserHandler) Mount(g *gin.RouterGroup) {
	users := h.Routes.Controller(g, UsersController)
	users.Handle(ActionGetCurrentUser, http.MethodGet, "/me", h.Me)
	users.Handle(ActionGetUserByID, http.MethodGet, "/:id", middleware.RequireRoles("admin"), h.GetByID)
}

func (h *UserHandler) service() services.UserService {
	return services.UserService{Users: repositories.UserRepository{DB: h.DB}}
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.service().Me(c.Request.Context(), middleware.CurrentUser(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserToDTO(u))
}

// GET /users/:id answers only for the caller's own id.
func (h *UserHandler) GetByID(c *gin.Context) {
	uid := middleware.CurrentUser(c).UserID
	if c.Param("id") != uid {
		respondError(c, http.StatusForbidden, "forbidden", "forbidden: bukan user yang sama", nil)
		return
	}
	u, err := h.service().Me(c.Request.Context(), uid)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserToDTO(u))
}

type GitHubHandler struct {
	Deps
}

func NewGitHubHandler(d Deps) *GitHubHandler {
	return &GitHubHandler{Deps: d}
}

func (h *GitHubHandler) Mount(g *gin.RouterGroup) {
	gh := h.Routes.Controller(g, GitHubController)
	gh.Handle(ActionStoreToken, http.MethodPut, "/personal-access-token", h.StoreToken)
	gh.Handle(ActionRevokeToken, http.MethodDelete, "/personal-access-token", h.RevokeToken)
	gh.Handle(ActionGetGitHubProfile, http.MethodGet, "/profile", h.Profile)
}

func (h *GitHubHandler) service(c *gin.Context) services.GitHubService {
	return services.GitHubService{
		Tokens:    repositories.GitHubTokenRepository{DB: h.DB},
		Sealer:    h.Sealer,
		GitHub:    h.GitHub,
		RequestID: middleware.GetRequestID(c),
		Now:       h.Now,
		NewID:     h.NewID,
	}
}

// PUT /github/personal-access-token
func (h *GitHubHandler) StoreToken(c *gin.Context) {
	var in dto.StoreGitHubTokenDTO
	if !BindJSONOrError(c, &in) {
		return
	}
	if err := h.service(c).StoreToken(c.Request.Context(), middleware.CurrentUser(c).UserID, in); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /github/personal-access-token
func (h *GitHubHandler) RevokeToken(c *gin.Context) {
	if err := h.service(c).RevokeToken(c.Request.Context(), middleware.CurrentUser(c).UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /github/profile
func (h *GitHubHandler) Profile(c *gin.Context) {
	p, err := h.service(c).Profile(c.Request.Context(), middleware.CurrentUser(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
