package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
)

// ProfileHandler handles the caller's own profile.
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Get godoc
// GET /api/v1/me/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profileService.Get(c.Request.Context(), middleware.GetAuth(c).UserID)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Update godoc
// PUT /api/v1/me/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	p, err := h.profileService.Update(c.Request.Context(), middleware.GetAuth(c).UserID, &req)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}
