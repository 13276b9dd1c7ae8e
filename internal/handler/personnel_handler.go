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

// PersonnelHandler serves the staff directory.
type PersonnelHandler struct {
	personnelService *service.PersonnelService
}

// NewPersonnelHandler creates a new PersonnelHandler.
func NewPersonnelHandler(personnelService *service.PersonnelService) *PersonnelHandler {
	return &PersonnelHandler{personnelService: personnelService}
}

// List godoc
// GET /api/v1/public/personnel?department=
func (h *PersonnelHandler) List(c *gin.Context) {
	list, err := h.personnelService.List(c.Request.Context(), c.Query("department"))
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Get godoc
// GET /api/v1/public/personnel/:id
func (h *PersonnelHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	p, err := h.personnelService.GetByID(c.Request.Context(), id)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Create godoc
// POST /api/v1/staff/personnel
func (h *PersonnelHandler) Create(c *gin.Context) {
	var req model.PersonnelRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	p, err := h.personnelService.Create(c.Request.Context(), &req)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// Update godoc
// PUT /api/v1/staff/personnel/:id
func (h *PersonnelHandler) Update(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req model.PersonnelRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	p, err := h.personnelService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Delete godoc
// DELETE /api/v1/staff/personnel/:id
func (h *PersonnelHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.personnelService.Delete(c.Request.Context(), middleware.GetAuth(c).UserID, id); err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
