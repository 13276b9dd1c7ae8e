package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
)

// AdmissionHandler handles admission applications.
type AdmissionHandler struct {
	admissionService *service.AdmissionService
}

// NewAdmissionHandler creates a new AdmissionHandler.
func NewAdmissionHandler(admissionService *service.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{admissionService: admissionService}
}

// Submit godoc
// POST /api/v1/public/admissions
func (h *AdmissionHandler) Submit(c *gin.Context) {
	var req model.SubmitAdmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	app, err := h.admissionService.Submit(c.Request.Context(), &req)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": app.ID, "status": app.Status})
}

// List godoc
// GET /api/v1/staff/admissions?status=&page=&per_page=
func (h *AdmissionHandler) List(c *gin.Context) {
	page, perPage := pageParams(c, 20)
	status := c.Query("status")

	list, total, err := h.admissionService.List(c.Request.Context(), status, page, perPage)
	if err != nil {
		failAdmission(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, list, response.NewPagination(page, perPage, total))
}

// UpdateStatus godoc
// PATCH /api/v1/staff/admissions/:id/status
func (h *AdmissionHandler) UpdateStatus(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAdmissionStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	app, err := h.admissionService.UpdateStatus(c.Request.Context(), middleware.GetAuth(c).UserID, id, model.AdmissionStatus(req.Status))
	if err != nil {
		failAdmission(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

func failAdmission(c *gin.Context, err error) {
	if errors.Is(err, model.ErrUnknownAdmissionStatus) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"status": "status must be one of [pending accepted rejected]"})
		return
	}
	failRepo(c, err)
}
