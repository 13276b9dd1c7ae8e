package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
)

// AdminHandler backs the admin permission editor.
type AdminHandler struct {
	permissionService *service.PermissionService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(permissionService *service.PermissionService) *AdminHandler {
	return &AdminHandler{permissionService: permissionService}
}

// ListPrincipals godoc
// GET /api/v1/admin/principals
// Returns every principal with role rows and granted permissions.
func (h *AdminHandler) ListPrincipals(c *gin.Context) {
	principals, err := h.permissionService.ListPrincipals(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, principals)
}

// Matrix godoc
// GET /api/v1/admin/permissions/matrix
// Returns the effective checkbox value of every principal and permission,
// preferring the caller's pending edits.
func (h *AdminHandler) Matrix(c *gin.Context) {
	rows, err := h.permissionService.Matrix(c.Request.Context(), middleware.GetAuth(c).UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"permissions": model.AllPermissions,
		"rows":        rows,
	})
}

// StageChange godoc
// PUT /api/v1/admin/permissions/draft
// Buffers one checkbox edit until save.
func (h *AdminHandler) StageChange(c *gin.Context) {
	var req model.PermissionChangeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	perm, err := model.ParsePermission(req.Permission)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownPermission)
		return
	}
	change := access.Change{
		UserID:     uuid.MustParse(req.UserID),
		Permission: perm,
		Granted:    *req.Granted,
	}

	if err := h.permissionService.Stage(c.Request.Context(), middleware.GetAuth(c).UserID, change); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, change)
}

// DiscardDraft godoc
// DELETE /api/v1/admin/permissions/draft
func (h *AdminHandler) DiscardDraft(c *gin.Context) {
	if err := h.permissionService.Discard(c.Request.Context(), middleware.GetAuth(c).UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// SavePermissions godoc
// POST /api/v1/admin/permissions/save
// Persists every buffered edit in one transaction. An empty buffer is not an error.
func (h *AdminHandler) SavePermissions(c *gin.Context) {
	result, err := h.permissionService.Save(c.Request.Context(), middleware.GetAuth(c).UserID)
	if err != nil {
		// The draft is kept on failure.
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, result)
}
