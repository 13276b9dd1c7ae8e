package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/csvimport"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
)

// AdminRoleHandler handles role approval, assignment, and import.
type AdminRoleHandler struct {
	roleService   *service.RoleService
	importService *service.ImportService
	maxUpload     int64
	log           zerolog.Logger
}

// NewAdminRoleHandler creates a new AdminRoleHandler.
func NewAdminRoleHandler(roleService *service.RoleService, importService *service.ImportService, maxUpload int64, log zerolog.Logger) *AdminRoleHandler {
	return &AdminRoleHandler{
		roleService:   roleService,
		importService: importService,
		maxUpload:     maxUpload,
		log:           log.With().Str("component", "admin_role_handler").Logger(),
	}
}

// ListPending godoc
// GET /api/v1/admin/roles/pending
func (h *AdminRoleHandler) ListPending(c *gin.Context) {
	rows, err := h.roleService.ListPending(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// ApproveAll godoc
// POST /api/v1/admin/roles/approve-all
// Approves every pending principal. Per-principal failures are listed, not fatal.
func (h *AdminRoleHandler) ApproveAll(c *gin.Context) {
	result, err := h.roleService.ApproveAll(c.Request.Context(), middleware.GetAuth(c).UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Approve godoc
// POST /api/v1/admin/users/:id/approve
func (h *AdminRoleHandler) Approve(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.roleService.Approve(c.Request.Context(), middleware.GetAuth(c).UserID, userID); err != nil {
		if errors.Is(err, service.ErrNoPendingRole) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user_id": userID, "status": model.ApprovalApproved})
}

// AddRole godoc
// POST /api/v1/admin/users/:id/roles
func (h *AdminRoleHandler) AddRole(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.AddRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"role": err.Error()})
		return
	}

	assignment, err := h.roleService.AddRole(c.Request.Context(), middleware.GetAuth(c).UserID, userID, role)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, assignment)
}

// DeleteRoles godoc
// DELETE /api/v1/admin/users/:id/roles
// Removes every role row of the principal in one statement.
func (h *AdminRoleHandler) DeleteRoles(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	n, err := h.roleService.DeleteRoles(c.Request.Context(), middleware.GetAuth(c).UserID, userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": n})
}

// Import godoc
// POST /api/v1/admin/roles/import
// Accepts a CSV or XLSX sheet (multipart field "file") and creates pending role rows.
func (h *AdminRoleHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	format, err := csvimport.FormatFromFilename(header.Filename)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}

	result, err := h.importService.Import(c.Request.Context(), middleware.GetAuth(c).UserID, file, format)
	if err != nil {
		switch {
		case errors.Is(err, csvimport.ErrInvalidHeader):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidHeader, map[string]string{"header": err.Error()})
		case errors.Is(err, csvimport.ErrNoRows):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"file": err.Error()})
		default:
			h.log.Error().Err(err).Str("filename", header.Filename).Msg("Role import failed")
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}
