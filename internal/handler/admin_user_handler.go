package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
)

// AdminUserHandler serves admin lookups over principals and the audit trail.
type AdminUserHandler struct {
	directoryService *service.DirectoryService
	auditService     *service.AuditService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(directoryService *service.DirectoryService, auditService *service.AuditService) *AdminUserHandler {
	return &AdminUserHandler{directoryService: directoryService, auditService: auditService}
}

// ResolveEmails godoc
// POST /api/v1/admin/users/emails
// Maps principal ids to account emails. Ids without an account are omitted.
func (h *AdminUserHandler) ResolveEmails(c *gin.Context) {
	var req model.ResolveEmailsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	emails, err := h.directoryService.ResolveEmails(c.Request.Context(), req.UserIDs)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, emails)
}

// AuditLogs godoc
// GET /api/v1/admin/audit-logs?page=&per_page=
func (h *AdminUserHandler) AuditLogs(c *gin.Context) {
	page, perPage := pageParams(c, 50)

	entries, total, err := h.auditService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	response.SuccessWithPagination(c, http.StatusOK, entries, response.NewPagination(page, perPage, total))
}
