package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
)

// ContentHandler serves news, activities, and media resources.
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func contentKind(c *gin.Context) (model.ContentKind, bool) {
	kind, err := model.ParseContentKind(c.Param("kind"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return "", false
	}
	return kind, true
}

// List godoc
// GET /api/v1/public/:kind?category=&page=&per_page=
// Lists items newest first.
func (h *ContentHandler) List(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}
	page, perPage := pageParams(c, 20)

	items, total, err := h.contentService.List(c.Request.Context(), kind, model.ContentFilter{
		Category: c.Query("category"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		failRepo(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, response.NewPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/public/:kind/:id
func (h *ContentHandler) Get(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.GetByID(c.Request.Context(), kind, id)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeepLink godoc
// GET /api/v1/public/deeplink?hash=%23news-detail-12
// Returns the item a shared fragment points at.
func (h *ContentHandler) DeepLink(c *gin.Context) {
	item, err := h.contentService.ResolveDeepLink(c.Request.Context(), c.Query("hash"))
	if err != nil {
		if errors.Is(err, access.ErrInvalidDeepLink) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"item": item,
		"hash": access.DeepLink(item.Kind, item.ID),
	})
}

// Create godoc
// POST /api/v1/staff/:kind
func (h *ContentHandler) Create(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}
	var req model.ContentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.contentService.Create(c.Request.Context(), kind, &req, middleware.GetAuth(c).UserID)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// Update godoc
// PUT /api/v1/staff/:kind/:id
func (h *ContentHandler) Update(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req model.ContentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.contentService.Update(c.Request.Context(), kind, id, &req)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Delete godoc
// DELETE /api/v1/staff/:kind/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	kind, ok := contentKind(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), middleware.GetAuth(c).UserID, kind, id); err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
