package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
)

// StorageHandler handles uploads into the storage buckets.
type StorageHandler struct {
	storageService *service.StorageService
}

// NewStorageHandler creates a new StorageHandler.
func NewStorageHandler(storageService *service.StorageService) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

// Upload godoc
// POST /api/v1/storage/:bucket
// Uploads an image file and returns its public URL. Each bucket has its own gate.
func (h *StorageHandler) Upload(c *gin.Context) {
	bucket, err := service.ParseBucket(c.Param("bucket"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrUnknownBucket)
		return
	}

	if perms := bucket.WritePermissions(); len(perms) > 0 && !middleware.GetAuth(c).CanAny(perms...) {
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	obj, err := h.storageService.Save(bucket, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, obj)
}
