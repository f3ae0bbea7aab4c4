package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"linklet/internal/services"
	"linklet/internal/storage"
	"linklet/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadHandler struct {
	storage *storage.Client
}

func NewUploadHandler(storage *storage.Client) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// Presign hands the client a direct-upload URL for an attachment or avatar.
func (h *UploadHandler) Presign(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("uploads disabled", "UPLOADS_DISABLED"))
		return
	}

	var req httpdto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileName == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	key := uploadKey(userID, req.FileName)
	uploadURL, err := h.storage.PresignPut(c.Request.Context(), key, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("presign failed", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PresignUploadResponse{
		UploadURL: uploadURL,
		FileURL:   h.storage.FileURL(key),
		Key:       key,
	}))
}

// Upload accepts a multipart file and stores it server side.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("uploads disabled", "UPLOADS_DISABLED"))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("file is required", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	key := uploadKey(userID, header.Filename)
	url, err := h.storage.Upload(c.Request.Context(), key, header.Header.Get("Content-Type"), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("upload failed", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.UploadResponse{FileURL: url, Key: key}))
}

func uploadKey(userID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("uploads/%s/%d%s", userID, time.Now().UnixNano(), ext)
}
