package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minhvt/vision-jobs/internal/api/dto"
)

// PresignUpload handles POST /api/v1/uploads/presign
// Issues a presigned PUT URL so clients upload image bytes directly to object
// storage and submit only locators.
func (h *JobHandler) PresignUpload(c *gin.Context) {
	var req dto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	upload, err := h.uploads.PresignUpload(c.Request.Context(), req.Filename)
	if err != nil {
		h.logger.Error("Failed to presign upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to presign upload",
		})
		return
	}

	c.JSON(http.StatusOK, upload)
}
