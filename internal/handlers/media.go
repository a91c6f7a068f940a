package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

type uploadResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	MIMEType  string    `json:"mimeType"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h HandlerSet) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	id := identity(c)
	result, err := h.svc.Media.UploadImage(c.Request.Context(), service.UploadInput{
		OwnerID:      id.UserID,
		File:         file,
		DeclaredMIME: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", id.UserID).Msg("upload failed")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"image": uploadResponse{
			ID:        result.Asset.ID,
			URL:       result.URL,
			Format:    result.Asset.Format,
			MIMEType:  result.Asset.MIMEType,
			SizeBytes: result.Asset.SizeBytes,
			CreatedAt: result.Asset.CreatedAt,
		},
	})
}
