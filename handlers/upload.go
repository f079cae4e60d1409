package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/media"
)

const (
	maxGeneralUploadBytes = 10 << 20 // 10MB
	maxImageUploadBytes   = 5 << 20  // 5MB
	uploadTimeout         = 30 * time.Second
)

// UploadHandler forwards uploads to the external media store. Nothing
// is persisted locally; the caller stores the returned reference on the
// post or profile it belongs to, so a failed upload never leaves a
// half-uploaded reference behind.
type UploadHandler struct {
	uploader media.Uploader
	log      *zap.Logger
}

func NewUploadHandler(u media.Uploader, log *zap.Logger) *UploadHandler {
	return &UploadHandler{uploader: u, log: log}
}

// General accepts images, videos and a short list of document types.
func (h *UploadHandler) General(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	if header.Size > maxGeneralUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File too large. Maximum size is 10MB."})
		return
	}

	kind, ok := kindForMIME(header.Header.Get("Content-Type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File type not supported"})
		return
	}

	result, err := h.upload(header, media.UploadOptions{Kind: kind, Name: header.Filename})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "File uploaded successfully",
		"url":          result.URL,
		"publicId":     result.PublicID,
		"resourceType": result.ResourceType,
		"fileName":     header.Filename,
		"fileSize":     header.Size,
	})
}

func (h *UploadHandler) ProfilePicture(c *gin.Context) {
	h.imageOnly(c, "profilePicture", media.KindProfilePicture, "Profile picture uploaded successfully")
}

func (h *UploadHandler) PostImage(c *gin.Context) {
	h.imageOnly(c, "postImage", media.KindPostImage, "Post image uploaded successfully")
}

func (h *UploadHandler) imageOnly(c *gin.Context, field string, kind media.Kind, okMessage string) {
	if !h.configured(c) {
		return
	}

	header, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	if header.Size > maxImageUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File too large. Maximum size is 5MB."})
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only image files are allowed"})
		return
	}

	result, err := h.upload(header, media.UploadOptions{Kind: kind, Name: header.Filename})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  okMessage,
		"url":      result.URL,
		"publicId": result.PublicID,
	})
}

func (h *UploadHandler) upload(header *multipart.FileHeader, opts media.UploadOptions) (*media.Result, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	return h.uploader.Upload(ctx, file, opts)
}

func (h *UploadHandler) configured(c *gin.Context) bool {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Media storage is not configured"})
		return false
	}
	return true
}

func kindForMIME(contentType string) (media.Kind, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return media.KindPostImage, true
	case strings.HasPrefix(contentType, "video/"):
		return media.KindPostVideo, true
	case contentType == "application/pdf",
		contentType == "application/msword",
		contentType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		contentType == "text/plain":
		return media.KindPostDocument, true
	}
	return "", false
}
