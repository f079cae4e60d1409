package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/apperror"
)

// respondError maps store errors onto the HTTP taxonomy. AppError
// messages go to the client verbatim; anything else is a 500 with a
// generic body and the cause logged server-side only.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(appErr, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(appErr, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(appErr, apperror.ErrForbidden):
			status = http.StatusForbidden
		}
		if status == http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		}
		c.JSON(status, gin.H{"message": appErr.Message})
		return
	}

	log.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// actorID reads the acting user id from the JSON body, falling back to
// the query string for callers that cannot send a body with DELETE.
func actorID(c *gin.Context) string {
	if id := c.Query("userId"); id != "" {
		return id
	}
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.UserID
	}
	return ""
}
