package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/store"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/writer"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrShowExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalid),
		errors.Is(err, writer.ErrHostsNeeded),
		errors.Is(err, writer.ErrNoContent):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrEmptyScript),
		errors.Is(err, model.ErrNoAudioProduced):
		return http.StatusUnprocessableEntity
	case errors.Is(err, studio.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
