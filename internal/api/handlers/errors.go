package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/partsboard/internal/editflow"
	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/remote"
	"github.com/your-org/partsboard/internal/upstream"
)

// statusOf maps domain and backend errors to an HTTP status.
func statusOf(err error) int {
	var se *upstream.StatusError
	switch {
	case errors.As(err, &se):
		return se.Code
	case errors.Is(err, upstream.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidArgument),
		errors.Is(err, remote.ErrQueryDisabled),
		errors.Is(err, editflow.ErrNoModel),
		errors.Is(err, editflow.ErrNoSubpart):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, editflow.ErrSubmitInFlight),
		errors.Is(err, editflow.ErrNotEditing),
		errors.Is(err, editflow.ErrNotConfirming):
		return http.StatusConflict
	case errors.Is(err, editflow.ErrReasonRequired),
		errors.Is(err, editflow.ErrNoChanges):
		return http.StatusUnprocessableEntity
	case errors.Is(err, remote.ErrUpdateRejected):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// intQuery reads a positive integer query parameter, falling back to def.
func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// idQuery reads an optional int64 query parameter. Absent and empty are nil.
func idQuery(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
