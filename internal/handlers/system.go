package handlers

import (
	"errors"
	"net/http"

	"valve_timer/internal/actuation"
	"valve_timer/internal/repository"
	"valve_timer/internal/schedule"
	"valve_timer/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errGetStatus       = "failed to load status"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// httpStatusFor maps service errors onto status codes. Validation errors
// carry their own message; anything else is reported with fallback.
func httpStatusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, schedule.ErrInvalidDuration),
		errors.Is(err, schedule.ErrTimeParsing),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, actuation.ErrActorStopped):
		return http.StatusServiceUnavailable, "actuator is not running"
	default:
		return http.StatusInternalServerError, fallback
	}
}

// respondError logs err and writes the mapped status.
func (h *Handler) respondError(c *gin.Context, fallback, logKey string, err error, kv ...interface{}) {
	code, msg := httpStatusFor(err, fallback)
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Runtime status
// @Description  Actuator counters, per-channel levels and every running timer's phase
// @Tags         system
// @Produce      json
// @Success      200  {object}  service.SystemStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "status_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
