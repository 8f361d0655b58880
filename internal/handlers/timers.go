package handlers

import (
	"net/http"

	"valve_timer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errCreateTimer = "failed to create timer"
	errUpdateTimer = "failed to update timer"
	errDeleteTimer = "failed to delete timer"
	errGetTimer    = "failed to load timer"
	errListTimers  = "failed to load timers"
)

// TimerRequest is the create/update payload. JSON and form bodies are both
// accepted.
type TimerRequest struct {
	Name        string `json:"name" form:"name" binding:"required" example:"front lawn"`
	Description string `json:"description,omitempty" form:"description"`
	// Output channel; defaults to the configured channel when omitted
	Channel *int `json:"channel,omitempty" form:"channel" example:"476"`
	// Seconds the output stays on each day
	DurationOn int64 `json:"duration_on" form:"duration_on" binding:"required" example:"1800"`
	// Daily start time, HH:MM. Empty means now.
	StartTime string `json:"start_time,omitempty" form:"start_time" example:"06:00"`
}

func (r TimerRequest) input() service.TimerInput {
	return service.TimerInput{
		Name:          r.Name,
		Description:   r.Description,
		Channel:       r.Channel,
		DurationOnSec: r.DurationOn,
		StartTime:     r.StartTime,
	}
}

func (h *Handler) bindTimer(c *gin.Context) (TimerRequest, bool) {
	var req TimerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Infow("timer_bad_request_body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return req, false
	}
	return req, true
}

// @Summary      List timers
// @Tags         timers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, timers"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/timers [get]
// @Security     BearerAuth
func (h *Handler) listTimers(c *gin.Context) {
	timers, err := h.services.Timers.List(c.Request.Context())
	if err != nil {
		h.respondError(c, errListTimers, "timers_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(timers),
		"timers": timers,
	})
}

// @Summary      Create timer
// @Description  Stores a daily window and starts driving its channel immediately
// @Tags         timers
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      TimerRequest  true  "Timer payload"
// @Success      201   {object}  service.TimerView
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/timers [post]
// @Security     BearerAuth
func (h *Handler) createTimer(c *gin.Context) {
	req, ok := h.bindTimer(c)
	if !ok {
		return
	}
	v, err := h.services.Timers.Create(c.Request.Context(), req.input())
	if err != nil {
		h.respondError(c, errCreateTimer, "timer_create_failed", err, "name", req.Name)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// @Summary      Get timer
// @Tags         timers
// @Produce      json
// @Param        id   path      string  true  "Timer ID"
// @Success      200  {object}  service.TimerView
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/timers/{id} [get]
// @Security     BearerAuth
func (h *Handler) getTimer(c *gin.Context) {
	id := c.Param("id")
	v, err := h.services.Timers.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, errGetTimer, "timer_get_failed", err, "timer_id", id)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Update timer
// @Description  Replaces the definition and restarts the timer's schedule
// @Tags         timers
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id    path      string        true  "Timer ID"
// @Param        body  body      TimerRequest  true  "Timer payload"
// @Success      200   {object}  service.TimerView
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/timers/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateTimer(c *gin.Context) {
	id := c.Param("id")
	req, ok := h.bindTimer(c)
	if !ok {
		return
	}
	v, err := h.services.Timers.Update(c.Request.Context(), id, req.input())
	if err != nil {
		h.respondError(c, errUpdateTimer, "timer_update_failed", err, "timer_id", id)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Delete timer
// @Description  Stops the schedule; the output keeps its current level
// @Tags         timers
// @Produce      json
// @Param        id   path  string  true  "Timer ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/timers/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteTimer(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Timers.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, errDeleteTimer, "timer_delete_failed", err, "timer_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
