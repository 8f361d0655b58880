package handlers

import (
	"net/http"
	"strconv"
	"time"

	"valve_timer/internal/actuation"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidChannel = "channel must be a non-negative integer"
	errSetOutput      = "failed to send output command"
)

// OutputRequest sets a channel to a level.
type OutputRequest struct {
	Level *bool `json:"level" form:"level" binding:"required" example:"true"`
}

// PulseRequest turns a channel on for a number of seconds.
type PulseRequest struct {
	DurationSec int64 `json:"duration_sec" form:"duration_sec" binding:"required" example:"30"`
}

func (h *Handler) channelParam(c *gin.Context) (int, bool) {
	ch, err := strconv.Atoi(c.Param("channel"))
	if err != nil || ch < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidChannel})
		return 0, false
	}
	return ch, true
}

// @Summary      Set output level
// @Description  Sends a manual command through the actuation queue
// @Tags         outputs
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        channel  path      int            true  "Output channel"
// @Param        body     body      OutputRequest  true  "Level"
// @Success      202      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /api/v1/outputs/{channel} [post]
// @Security     BearerAuth
func (h *Handler) setOutput(c *gin.Context) {
	ch, ok := h.channelParam(c)
	if !ok {
		return
	}
	var req OutputRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Outputs.Set(c.Request.Context(), ch, *req.Level); err != nil {
		h.respondError(c, errSetOutput, "output_set_failed", err, "channel", ch)
		return
	}
	// accepted: the write happens on the actuator goroutine
	c.JSON(http.StatusAccepted, gin.H{
		"channel": ch,
		"level":   actuation.LevelString(*req.Level),
	})
}

// @Summary      Pulse output
// @Description  Turns the channel on now and off after duration_sec
// @Tags         outputs
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        channel  path      int           true  "Output channel"
// @Param        body     body      PulseRequest  true  "Duration"
// @Success      202      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Router       /api/v1/outputs/{channel}/pulse [post]
// @Security     BearerAuth
func (h *Handler) pulseOutput(c *gin.Context) {
	ch, ok := h.channelParam(c)
	if !ok {
		return
	}
	var req PulseRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d := time.Duration(req.DurationSec) * time.Second
	if err := h.services.Outputs.Pulse(c.Request.Context(), ch, d); err != nil {
		h.respondError(c, errSetOutput, "output_pulse_failed", err, "channel", ch)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"channel":      ch,
		"duration_sec": req.DurationSec,
	})
}
