package handlers

import (
	"errors"
	"net/http"

	"zenith_pc_control"
	"zenith_pc_control/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errGetState        = "failed to load state"
	errPowerFailed     = "failed to drive power line"
	errInvalidBodyPref = "invalid body: "
)

const manualPage = `<h2>Manual ` + zenith_pc_control.DefaultDeviceName + `</h2>
<p>Cloud assistant: bind the pcPower and pcStatus properties of the device.</p>
<p>Telegram: create a bot with BotFather and copy its token and your chat id into the settings.</p>
<p>Discord: create a webhook in your channel and paste its URL into the settings.</p>`

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// PowerRequest is the body of a power command.
type PowerRequest struct {
	// Requested power line level
	On *bool `json:"on" binding:"required" example:"true"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  statusOK,
		"version": zenith_pc_control.Version,
	})
}

// @Summary      Get device status
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.DeviceState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "status_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Set PC power
// @Description  Rejected with 409 in maintenance mode and 429 within 2 s of the previous accepted command.
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        body  body  PowerRequest  true  "Power payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/power [post]
// @Security     BearerAuth
func (h *Handler) setPower(c *gin.Context) {
	var req PowerRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	err := h.services.Power.Command(c.Request.Context(), *req.On)
	switch {
	case errors.Is(err, service.ErrMaintenanceMode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDebounced):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errPowerFailed, "power_command_failed", err, "on", *req.On)
	default:
		c.JSON(http.StatusOK, gin.H{"status": statusAccepted, "pc_power": h.services.Power.Desired()})
	}
}

// @Summary      User manual
// @Tags         device
// @Produce      html
// @Success      200  {string}  string
// @Router       /api/v1/manual [get]
// @Security     BearerAuth
func (h *Handler) manual(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(manualPage))
}
