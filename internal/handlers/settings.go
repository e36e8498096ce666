package handlers

import (
	"errors"
	"net/http"

	"zenith_pc_control/internal/config"
	"zenith_pc_control/internal/service"

	"github.com/gin-gonic/gin"
)

// RestoreRequest carries a settings document produced by GET /backup.
type RestoreRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// @Summary      Get settings
// @Description  Secrets are replaced by a placeholder.
// @Tags         settings
// @Produce      json
// @Success      200  {object}  models.Settings
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/config [get]
// @Security     BearerAuth
func (h *Handler) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Settings.Redacted())
}

// @Summary      Update settings
// @Description  Partial update; omitted fields keep their value. Nothing is applied when validation fails.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  service.SettingsPatch  true  "Settings patch"
// @Success      200  {object}  models.Settings
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/config [post]
// @Security     BearerAuth
func (h *Handler) updateConfig(c *gin.Context) {
	var patch service.SettingsPatch
	if ok := h.bindJSONOrBadRequest(c, &patch); !ok {
		return
	}
	if _, err := h.services.Settings.Update(c.Request.Context(), patch); err != nil {
		h.settingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.services.Settings.Redacted())
}

// @Summary      Download settings backup
// @Tags         settings
// @Produce      json
// @Success      200  {object}  models.Settings
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/backup [get]
// @Security     BearerAuth
func (h *Handler) backup(c *gin.Context) {
	raw, err := h.services.Settings.Backup()
	if errors.Is(err, config.ErrNoBackup) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "backup_failed", "settings_backup_failed", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// @Summary      Restore settings backup
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  RestoreRequest  true  "Backup document"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/restore [post]
// @Security     BearerAuth
func (h *Handler) restore(c *gin.Context) {
	var req RestoreRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if _, err := h.services.Settings.Restore(c.Request.Context(), []byte(req.Payload)); err != nil {
		h.settingsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

func (h *Handler) settingsError(c *gin.Context, err error) {
	if errors.Is(err, config.ErrInvalidSettings) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, "failed to save settings", "settings_save_failed", err)
}
