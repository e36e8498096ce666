package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set("userId", userId)
	c.Next()
}

// unclaimedOnly lets a request through only while the device has no owner.
func (h *Handler) unclaimedOnly(c *gin.Context) {
	claimed, err := h.services.Claimed()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to check owner account", "auth_claim_check_failed", err)
		c.Abort()
		return
	}
	if claimed {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error": "device already has an owner account",
		})
		return
	}
	c.Next()
}
