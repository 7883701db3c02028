package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated operator identity.
// @Summary      Current operator
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	username := c.GetString("username")
	role := c.GetString("role")
	if username == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "Not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"username": username,
			"role":     role,
		},
	})
}
