package video

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRequest identifies the video to fetch.
type GetRequest struct {
	VideoID string `uri:"video_id" binding:"required"`
}

// Get returns one video with its pipeline state.
// @Summary      Get a video
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        video_id  path      string  true  "video ID"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /api/v1/videos/{video_id} [get]
func (h *Handler) Get(c *gin.Context) {
	var req GetRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid video_id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	v, err := h.videoService.Get(ctx, req.VideoID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    40401,
				Message: "video not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "failed to load video",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"video": toVideoInfo(v),
		},
	})
}
