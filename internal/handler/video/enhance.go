package video

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// EnhanceRequest identifies the video to post-process.
type EnhanceRequest struct {
	VideoID string `uri:"video_id" binding:"required"`
}

// RenderInfo is the render representation used in responses.
type RenderInfo struct {
	ID           string `json:"id"`
	VideoID      string `json:"video_id"`
	RenderID     string `json:"render_id,omitempty"`
	Status       string `json:"status"`
	URL          string `json:"url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Enhance submits a completed video to the timeline-compositing service and
// polls the render to completion.
// @Summary      Enhance a video
// @Description  Builds a multi-track edit (segments, b-roll, word captions) from the generated video and renders it remotely
// @Tags         videos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        video_id  path      string  true  "video ID"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Failure      504       {object}  ErrorResponse
// @Router       /api/v1/videos/{video_id}/enhance [post]
func (h *Handler) Enhance(c *gin.Context) {
	var req EnhanceRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid video_id",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	rec, err := h.videoService.Enhance(ctx, req.VideoID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    40401,
				Message: "video not found",
			})
			return
		}
		writePipelineError(c, err)
		return
	}

	info := RenderInfo{
		ID:           rec.ID,
		VideoID:      rec.VideoID,
		RenderID:     rec.RenderID,
		Status:       string(rec.Status),
		URL:          rec.URL,
		ErrorMessage: rec.ErrorMessage,
	}
	if !rec.CreatedAt.IsZero() {
		info.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "video enhanced",
		"data": gin.H{
			"render": info,
		},
	})
}
