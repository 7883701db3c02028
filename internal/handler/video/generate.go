package video

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidops/internal/service"
)

// GenerateRequest is the inbound generation request.
type GenerateRequest struct {
	ContentID      string `json:"content_id" binding:"required"`
	Caption        string `json:"caption" binding:"required"`
	Duration       int    `json:"duration"`
	VideoType      string `json:"video_type"`
	Objective      string `json:"objective"`
	BudgetPriority string `json:"budget_priority"`
	HasAudio       bool   `json:"has_audio"`
}

// Generate runs the full generation pipeline for one request and blocks
// until the video is rendered or the pipeline fails.
// @Summary      Generate a video
// @Description  Selects a provider, prepares inputs, synthesizes audio when needed, submits the render job and polls it to completion
// @Tags         videos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      GenerateRequest  true  "generation request"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Failure      422     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Failure      504     {object}  ErrorResponse
// @Router       /api/v1/videos/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	v, err := h.videoService.Generate(ctx, service.GenerateRequest{
		ContentID:      req.ContentID,
		Caption:        req.Caption,
		Duration:       req.Duration,
		VideoType:      req.VideoType,
		Objective:      req.Objective,
		BudgetPriority: req.BudgetPriority,
		HasAudio:       req.HasAudio,
	})
	if err != nil {
		writePipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "video generated",
		"data": gin.H{
			"video": toVideoInfo(v),
		},
	})
}
