package video

import (
	"net/http"

	"github.com/gin-gonic/gin"

	videomodel "vidops/internal/model/video"
)

// ListRequest filters the video listing.
type ListRequest struct {
	ContentID string `form:"content_id"`
	Status    string `form:"status"`
	Limit     int64  `form:"limit"`
}

// List returns videos newest first.
// @Summary      List videos
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        content_id  query     string  false  "filter by content ID"
// @Param        status      query     string  false  "filter by status"
// @Param        limit       query     int     false  "max results, default 50"
// @Success      200         {object}  map[string]interface{}
// @Failure      400         {object}  ErrorResponse
// @Failure      500         {object}  ErrorResponse
// @Router       /api/v1/videos [get]
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid query parameters",
			Detail:  err.Error(),
		})
		return
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}

	ctx := c.Request.Context()
	videos, err := h.videoService.List(ctx, req.ContentID, videomodel.Status(req.Status), req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "failed to list videos",
			Detail:  err.Error(),
		})
		return
	}

	infos := make([]VideoInfo, 0, len(videos))
	for _, v := range videos {
		infos = append(infos, toVideoInfo(v))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"videos": infos,
			"total":  len(infos),
		},
	})
}
