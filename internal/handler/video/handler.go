// Package video exposes the generation pipeline endpoints.
package video

import (
	"vidops/internal/service"
)

// Handler serves the video endpoints.
type Handler struct {
	videoService *service.VideoService
}

// NewHandler creates the handler.
func NewHandler(videoService *service.VideoService) *Handler {
	return &Handler{
		videoService: videoService,
	}
}
