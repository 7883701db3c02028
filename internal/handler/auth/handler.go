// Package auth exposes the operator authentication endpoints.
package auth

import (
	"vidops/internal/service"
)

// Handler serves the auth endpoints.
type Handler struct {
	authService *service.AuthService
}

// NewHandler creates the handler.
func NewHandler(authService *service.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}
