package auth

import (
	httputil "vidops/internal/pkg/http"
)

// ErrorResponse is the error envelope shared by every API.
type ErrorResponse = httputil.ErrorResponse
