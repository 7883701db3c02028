package video

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	videomodel "vidops/internal/model/video"
	"vidops/internal/pkg/assetpool"
	"vidops/internal/pkg/asyncjob"
	httputil "vidops/internal/pkg/http"
	"vidops/internal/pkg/tts"
	"vidops/internal/pkg/videogen"
	"vidops/internal/service"
)

// ErrorResponse is the error envelope shared by every API.
type ErrorResponse = httputil.ErrorResponse

// VideoInfo is the video representation used in responses.
type VideoInfo struct {
	ID             string  `json:"id"`
	ContentID      string  `json:"content_id"`
	Caption        string  `json:"caption"`
	Duration       int     `json:"duration"`
	VideoType      string  `json:"video_type,omitempty"`
	Objective      string  `json:"objective,omitempty"`
	BudgetPriority string  `json:"budget_priority,omitempty"`
	Provider       string  `json:"provider,omitempty"`
	ProviderName   string  `json:"provider_name,omitempty"`
	ProviderType   string  `json:"provider_type,omitempty"`
	EstimatedCost  float64 `json:"estimated_cost,omitempty"`
	TaskID         string  `json:"task_id,omitempty"`
	VideoURL       string  `json:"video_url,omitempty"`
	RealDuration   float64 `json:"real_duration,omitempty"`
	AudioURL       string  `json:"audio_url,omitempty"`
	EnhancedURL    string  `json:"enhanced_url,omitempty"`
	Status         string  `json:"status"`
	Stage          string  `json:"stage,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

func toVideoInfo(v *videomodel.Video) VideoInfo {
	info := VideoInfo{
		ID:             v.ID,
		ContentID:      v.ContentID,
		Caption:        v.Caption,
		Duration:       v.Duration,
		VideoType:      v.VideoType,
		Objective:      v.Objective,
		BudgetPriority: v.BudgetPriority,
		Provider:       v.ProviderID,
		ProviderName:   v.ProviderName,
		ProviderType:   v.ProviderType,
		EstimatedCost:  v.EstimatedCost,
		TaskID:         v.TaskID,
		VideoURL:       v.VideoURL,
		RealDuration:   v.RealDuration,
		AudioURL:       v.AudioURL,
		EnhancedURL:    v.EnhancedURL,
		Status:         string(v.Status),
		Stage:          string(v.Stage),
		ErrorMessage:   v.ErrorMessage,
	}
	if !v.CreatedAt.IsZero() {
		info.CreatedAt = v.CreatedAt.Format(time.RFC3339)
	}
	return info
}

// writePipelineError maps a pipeline failure to an HTTP response. The stage
// and the remote error text are surfaced verbatim; this API serves the
// internal dashboard and operators debug from these payloads.
func writePipelineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	errorCode := 50001
	message := "video generation failed"

	var selErr *videogen.SelectionError
	var synthErr *tts.SynthesisError
	var timeoutErr *asyncjob.TimeoutError

	switch {
	case errors.As(err, &selErr):
		status = http.StatusUnprocessableEntity
		errorCode = 42201
		message = "provider selection failed"
	case errors.Is(err, assetpool.ErrNoUnusedAssets):
		status = http.StatusConflict
		errorCode = 40901
		message = "no unused avatar assets available"
	case errors.As(err, &synthErr):
		errorCode = 50002
		message = "audio synthesis failed"
	case errors.As(err, &timeoutErr):
		status = http.StatusGatewayTimeout
		errorCode = 50401
		message = "remote job timed out"
	}

	var pipeErr *service.PipelineError
	if errors.As(err, &pipeErr) {
		message = message + " at stage " + string(pipeErr.Stage)
	}

	c.JSON(status, ErrorResponse{
		Code:    errorCode,
		Message: message,
		Detail:  err.Error(),
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
