// Package notify sends the fire-and-forget "video ready" signal.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// VideoReadyEvent is the webhook payload.
type VideoReadyEvent struct {
	VideoID    string  `json:"video_id"`
	ContentID  string  `json:"content_id"`
	VideoURL   string  `json:"video_url"`
	Provider   string  `json:"provider"`
	Duration   float64 `json:"duration"`
	FinishedAt string  `json:"finished_at"`
}

// Notifier posts pipeline events to a webhook. A notification failure is
// logged and swallowed; it never fails the pipeline that produced the video.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewNotifier creates a notifier. An empty URL yields a no-op notifier.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VideoReady posts the event. Always returns; errors are logged only.
func (n *Notifier) VideoReady(ctx context.Context, event VideoReadyEvent) {
	if n.webhookURL == "" {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Str("video_id", event.VideoID).Msg("failed to marshal notification")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("video_id", event.VideoID).Msg("failed to create notification request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("video_id", event.VideoID).Msg("notification delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn().
			Int("status_code", resp.StatusCode).
			Str("video_id", event.VideoID).
			Msg("notification rejected by webhook")
		return
	}

	log.Debug().Str("video_id", event.VideoID).Msg("video ready notification sent")
}
