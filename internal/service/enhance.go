package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"vidops/internal/model/video"
	"vidops/internal/pkg/asyncjob"
	"vidops/internal/pkg/editor"
	"vidops/internal/pkg/id"
)

// Enhance runs the optional post-processing step: a multi-track edit is
// synthesized from the generated video and its caption, submitted to the
// compositing service, and polled to completion. Only completed videos can
// be enhanced; the compositor requires the measured duration reported by
// the generation gateway.
func (s *VideoService) Enhance(ctx context.Context, videoID string) (*video.Render, error) {
	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("find video: %w", err)
	}
	if v.Status != video.StatusCompleted || v.VideoURL == "" {
		return nil, fmt.Errorf("video %s is not completed, cannot enhance", videoID)
	}
	if v.RealDuration <= 0 {
		return nil, fmt.Errorf("video %s has no measured duration, cannot build timeline", videoID)
	}

	rec := &video.Render{
		ID:      id.New(),
		VideoID: v.ID,
		Status:  video.StatusProcessing,
	}
	if err := s.renders.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create render record: %w", err)
	}

	result, err := s.runEnhance(ctx, v, rec)
	if err != nil {
		rec.Status = video.StatusFailed
		rec.ErrorMessage = err.Error()
		if updateErr := s.renders.Update(ctx, rec); updateErr != nil {
			log.Error().Err(updateErr).Str("render_id", rec.ID).Msg("failed to persist render failure")
		}
		return rec, err
	}

	rec.Status = video.StatusCompleted
	rec.URL = result.URL
	if err := s.renders.Update(ctx, rec); err != nil {
		return rec, fmt.Errorf("persist completed render: %w", err)
	}

	v.EnhancedURL = result.URL
	s.persist(ctx, v)

	return rec, nil
}

func (s *VideoService) runEnhance(ctx context.Context, v *video.Video, rec *video.Render) (*editor.RenderStatus, error) {
	spec, err := s.compositor.Build(v.VideoURL, v.RealDuration, v.Caption)
	if err != nil {
		return nil, stageErr(video.StageBuildingTimeline, err)
	}

	opts := asyncjob.Options{
		Name:        "timeline-render",
		Interval:    s.cfg.Editor.PollInterval,
		MaxAttempts: s.cfg.Editor.MaxPollAttempts,
	}

	submit := func(ctx context.Context) (string, error) {
		renderID, err := s.editor.SubmitRender(ctx, spec, editor.DefaultOutput)
		if err != nil {
			return "", err
		}
		rec.RenderID = renderID
		if updateErr := s.renders.Update(ctx, rec); updateErr != nil {
			log.Warn().Err(updateErr).Str("render_id", rec.ID).Msg("failed to persist remote render ID")
		}
		return renderID, nil
	}

	poll := func(ctx context.Context, renderID string) (asyncjob.Poll[*editor.RenderStatus], error) {
		status, err := s.editor.GetRender(ctx, renderID)
		if err != nil {
			return asyncjob.Poll[*editor.RenderStatus]{}, err
		}
		return asyncjob.Poll[*editor.RenderStatus]{
			State:  renderState(status.State),
			Result: status,
			Reason: status.Error,
		}, nil
	}

	task, status, err := asyncjob.Run(ctx, opts, submit, poll)
	if err != nil {
		var failed *asyncjob.FailedError
		if errors.As(err, &failed) {
			return nil, stageErr(video.StagePollingRender, fmt.Errorf("render %s failed: %s", failed.TaskID, failed.Reason))
		}
		return nil, stageErr(video.StagePollingRender, err)
	}

	if status.URL == "" {
		return nil, stageErr(video.StagePollingRender, fmt.Errorf("render %s finished without a URL", task.TaskID))
	}
	return status, nil
}

// Renders lists the post-processing history for a video.
func (s *VideoService) Renders(ctx context.Context, videoID string) ([]*video.Render, error) {
	return s.renders.FindByVideoID(ctx, videoID)
}

func renderState(state editor.RenderState) asyncjob.State {
	switch state {
	case editor.RenderStateDone:
		return asyncjob.StateSucceeded
	case editor.RenderStateFailed:
		return asyncjob.StateFailed
	case editor.RenderStateQueued:
		return asyncjob.StateQueued
	default:
		return asyncjob.StateProcessing
	}
}
