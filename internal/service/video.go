package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"vidops/internal/config"
	"vidops/internal/model/video"
	"vidops/internal/pkg/assetpool"
	"vidops/internal/pkg/asyncjob"
	"vidops/internal/pkg/cache"
	"vidops/internal/pkg/editor"
	"vidops/internal/pkg/id"
	"vidops/internal/pkg/notify"
	"vidops/internal/pkg/texttools"
	"vidops/internal/pkg/timeline"
	"vidops/internal/pkg/tts"
	"vidops/internal/pkg/videogen"
	videorepo "vidops/internal/repository/video"
)

const defaultCharsPerSecond = 15

// AudioSynthesizer is the TTS fallback chain capability.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*tts.Result, error)
}

// AssetPool is the avatar asset lease/commit capability.
type AssetPool interface {
	Lease(ctx context.Context) (*assetpool.Asset, error)
	Commit(ctx context.Context, fileID string) error
}

// GenerationGateway is the remote render gateway capability.
type GenerationGateway interface {
	SubmitTask(ctx context.Context, providerID string, input map[string]any) (string, error)
	GetTask(ctx context.Context, taskID string) (*videogen.TaskStatus, error)
}

// EditorGateway is the timeline-compositing service capability.
type EditorGateway interface {
	SubmitRender(ctx context.Context, spec *timeline.Spec, output editor.Output) (string, error)
	GetRender(ctx context.Context, renderID string) (*editor.RenderStatus, error)
}

// Notifier is the fire-and-forget video-ready signal.
type Notifier interface {
	VideoReady(ctx context.Context, event notify.VideoReadyEvent)
}

// GenerateRequest is the inbound generation request after handler-level
// decoding.
type GenerateRequest struct {
	ContentID      string
	Caption        string
	Duration       int
	VideoType      string
	Objective      string
	BudgetPriority string
	HasAudio       bool
}

// VideoService runs the generation pipeline end to end and persists every
// state transition.
type VideoService struct {
	cfg        *config.Config
	videos     videorepo.VideoRepository
	renders    videorepo.RenderRepository
	selector   *videogen.Selector
	catalog    *videogen.Catalog
	sanitizer  *texttools.TextSanitizer
	audio      AudioSynthesizer
	assets     AssetPool
	gateway    GenerationGateway
	editor     EditorGateway
	compositor *timeline.Compositor
	notifier   Notifier
	cache      *cache.RedisCache // nil disables selection caching
}

// NewVideoService wires the pipeline.
func NewVideoService(
	cfg *config.Config,
	videos videorepo.VideoRepository,
	renders videorepo.RenderRepository,
	selector *videogen.Selector,
	catalog *videogen.Catalog,
	audio AudioSynthesizer,
	assets AssetPool,
	gateway GenerationGateway,
	editorGW EditorGateway,
	compositor *timeline.Compositor,
	notifier Notifier,
	redisCache *cache.RedisCache,
) *VideoService {
	return &VideoService{
		cfg:        cfg,
		videos:     videos,
		renders:    renders,
		selector:   selector,
		catalog:    catalog,
		sanitizer:  texttools.NewTextSanitizer(),
		audio:      audio,
		assets:     assets,
		gateway:    gateway,
		editor:     editorGW,
		compositor: compositor,
		notifier:   notifier,
		cache:      redisCache,
	}
}

// Generate runs the full pipeline for one request. Every stage transition
// is persisted; a stage failure marks the record failed at that stage and
// returns a PipelineError. There is no cross-request retry: a re-submitted
// request re-leases assets and re-runs TTS from scratch.
func (s *VideoService) Generate(ctx context.Context, req GenerateRequest) (*video.Video, error) {
	if req.Duration <= 0 {
		req.Duration = 10
	}
	if req.BudgetPriority == "" {
		req.BudgetPriority = "balanced"
	}

	v := &video.Video{
		ID:             id.New(),
		ContentID:      req.ContentID,
		Caption:        req.Caption,
		Duration:       req.Duration,
		VideoType:      req.VideoType,
		Objective:      req.Objective,
		BudgetPriority: req.BudgetPriority,
		HasAudio:       req.HasAudio,
		Status:         video.StatusProcessing,
		Stage:          video.StageSelectingProvider,
	}
	if err := s.videos.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create video record: %w", err)
	}

	if err := s.runPipeline(ctx, v, req); err != nil {
		var pe *PipelineError
		if errors.As(err, &pe) {
			v.Status = video.StatusFailed
			v.Stage = pe.Stage
			v.ErrorMessage = pe.Err.Error()
		} else {
			v.Status = video.StatusFailed
			v.ErrorMessage = err.Error()
		}
		if updateErr := s.videos.Update(ctx, v); updateErr != nil {
			log.Error().Err(updateErr).Str("video_id", v.ID).Msg("failed to persist pipeline failure")
		}
		return v, err
	}

	return v, nil
}

func (s *VideoService) runPipeline(ctx context.Context, v *video.Video, req GenerateRequest) error {
	// Stage: provider selection.
	selection, err := s.selectProvider(ctx, req)
	if err != nil {
		return stageErr(video.StageSelectingProvider, err)
	}
	v.ProviderID = selection.Provider.ID
	v.ProviderName = selection.Provider.Name
	v.ProviderType = string(selection.Provider.Type)
	v.SelectionWhy = selection.Reason
	v.EstimatedCost = selection.EstimatedCost
	v.Stage = video.StagePreparingInputs
	s.persist(ctx, v)

	// Stage: input preparation, including asset lease and audio synthesis
	// for avatar providers.
	inputs, err := s.prepareInputs(ctx, v, req, selection.Provider)
	if err != nil {
		return err
	}

	input, err := videogen.BuildInput(selection.Provider, inputs)
	if err != nil {
		return stageErr(video.StagePreparingInputs, err)
	}

	// Stage: submit and poll generation.
	v.Stage = video.StageSubmittingGeneration
	s.persist(ctx, v)

	status, err := s.runGeneration(ctx, v, selection.Provider.ID, input)
	if err != nil {
		return err
	}

	// Stage: persist the deliverable.
	v.Stage = video.StagePersistingResult
	v.VideoURL = status.VideoURL
	v.RealDuration = status.Duration
	s.persist(ctx, v)

	// Stage: notify. Failure here never fails the pipeline; the notifier
	// logs and swallows internally.
	v.Stage = video.StageNotifying
	s.notifier.VideoReady(ctx, notify.VideoReadyEvent{
		VideoID:    v.ID,
		ContentID:  v.ContentID,
		VideoURL:   v.VideoURL,
		Provider:   v.ProviderID,
		Duration:   v.RealDuration,
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	})

	v.Stage = video.StageDone
	v.Status = video.StatusCompleted
	if err := s.videos.Update(ctx, v); err != nil {
		return stageErr(video.StagePersistingResult, fmt.Errorf("persist completed video: %w", err))
	}
	return nil
}

// selectProvider resolves the provider, consulting the selection cache
// first. Cache failures degrade to a classifier call.
func (s *VideoService) selectProvider(ctx context.Context, req GenerateRequest) (*videogen.Selection, error) {
	selReq := videogen.SelectionRequest{
		Duration:       req.Duration,
		VideoType:      req.VideoType,
		Objective:      req.Objective,
		BudgetPriority: req.BudgetPriority,
		HasAudio:       req.HasAudio,
		Caption:        req.Caption,
	}

	key := cache.SelectionCacheKey(selectionFingerprint(selReq))
	if s.cache != nil {
		var cached videogen.Selection
		if err := s.cache.Get(ctx, key, &cached); err == nil && cached.Provider.ID != "" {
			// The cache stores corrected selections only, so the catalog
			// recheck is a cheap consistency guard against stale entries.
			if _, ok := s.catalog.Lookup(cached.Provider.ID); ok && cached.Provider.SupportsDuration(req.Duration) {
				log.Debug().Str("provider", cached.Provider.ID).Msg("selection cache hit")
				return &cached, nil
			}
		}
	}

	selection, err := s.selector.Select(ctx, selReq)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ttl := s.cfg.Redis.SelectionTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		if err := s.cache.Set(ctx, key, selection, ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache selection")
		}
	}
	return selection, nil
}

// prepareInputs assembles the provider-type-specific generation inputs.
// Avatar providers need an image (leased from the pool) plus either a
// synthesized voiceover or the sanitized text itself.
func (s *VideoService) prepareInputs(ctx context.Context, v *video.Video, req GenerateRequest, provider videogen.Provider) (videogen.GenerationInputs, error) {
	inputs := videogen.GenerationInputs{
		Duration:    req.Duration,
		AspectRatio: "9:16",
	}

	if provider.Type == videogen.ProviderTypeGenerative {
		inputs.Prompt = s.sanitizer.Sanitize(req.Caption, 0)
		return inputs, nil
	}

	asset, err := s.assets.Lease(ctx)
	if err != nil {
		return inputs, stageErr(video.StagePreparingInputs, err)
	}
	v.AssetFileID = asset.FileID
	inputs.ImageURL = asset.URL

	charsPerSecond := s.cfg.TTS.ElevenLabs.CharsPerSecond
	if charsPerSecond <= 0 {
		charsPerSecond = defaultCharsPerSecond
	}
	script := s.sanitizer.Sanitize(req.Caption, req.Duration*charsPerSecond)

	if req.HasAudio {
		v.Stage = video.StageSynthesizingAudio
		s.persist(ctx, v)

		result, err := s.audio.Synthesize(ctx, script)
		if err != nil {
			return inputs, stageErr(video.StageSynthesizingAudio, err)
		}
		v.AudioURL = result.AudioURL
		v.AudioBackend = result.Backend
		inputs.AudioURL = result.AudioURL
	} else {
		// The provider speaks the script itself.
		inputs.Text = script
	}

	return inputs, nil
}

// runGeneration submits the task and polls to a terminal state. The asset
// commit happens the moment the remote accepts the submission, not at
// completion.
func (s *VideoService) runGeneration(ctx context.Context, v *video.Video, providerID string, input map[string]any) (*videogen.TaskStatus, error) {
	opts := asyncjob.Options{
		Name:        "video-generation",
		Interval:    s.cfg.VideoGen.PollInterval,
		MaxAttempts: s.cfg.VideoGen.MaxPollAttempts,
	}

	submit := func(ctx context.Context) (string, error) {
		taskID, err := s.gateway.SubmitTask(ctx, providerID, input)
		if err != nil {
			return "", err
		}
		v.TaskID = taskID
		v.Stage = video.StagePollingGeneration
		s.persist(ctx, v)

		if v.AssetFileID != "" {
			if err := s.assets.Commit(ctx, v.AssetFileID); err != nil {
				log.Warn().Err(err).Str("file_id", v.AssetFileID).Msg("failed to commit avatar asset")
			}
		}
		return taskID, nil
	}

	poll := func(ctx context.Context, taskID string) (asyncjob.Poll[*videogen.TaskStatus], error) {
		status, err := s.gateway.GetTask(ctx, taskID)
		if err != nil {
			return asyncjob.Poll[*videogen.TaskStatus]{}, err
		}
		return asyncjob.Poll[*videogen.TaskStatus]{
			State:  generationState(status.State),
			Result: status,
			Reason: status.Error,
		}, nil
	}

	task, status, err := asyncjob.Run(ctx, opts, submit, poll)
	if err != nil {
		stage := video.StagePollingGeneration
		if task.TaskID == "" {
			stage = video.StageSubmittingGeneration
		}

		var failed *asyncjob.FailedError
		if errors.As(err, &failed) {
			return nil, stageErr(stage, &videogen.GenerationError{TaskID: failed.TaskID, Reason: failed.Reason})
		}
		return nil, stageErr(stage, err)
	}

	if status.VideoURL == "" {
		return nil, stageErr(video.StagePollingGeneration, fmt.Errorf("task %s succeeded without a video URL", task.TaskID))
	}
	return status, nil
}

// persist saves intermediate stage transitions best-effort. A transient
// store failure must not kill a pipeline that can still deliver a video.
func (s *VideoService) persist(ctx context.Context, v *video.Video) {
	if err := s.videos.Update(ctx, v); err != nil {
		log.Warn().Err(err).Str("video_id", v.ID).Str("stage", string(v.Stage)).Msg("failed to persist stage transition")
	}
}

func generationState(state videogen.TaskState) asyncjob.State {
	switch state {
	case videogen.TaskStateSucceeded:
		return asyncjob.StateSucceeded
	case videogen.TaskStateFailed:
		return asyncjob.StateFailed
	case videogen.TaskStateQueued:
		return asyncjob.StateQueued
	default:
		return asyncjob.StateProcessing
	}
}

// selectionFingerprint hashes the request shape so identical submissions
// share a cache entry. Caption is excluded: it does not influence the
// provider choice rules, only the prompt flavor text.
func selectionFingerprint(req videogen.SelectionRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%s|%t",
		req.Duration, req.VideoType, req.Objective, req.BudgetPriority, req.HasAudio)))
	return hex.EncodeToString(sum[:16])
}

// Get returns one video by ID.
func (s *VideoService) Get(ctx context.Context, videoID string) (*video.Video, error) {
	return s.videos.FindByID(ctx, videoID)
}

// List returns videos newest first.
func (s *VideoService) List(ctx context.Context, contentID string, status video.Status, limit int64) ([]*video.Video, error) {
	return s.videos.List(ctx, contentID, status, limit)
}
