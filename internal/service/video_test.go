package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"

	"vidops/internal/config"
	"vidops/internal/model/video"
	"vidops/internal/pkg/assetpool"
	"vidops/internal/pkg/editor"
	"vidops/internal/pkg/notify"
	"vidops/internal/pkg/timeline"
	"vidops/internal/pkg/tts"
	"vidops/internal/pkg/videogen"
)

// memVideoRepo is an in-memory VideoRepository.
type memVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*video.Video
}

func newMemVideoRepo() *memVideoRepo {
	return &memVideoRepo{videos: map[string]*video.Video{}}
}

func (r *memVideoRepo) Create(_ context.Context, v *video.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *memVideoRepo) FindByID(_ context.Context, id string) (*video.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *v
	return &cp, nil
}

func (r *memVideoRepo) List(_ context.Context, contentID string, status video.Status, _ int64) ([]*video.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*video.Video
	for _, v := range r.videos {
		if contentID != "" && v.ContentID != contentID {
			continue
		}
		if status != "" && v.Status != status {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memVideoRepo) Update(_ context.Context, v *video.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

// memRenderRepo is an in-memory RenderRepository.
type memRenderRepo struct {
	mu      sync.Mutex
	renders map[string]*video.Render
}

func newMemRenderRepo() *memRenderRepo {
	return &memRenderRepo{renders: map[string]*video.Render{}}
}

func (r *memRenderRepo) Create(_ context.Context, rec *video.Render) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.renders[rec.ID] = &cp
	return nil
}

func (r *memRenderRepo) FindByVideoID(_ context.Context, videoID string) ([]*video.Render, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*video.Render
	for _, rec := range r.renders {
		if rec.VideoID == videoID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRenderRepo) Update(_ context.Context, rec *video.Render) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.renders[rec.ID] = &cp
	return nil
}

// fixedClassifier always answers with the same provider.
type fixedClassifier struct {
	providerID string
}

func (f *fixedClassifier) Generate(_ context.Context, _ string) (string, error) {
	return `{"provider": "` + f.providerID + `", "reason": "fits the brief"}`, nil
}

// fakeAudio returns a canned TTS result.
type fakeAudio struct {
	result *tts.Result
	err    error
	calls  int
}

func (f *fakeAudio) Synthesize(_ context.Context, _ string) (*tts.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeAssets scripts the lease/commit pair.
type fakeAssets struct {
	asset     *assetpool.Asset
	leaseErr  error
	leases    int
	committed []string
}

func (f *fakeAssets) Lease(_ context.Context) (*assetpool.Asset, error) {
	f.leases++
	if f.leaseErr != nil {
		return nil, f.leaseErr
	}
	return f.asset, nil
}

func (f *fakeAssets) Commit(_ context.Context, fileID string) error {
	f.committed = append(f.committed, fileID)
	return nil
}

// fakeGateway scripts the generation submit/poll pair.
type fakeGateway struct {
	submitErr error
	status    *videogen.TaskStatus
	pollsLeft int // polls returning processing before the final status
	gotInput  map[string]any
	gotProv   string
}

func (f *fakeGateway) SubmitTask(_ context.Context, providerID string, input map[string]any) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.gotProv = providerID
	f.gotInput = input
	return "task-42", nil
}

func (f *fakeGateway) GetTask(_ context.Context, _ string) (*videogen.TaskStatus, error) {
	if f.pollsLeft > 0 {
		f.pollsLeft--
		return &videogen.TaskStatus{State: videogen.TaskStateProcessing}, nil
	}
	return f.status, nil
}

// fakeEditor scripts the render submit/poll pair.
type fakeEditor struct {
	status  *editor.RenderStatus
	gotSpec *timeline.Spec
}

func (f *fakeEditor) SubmitRender(_ context.Context, spec *timeline.Spec, _ editor.Output) (string, error) {
	f.gotSpec = spec
	return "render-7", nil
}

func (f *fakeEditor) GetRender(_ context.Context, _ string) (*editor.RenderStatus, error) {
	return f.status, nil
}

// fakeNotifier records events.
type fakeNotifier struct {
	events []notify.VideoReadyEvent
}

func (f *fakeNotifier) VideoReady(_ context.Context, event notify.VideoReadyEvent) {
	f.events = append(f.events, event)
}

func testConfig() *config.Config {
	return &config.Config{
		VideoGen: config.VideoGenConfig{PollInterval: time.Millisecond, MaxPollAttempts: 10},
		Editor:   config.EditorConfig{PollInterval: time.Millisecond, MaxPollAttempts: 10},
		TTS: config.TTSConfig{
			ElevenLabs: config.ElevenLabsConfig{CharsPerSecond: 15},
		},
	}
}

type fixture struct {
	svc      *VideoService
	videos   *memVideoRepo
	renders  *memRenderRepo
	audio    *fakeAudio
	assets   *fakeAssets
	gateway  *fakeGateway
	editor   *fakeEditor
	notifier *fakeNotifier
}

func newFixture(providerID string) *fixture {
	catalog := videogen.NewCatalog()
	selector := videogen.NewSelector(catalog, &fixedClassifier{providerID: providerID})

	f := &fixture{
		videos:  newMemVideoRepo(),
		renders: newMemRenderRepo(),
		audio:   &fakeAudio{result: &tts.Result{AudioURL: "https://blob/audio.mp3", Backend: "primary"}},
		assets: &fakeAssets{asset: &assetpool.Asset{
			FileID: "f1", Filename: "a.png", URL: "https://cdn/a.png", Pool: assetpool.PoolUnused,
		}},
		gateway: &fakeGateway{status: &videogen.TaskStatus{
			State: videogen.TaskStateSucceeded, VideoURL: "https://cdn/final.mp4", Duration: 10.4,
		}},
		editor:   &fakeEditor{status: &editor.RenderStatus{State: editor.RenderStateDone, URL: "https://cdn/enhanced.mp4"}},
		notifier: &fakeNotifier{},
	}

	f.svc = NewVideoService(
		testConfig(), f.videos, f.renders, selector, catalog,
		f.audio, f.assets, f.gateway, f.editor,
		timeline.NewCompositor(), f.notifier, nil,
	)
	return f
}

func TestVideoService_Generate(t *testing.T) {
	Convey("Generate runs the pipeline end to end", t, func() {
		ctx := context.Background()

		Convey("avatar flow with voiceover", func() {
			f := newFixture("omnihuman/v1_5")

			v, err := f.svc.Generate(ctx, GenerateRequest{
				ContentID: "c1",
				Caption:   "Check out this amazing new product today",
				Duration:  10,
				VideoType: "talking_head",
				HasAudio:  true,
			})
			So(err, ShouldBeNil)
			So(v.Status, ShouldEqual, video.StatusCompleted)
			So(v.Stage, ShouldEqual, video.StageDone)
			So(v.ProviderType, ShouldEqual, "avatar")
			So(v.VideoURL, ShouldEqual, "https://cdn/final.mp4")
			So(v.RealDuration, ShouldAlmostEqual, 10.4)
			So(v.AudioURL, ShouldEqual, "https://blob/audio.mp3")
			So(v.AssetFileID, ShouldEqual, "f1")

			Convey("the submitted input carries image and audio", func() {
				So(f.gateway.gotInput["image_url"], ShouldEqual, "https://cdn/a.png")
				So(f.gateway.gotInput["audio_url"], ShouldEqual, "https://blob/audio.mp3")
			})

			Convey("the asset is committed once the submission is accepted", func() {
				So(f.assets.committed, ShouldResemble, []string{"f1"})
			})

			Convey("the notifier fires once", func() {
				So(len(f.notifier.events), ShouldEqual, 1)
				So(f.notifier.events[0].VideoURL, ShouldEqual, "https://cdn/final.mp4")
			})

			Convey("the stored record matches", func() {
				stored, err := f.videos.FindByID(ctx, v.ID)
				So(err, ShouldBeNil)
				So(stored.Status, ShouldEqual, video.StatusCompleted)
			})
		})

		Convey("generative flow sends a prompt and touches no assets", func() {
			f := newFixture("kling/v2-6")

			v, err := f.svc.Generate(ctx, GenerateRequest{
				ContentID: "c2",
				Caption:   "Energetic dance transition reel",
				Duration:  10,
				VideoType: "dance",
			})
			So(err, ShouldBeNil)
			So(v.ProviderType, ShouldEqual, "generative")
			So(f.gateway.gotInput["prompt"], ShouldNotBeEmpty)
			So(f.gateway.gotInput["aspect_ratio"], ShouldEqual, "9:16")
			So(f.assets.leases, ShouldEqual, 0)
			So(f.audio.calls, ShouldEqual, 0)
		})

		Convey("an avatar request without voiceover passes text instead", func() {
			f := newFixture("omnihuman/v1_5")

			_, err := f.svc.Generate(ctx, GenerateRequest{
				ContentID: "c3",
				Caption:   "Talking head script",
				Duration:  10,
				VideoType: "talking_head",
				HasAudio:  false,
			})
			So(err, ShouldBeNil)
			So(f.audio.calls, ShouldEqual, 0)
			So(f.gateway.gotInput["text"], ShouldEqual, "Talking head script")
		})

		Convey("an empty asset pool fails avatar requests at input preparation", func() {
			f := newFixture("omnihuman/v1_5")
			f.assets.leaseErr = assetpool.ErrNoUnusedAssets

			v, err := f.svc.Generate(ctx, GenerateRequest{
				ContentID: "c4",
				Caption:   "caption",
				Duration:  10,
				VideoType: "talking_head",
				HasAudio:  true,
			})
			So(errors.Is(err, assetpool.ErrNoUnusedAssets), ShouldBeTrue)
			So(v.Status, ShouldEqual, video.StatusFailed)
			So(v.Stage, ShouldEqual, video.StagePreparingInputs)
			So(f.audio.calls, ShouldEqual, 0)
		})

		Convey("a remote generation failure records the stage and reason", func() {
			f := newFixture("kling/v2-6")
			f.gateway.status = &videogen.TaskStatus{State: videogen.TaskStateFailed, Error: "nsfw content"}

			v, err := f.svc.Generate(ctx, GenerateRequest{
				ContentID: "c5",
				Caption:   "caption",
				Duration:  10,
				VideoType: "dance",
			})
			So(err, ShouldNotBeNil)
			var genErr *videogen.GenerationError
			So(errors.As(err, &genErr), ShouldBeTrue)
			So(genErr.Reason, ShouldEqual, "nsfw content")
			So(v.Status, ShouldEqual, video.StatusFailed)
			So(v.Stage, ShouldEqual, video.StagePollingGeneration)
			So(v.ErrorMessage, ShouldContainSubstring, "nsfw")
		})

		Convey("a few processing polls before success are fine", func() {
			f := newFixture("kling/v2-6")
			f.gateway.pollsLeft = 3

			v, err := f.svc.Generate(ctx, GenerateRequest{
				ContentID: "c6",
				Caption:   "caption",
				Duration:  10,
				VideoType: "dance",
			})
			So(err, ShouldBeNil)
			So(v.Status, ShouldEqual, video.StatusCompleted)
			So(v.TaskID, ShouldEqual, "task-42")
		})
	})
}

func TestVideoService_Enhance(t *testing.T) {
	Convey("Enhance post-processes a completed video", t, func() {
		ctx := context.Background()

		generate := func(f *fixture) *video.Video {
			v, err := f.svc.Generate(ctx, GenerateRequest{
				ContentID: "c1",
				Caption:   "one two three four five",
				Duration:  10,
				VideoType: "dance",
			})
			So(err, ShouldBeNil)
			return v
		}

		Convey("builds the timeline from the measured duration and renders it", func() {
			f := newFixture("kling/v2-6")
			v := generate(f)

			rec, err := f.svc.Enhance(ctx, v.ID)
			So(err, ShouldBeNil)
			So(rec.Status, ShouldEqual, video.StatusCompleted)
			So(rec.URL, ShouldEqual, "https://cdn/enhanced.mp4")
			So(rec.RenderID, ShouldEqual, "render-7")

			Convey("the submitted spec covers the measured duration", func() {
				So(f.editor.gotSpec, ShouldNotBeNil)
				videoTrack := f.editor.gotSpec.Tracks[len(f.editor.gotSpec.Tracks)-1]
				total := 0.0
				for _, clip := range videoTrack.Clips {
					total += clip.Length
				}
				So(total, ShouldAlmostEqual, 10.4, 1e-9)
			})

			Convey("the enhanced URL lands on the video record", func() {
				stored, _ := f.videos.FindByID(ctx, v.ID)
				So(stored.EnhancedURL, ShouldEqual, "https://cdn/enhanced.mp4")
			})
		})

		Convey("a pending video cannot be enhanced", func() {
			f := newFixture("kling/v2-6")
			pending := &video.Video{ID: "v-pending", Status: video.StatusProcessing}
			So(f.videos.Create(ctx, pending), ShouldBeNil)

			_, err := f.svc.Enhance(ctx, "v-pending")
			So(err, ShouldNotBeNil)
		})

		Convey("an unknown video is not found", func() {
			f := newFixture("kling/v2-6")
			_, err := f.svc.Enhance(ctx, "missing")
			So(errors.Is(err, mongo.ErrNoDocuments), ShouldBeTrue)
		})

		Convey("a failed remote render records the failure", func() {
			f := newFixture("kling/v2-6")
			v := generate(f)
			f.editor.status = &editor.RenderStatus{State: editor.RenderStateFailed, Error: "asset fetch failed"}

			rec, err := f.svc.Enhance(ctx, v.ID)
			So(err, ShouldNotBeNil)
			So(rec.Status, ShouldEqual, video.StatusFailed)
			So(rec.ErrorMessage, ShouldContainSubstring, "asset fetch failed")
		})
	})
}
