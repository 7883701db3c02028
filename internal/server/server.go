// Package server wires the HTTP server and all pipeline dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vidops/internal/ai"
	"vidops/internal/config"
	"vidops/internal/handler"
	authHandler "vidops/internal/handler/auth"
	videoHandler "vidops/internal/handler/video"
	"vidops/internal/pkg/assetpool"
	"vidops/internal/pkg/asyncjob"
	"vidops/internal/pkg/cache"
	"vidops/internal/pkg/editor"
	"vidops/internal/pkg/jwt"
	"vidops/internal/pkg/mongodb"
	"vidops/internal/pkg/notify"
	"vidops/internal/pkg/storage"
	"vidops/internal/pkg/storagefactory"
	"vidops/internal/pkg/timeline"
	"vidops/internal/pkg/tts"
	"vidops/internal/pkg/videogen"
	videoRepo "vidops/internal/repository/video"
	"vidops/internal/server/middleware"
	"vidops/internal/service"
)

// Server is the HTTP server.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New builds the server and its full dependency graph. Remote credentials
// for the render gateway and editor fail here, before any request is
// served; optional infrastructure (mongo, redis) degrades with a warning.
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (s *Server) setupRoutes() error {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}
	jwtUtil := jwt.NewJWT(jwtSecret, accessTokenExpiry)

	v1 := s.engine.Group("/api/v1")
	{
		authSvc := service.NewAuthService(&s.cfg.Auth, jwtUtil)
		authHdl := authHandler.NewHandler(authSvc)

		v1.POST("/auth/login", authHdl.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(jwtUtil))
		protected.GET("/auth/me", authHdl.Me)

		if s.mongo == nil {
			log.Warn().Msg("MongoDB not configured, video endpoints disabled")
			return nil
		}

		videoSvc, err := s.buildVideoService()
		if err != nil {
			return err
		}
		videoHdl := videoHandler.NewHandler(videoSvc)

		protected.POST("/videos/generate", videoHdl.Generate)
		protected.POST("/videos/:video_id/enhance", videoHdl.Enhance)
		protected.GET("/videos/:video_id", videoHdl.Get)
		protected.GET("/videos", videoHdl.List)
	}

	return nil
}

// buildVideoService constructs the pipeline dependency graph.
func (s *Server) buildVideoService() (*service.VideoService, error) {
	ctx := context.Background()

	store, err := storagefactory.NewStorage(ctx, &s.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}

	classifier, err := s.buildClassifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	catalog := videogen.NewCatalog()
	selector := videogen.NewSelector(catalog, classifier)

	gateway, err := videogen.NewClient(videogen.ClientConfig{
		BaseURL: s.cfg.VideoGen.BaseURL,
		APIKey:  s.cfg.VideoGen.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create render gateway client: %w", err)
	}

	editorClient, err := editor.NewClient(editor.ClientConfig{
		BaseURL: s.cfg.Editor.BaseURL,
		APIKey:  s.cfg.Editor.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create editor client: %w", err)
	}

	assets, err := assetpool.NewClient(assetpool.ClientConfig{
		BaseURL: s.cfg.Assets.BaseURL,
		APIKey:  s.cfg.Assets.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create asset pool client: %w", err)
	}

	synthesizer := s.buildSynthesizer(store)
	notifier := notify.NewNotifier(s.cfg.Notify.WebhookURL)
	compositor := timeline.NewCompositor()

	db := s.mongo.Database()
	videos := videoRepo.NewVideoRepo(db)
	renders := videoRepo.NewRenderRepo(db)

	return service.NewVideoService(
		s.cfg,
		videos,
		renders,
		selector,
		catalog,
		synthesizer,
		assets,
		gateway,
		editorClient,
		compositor,
		notifier,
		s.redis,
	), nil
}

func (s *Server) buildClassifier(ctx context.Context) (videogen.Classifier, error) {
	if s.cfg.AI.Provider == "ark-sdk" {
		return ai.NewArkClassifier(&s.cfg.AI)
	}
	return ai.NewEinoClassifier(ctx, &s.cfg.AI)
}

// buildSynthesizer assembles the TTS fallback chain: the paid backend
// first, the cheaper one second. A backend with missing credentials is
// skipped with a warning rather than failing boot; avatar requests without
// any backend fail at synthesis time.
func (s *Server) buildSynthesizer(store storage.Storage) *tts.Synthesizer {
	var backends []tts.Backend

	if s.cfg.TTS.ElevenLabs.APIKey != "" {
		backend, err := tts.NewElevenLabs(tts.ElevenLabsConfig{
			APIKey:   s.cfg.TTS.ElevenLabs.APIKey,
			BaseURL:  s.cfg.TTS.ElevenLabs.BaseURL,
			VoiceID:  s.cfg.TTS.ElevenLabs.VoiceID,
			MaxChars: s.cfg.TTS.ElevenLabs.MaxChars,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to create elevenlabs backend, skipping")
		} else {
			backends = append(backends, backend)
		}
	}

	if s.cfg.TTS.Volcano.AccessToken != "" {
		backend, err := tts.NewVolcano(tts.VolcanoConfig{
			APIURL:      s.cfg.TTS.Volcano.APIURL,
			AccessToken: s.cfg.TTS.Volcano.AccessToken,
			AppID:       s.cfg.TTS.Volcano.AppID,
			Cluster:     s.cfg.TTS.Volcano.Cluster,
			VoiceType:   s.cfg.TTS.Volcano.VoiceType,
			SampleRate:  s.cfg.TTS.Volcano.SampleRate,
			MaxChars:    s.cfg.TTS.Volcano.MaxChars,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to create volcano backend, skipping")
		} else {
			backends = append(backends, backend)
		}
	}

	if len(backends) == 0 {
		log.Warn().Msg("no TTS backends configured, avatar voiceover synthesis will fail")
	}

	return tts.NewSynthesizer(store, backends...)
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: writeTimeout(s.cfg),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// writeTimeout stretches the configured write timeout to outlive the
// longest synchronous submit-and-poll path. Generate and Enhance hold the
// connection for a full poll budget; a shorter write deadline would kill
// the response after the pipeline already completed and persisted.
func writeTimeout(cfg *config.Config) time.Duration {
	timeout := cfg.Server.WriteTimeout

	longest := asyncjob.Budget(cfg.VideoGen.PollInterval, cfg.VideoGen.MaxPollAttempts)
	if b := asyncjob.Budget(cfg.Editor.PollInterval, cfg.Editor.MaxPollAttempts); b > longest {
		longest = b
	}
	if deadline := longest + time.Minute; deadline > timeout {
		timeout = deadline
	}
	return timeout
}

// Engine returns the gin engine, for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
