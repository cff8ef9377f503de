package app

import (
	"context"
	"fmt"

	"github.com/kapu/speech-archive-go/internal/archive"
	"github.com/kapu/speech-archive-go/internal/config"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/pipeline"
	"github.com/kapu/speech-archive-go/internal/service/ai"
	"github.com/kapu/speech-archive-go/internal/service/align"
	"github.com/kapu/speech-archive-go/internal/service/cache"
	"github.com/kapu/speech-archive-go/internal/service/commentary"
	"github.com/kapu/speech-archive-go/internal/service/media"
	"github.com/kapu/speech-archive-go/internal/service/relevance"
	"github.com/kapu/speech-archive-go/internal/service/speech"
	"github.com/kapu/speech-archive-go/internal/service/youtube"
	"go.uber.org/zap"
)

// Container bundles the assembled services for one archiver run.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Sources []domain.ChannelSource

	Cache      *cache.CacheService
	YouTube    *youtube.YouTubeService
	Models     *ai.ModelManager
	Speech     *speech.Client
	Downloader *media.Downloader
	Evaluator  *commentary.Evaluator
	Aligner    *align.Aligner
	Filter     *relevance.Filter
	Store      *archive.Store

	closers []func()
}

// NewPipeline wires a pipeline over the container's services.
func (c *Container) NewPipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.Dependencies{
		YouTube:    c.YouTube,
		Filter:     c.Filter,
		Downloader: c.Downloader,
		Recognizer: c.Speech,
		Evaluator:  c.Evaluator,
		Aligner:    c.Aligner,
		Store:      c.Store,
		Logger:     c.Logger,
	}, c.Config.Pipeline.VideoWorkers, c.Config.Archive.MaxVideosPerChannel)
}

// Close releases the container's external connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services. Heavy-weight startup
// (cache, AI clients, speech, binary checks, source catalog) happens
// here so a broken installation fails before any video is touched.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// The source catalog is part of the configuration: a bad catalog
	// stops the run before any quota is spent.
	sources, err := domain.LoadSources(cfg.Archive.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no channels", cfg.Archive.SourcesFile)
	}
	logger.Info("Source catalog loaded",
		zap.String("file", cfg.Archive.SourcesFile),
		zap.Int("channels", len(sources)))

	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled {
		cacheSvc, err = cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
	} else {
		logger.Info("Redis cache disabled, running without cross-run caching")
	}

	var youtubeSvc *youtube.YouTubeService
	if cfg.YouTube.UseOAuth {
		oauthSvc, oauthErr := youtube.NewOAuthService(cfg.YouTube.ClientSecretsFile, cfg.YouTube.TokenFile, logger)
		if oauthErr != nil {
			return nil, fmt.Errorf("failed to create OAuth service: %w", oauthErr)
		}
		if !oauthSvc.IsAuthorized() {
			if authErr := oauthSvc.Authorize(ctx); authErr != nil {
				return nil, fmt.Errorf("OAuth authorization failed: %w", authErr)
			}
		}
		httpClient, clientErr := oauthSvc.HTTPClient(ctx)
		if clientErr != nil {
			return nil, clientErr
		}
		youtubeSvc, err = youtube.NewYouTubeServiceFromClient(ctx, httpClient, cacheSvc, logger)
	} else {
		youtubeSvc, err = youtube.NewYouTubeService(cfg.YouTube.APIKey, cacheSvc, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:   cfg.Gemini.APIKey,
		OpenAIAPIKey:   cfg.OpenAI.APIKey,
		EnableFallback: cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	speechClient, err := speech.NewClient(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	closers = append(closers, func() {
		_ = speechClient.Close()
	})

	downloader, err := media.NewDownloader(cfg.Archive.AudioWorkDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create downloader: %w", err)
	}

	store, err := archive.NewStore(cfg.Archive.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive store: %w", err)
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Sources:    sources,
		Cache:      cacheSvc,
		YouTube:    youtubeSvc,
		Models:     modelManager,
		Speech:     speechClient,
		Downloader: downloader,
		Evaluator:  commentary.NewEvaluator(modelManager, cacheSvc, logger),
		Aligner:    align.NewAligner(logger),
		Filter:     relevance.NewFilter(cfg.Archive.Keywords, logger),
		Store:      store,
		closers:    closers,
	}, nil
}
