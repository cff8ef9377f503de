package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/service/relevance"
	"github.com/kapu/speech-archive-go/internal/service/speech"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ChannelLister is the slice of the YouTube service the pipeline uses.
type ChannelLister interface {
	ResolveChannelID(ctx context.Context, channelURL string) (string, error)
	ListChannelVideos(ctx context.Context, channelID string, maxVideos int) ([]*domain.VideoDescriptor, error)
	GetVideoDetails(ctx context.Context, videoID string) (*domain.VideoDetails, error)
}

type AudioDownloader interface {
	DownloadAudio(ctx context.Context, videoID string) (string, error)
	Cleanup(path string)
}

type Recognizer interface {
	Recognize(ctx context.Context, videoID, audioPath string) (*speech.Result, error)
}

type CommentaryEvaluator interface {
	Evaluate(ctx context.Context, video *domain.VideoDescriptor, transcript string) *domain.CommentaryDecision
}

type SegmentAligner interface {
	Align(transcriptions []domain.TranscriptionSegment, turns []domain.DiarizationTurn) []domain.AttributedSegment
}

type ArchiveStore interface {
	SaveVideo(metadata *domain.MetadataRecord, transcript *domain.TranscriptRecord) error
	Exists(videoID string) bool
}

type Dependencies struct {
	YouTube    ChannelLister
	Filter     *relevance.Filter
	Downloader AudioDownloader
	Recognizer Recognizer
	Evaluator  CommentaryEvaluator
	Aligner    SegmentAligner
	Store      ArchiveStore
	Logger     *zap.Logger
}

// Pipeline drives each discovered video through download, recognition,
// classification, alignment, and persistence.
type Pipeline struct {
	deps                Dependencies
	workers             int
	maxVideosPerChannel int
}

func New(deps Dependencies, workers, maxVideosPerChannel int) *Pipeline {
	if workers < 1 {
		workers = constants.PipelineConfig.DefaultVideoWorkers
	}
	if workers > constants.PipelineConfig.MaxVideoWorkers {
		workers = constants.PipelineConfig.MaxVideoWorkers
	}

	return &Pipeline{
		deps:                deps,
		workers:             workers,
		maxVideosPerChannel: maxVideosPerChannel,
	}
}

// Report is the tally of one pipeline run.
type Report struct {
	Discovered      int                            `json:"discovered"`
	FilteredOut     int                            `json:"filtered_out"`
	FilteredIn      int                            `json:"filtered_in"`
	ByLevel         map[domain.CommentaryLevel]int `json:"by_level"`
	AlreadyArchived int                            `json:"already_archived"`
	Skipped         int                            `json:"skipped"`
	Persisted       int                            `json:"persisted"`
	Errors          int                            `json:"errors"`
	Duration        time.Duration                  `json:"duration"`
}

type videoOutcome struct {
	status          domain.VideoStatus
	level           domain.CommentaryLevel
	alreadyArchived bool
}

// Run processes every configured channel. Channels and videos fail
// independently: a provider error empties one channel, a video error
// marks that video, and the run keeps going either way.
func (p *Pipeline) Run(ctx context.Context, sources []domain.ChannelSource) (*Report, error) {
	started := time.Now()
	report := &Report{
		ByLevel: make(map[domain.CommentaryLevel]int),
	}

	var kept []*domain.VideoDescriptor

	for i := range sources {
		source := &sources[i]
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		videos := p.collectChannel(ctx, source)
		report.Discovered += len(videos)

		filtered := p.deps.Filter.Apply(videos, source.Selectivity)
		report.FilteredIn += len(filtered)
		report.FilteredOut += len(videos) - len(filtered)

		kept = append(kept, filtered...)
	}

	p.deps.Logger.Info("Discovery complete",
		zap.Int("channels", len(sources)),
		zap.Int("discovered", report.Discovered),
		zap.Int("kept", report.FilteredIn))

	workerPool := pool.New().WithMaxGoroutines(p.workers)

	outcomes := make([]videoOutcome, len(kept))
	outcomesMu := sync.Mutex{}

	for idx, video := range kept {
		idx, video := idx, video
		workerPool.Go(func() {
			outcome := p.processVideo(ctx, video)
			outcomesMu.Lock()
			outcomes[idx] = outcome
			outcomesMu.Unlock()
		})
	}

	workerPool.Wait()

	for _, outcome := range outcomes {
		if outcome.alreadyArchived {
			report.AlreadyArchived++
			continue
		}
		// Cancellation strands queued videos in a non-terminal state;
		// they were never attempted and belong in no tally.
		if !outcome.status.IsTerminal() {
			continue
		}
		if outcome.level != "" {
			report.ByLevel[outcome.level]++
		}
		switch outcome.status {
		case domain.StatusSkipped:
			report.Skipped++
		case domain.StatusPersisted:
			report.Persisted++
		case domain.StatusFailed:
			report.Errors++
		}
	}

	report.Duration = time.Since(started)

	p.deps.Logger.Info("Pipeline run complete",
		zap.Int("discovered", report.Discovered),
		zap.Int("filtered_out", report.FilteredOut),
		zap.Int("already_archived", report.AlreadyArchived),
		zap.Int("skipped", report.Skipped),
		zap.Int("persisted", report.Persisted),
		zap.Int("errors", report.Errors),
		zap.Duration("duration", report.Duration))

	return report, ctx.Err()
}

// collectChannel lists a channel's recent uploads. Any provider failure
// yields an empty set for this channel only.
func (p *Pipeline) collectChannel(ctx context.Context, source *domain.ChannelSource) []*domain.VideoDescriptor {
	resolveCtx, cancel := context.WithTimeout(ctx, constants.Timeouts.Resolution)
	channelID, err := p.deps.YouTube.ResolveChannelID(resolveCtx, source.URL)
	cancel()
	if err != nil {
		p.deps.Logger.Error("Channel resolution failed, skipping channel",
			zap.String("channel", source.DisplayName()),
			zap.Error(err))
		return nil
	}

	listCtx, cancel := context.WithTimeout(ctx, constants.Timeouts.YouTubeAPI)
	videos, err := p.deps.YouTube.ListChannelVideos(listCtx, channelID, p.maxVideosPerChannel)
	cancel()
	if err != nil {
		p.deps.Logger.Error("Channel listing failed, skipping channel",
			zap.String("channel", source.DisplayName()),
			zap.String("channel_id", channelID),
			zap.Error(err))
		return nil
	}

	// The catalog name wins over whatever the provider reports.
	if source.ChannelName != "" {
		for _, video := range videos {
			video.ChannelName = source.ChannelName
		}
	}

	return videos
}

func (p *Pipeline) processVideo(ctx context.Context, video *domain.VideoDescriptor) videoOutcome {
	logger := p.deps.Logger.With(zap.String("video_id", video.VideoID))

	if ctx.Err() != nil {
		return videoOutcome{status: domain.StatusDiscovered}
	}

	if p.deps.Store.Exists(video.VideoID) {
		logger.Debug("Video already archived")
		return videoOutcome{alreadyArchived: true}
	}

	downloadCtx, cancel := context.WithTimeout(ctx, constants.Timeouts.Download)
	audioPath, err := p.deps.Downloader.DownloadAudio(downloadCtx, video.VideoID)
	cancel()
	if err != nil {
		logger.Error("Audio acquisition failed", zap.Error(err))
		return videoOutcome{status: domain.StatusFailed, level: domain.CommentaryError}
	}
	defer p.deps.Downloader.Cleanup(audioPath)

	result, err := p.deps.Recognizer.Recognize(ctx, video.VideoID, audioPath)
	if err != nil {
		logger.Error("Speech recognition failed", zap.Error(err))
		return videoOutcome{status: domain.StatusFailed, level: domain.CommentaryError}
	}

	decision := p.deps.Evaluator.Evaluate(ctx, video, result.FullText)

	if decision.ShouldSkip() {
		logger.Info("Video skipped as commentary",
			zap.Float64("confidence", decision.Confidence))
		return videoOutcome{status: domain.StatusSkipped, level: decision.CommentaryLevel}
	}

	segments := p.deps.Aligner.Align(result.Segments, result.Turns)

	detailsCtx, cancel := context.WithTimeout(ctx, constants.Timeouts.YouTubeAPI)
	details, err := p.deps.YouTube.GetVideoDetails(detailsCtx, video.VideoID)
	cancel()
	if err != nil {
		// Statistics are decoration; the archive entry stands without them.
		logger.Warn("Video details unavailable", zap.Error(err))
		details = nil
	}

	now := time.Now().UTC()
	metadata := &domain.MetadataRecord{
		VideoID:              video.VideoID,
		Title:                video.Title,
		Description:          video.Description,
		PublishedAt:          video.PublishedAt,
		ChannelName:          video.ChannelName,
		ChannelURL:           video.ChannelURL,
		Details:              details,
		CommentaryEvaluation: decision,
		ProcessedAt:          now,
	}
	transcript := &domain.TranscriptRecord{
		VideoID:     video.VideoID,
		Segments:    segments,
		ProcessedAt: now,
	}

	if err := p.deps.Store.SaveVideo(metadata, transcript); err != nil {
		logger.Error("Persistence failed", zap.Error(err))
		return videoOutcome{status: domain.StatusFailed, level: decision.CommentaryLevel}
	}

	var speechSeconds float64
	for _, segment := range segments {
		speechSeconds += segment.Duration()
	}
	logger.Info("Video persisted",
		zap.String("level", decision.CommentaryLevel.String()),
		zap.Int("segments", len(segments)),
		zap.Float64("speech_seconds", speechSeconds))

	return videoOutcome{status: domain.StatusPersisted, level: decision.CommentaryLevel}
}
