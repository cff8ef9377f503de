package commentary

import (
	"context"
	"fmt"

	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/prompt"
	"github.com/kapu/speech-archive-go/internal/service/ai"
	"github.com/kapu/speech-archive-go/internal/service/cache"
	"github.com/kapu/speech-archive-go/internal/util"
	"go.uber.org/zap"
)

// JSONGenerator is the slice of the model manager the evaluator needs.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, promptText string, preset ai.ModelPreset, dest any, opts *ai.GenerateOptions) (*ai.GenerateMetadata, error)
}

// Evaluator classifies how much commentary a transcript carries by
// sampling it and putting each sample to the model independently.
type Evaluator struct {
	generator JSONGenerator
	cache     *cache.CacheService
	logger    *zap.Logger
}

func NewEvaluator(generator JSONGenerator, cacheService *cache.CacheService, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		generator: generator,
		cache:     cacheService,
		logger:    logger,
	}
}

// Evaluate returns a decision for the video. Model failures degrade the
// verdict to undetermined with a review flag rather than erroring.
func (e *Evaluator) Evaluate(ctx context.Context, video *domain.VideoDescriptor, transcript string) *domain.CommentaryDecision {
	cacheKey := fmt.Sprintf("commentary:eval:%s", video.VideoID)
	if e.cache != nil {
		if cached, found := e.cache.GetDecision(ctx, cacheKey); found {
			e.logger.Debug("Commentary evaluation cache hit",
				zap.String("video_id", video.VideoID),
				zap.String("level", cached.CommentaryLevel.String()))
			return cached
		}
	}

	samples := ExtractSamples(transcript)

	evaluations := make([]domain.CommentaryEvaluation, 0, len(samples))
	for _, sample := range samples {
		evaluation, err := e.evaluateSample(ctx, video, sample)
		if err != nil {
			e.logger.Warn("Sample evaluation failed",
				zap.String("video_id", video.VideoID),
				zap.String("position", sample.Position.String()),
				zap.Error(err))
			continue
		}
		evaluations = append(evaluations, *evaluation)
	}

	decision := Aggregate(video.VideoID, evaluations)

	e.logger.Info("Commentary evaluated",
		zap.String("video_id", video.VideoID),
		zap.String("level", decision.CommentaryLevel.String()),
		zap.Float64("confidence", decision.Confidence),
		zap.Bool("needs_review", decision.NeedsReview),
		zap.Int("samples", len(samples)),
		zap.Int("parsed", len(evaluations)))

	if e.cache != nil {
		e.cache.SetDecision(ctx, cacheKey, decision, constants.CacheTTL.Evaluation)
	}

	return decision
}

func (e *Evaluator) evaluateSample(ctx context.Context, video *domain.VideoDescriptor, sample domain.CommentarySample) (*domain.CommentaryEvaluation, error) {
	promptText := prompt.CommentaryEvaluationPrompt(prompt.CommentaryPromptData{
		ChannelName:    video.ChannelName,
		VideoTitle:     video.Title,
		SamplePosition: positionPhrase(sample.Position),
		SampleText:     sample.Text,
	})

	ctx, cancel := context.WithTimeout(ctx, constants.Timeouts.Model)
	defer cancel()

	var evaluation domain.CommentaryEvaluation
	if _, err := e.generator.GenerateJSON(ctx, promptText, ai.PresetPrecise, &evaluation, nil); err != nil {
		return nil, err
	}

	if !evaluation.FinalClassification.IsClassification() {
		return nil, fmt.Errorf("invalid classification %q", evaluation.FinalClassification)
	}

	return &evaluation, nil
}

// ExtractSamples cuts the transcript into the excerpts to classify.
// Short transcripts go whole; long ones are probed at the beginning,
// middle, and end.
func ExtractSamples(transcript string) []domain.CommentarySample {
	runes := []rune(transcript)
	n := len(runes)

	if n <= constants.Sampling.TranscriptThreshold {
		return []domain.CommentarySample{
			{Position: domain.SampleFull, Text: transcript},
		}
	}

	size := constants.Sampling.SampleLength

	middleStart := util.Max(0, n/2-size/2)
	middleEnd := util.Min(n, middleStart+size)

	return []domain.CommentarySample{
		{Position: domain.SampleBegin, Text: string(runes[:size])},
		{Position: domain.SampleMiddle, Text: string(runes[middleStart:middleEnd])},
		{Position: domain.SampleEnd, Text: string(runes[n-size:])},
	}
}

// Aggregate averages the per-sample confidences and picks the winning
// level. Ties go to the less-commentary level.
func Aggregate(videoID string, evaluations []domain.CommentaryEvaluation) *domain.CommentaryDecision {
	if len(evaluations) == 0 {
		return &domain.CommentaryDecision{
			VideoID:         videoID,
			CommentaryLevel: domain.CommentaryUndetermined,
			Confidence:      0,
			NeedsReview:     true,
		}
	}

	var noSum, minimalSum, substantialSum float64
	for _, ev := range evaluations {
		noSum += ev.NoCommentaryConfidence
		minimalSum += ev.MinimalCommentaryConfidence
		substantialSum += ev.SubstantialCommentaryConfidence
	}

	count := float64(len(evaluations))
	averages := []struct {
		level domain.CommentaryLevel
		value float64
	}{
		{domain.CommentaryNone, noSum / count},
		{domain.CommentaryMinimal, minimalSum / count},
		{domain.CommentarySubstantial, substantialSum / count},
	}

	winner := averages[0]
	for _, candidate := range averages[1:] {
		if candidate.value > winner.value {
			winner = candidate
		}
	}

	return &domain.CommentaryDecision{
		VideoID:         videoID,
		CommentaryLevel: winner.level,
		Confidence:      winner.value,
		NeedsReview:     winner.value < constants.Review.ConfidenceThreshold,
		Evaluations:     evaluations,
	}
}

func positionPhrase(position domain.SamplePosition) string {
	switch position {
	case domain.SampleBegin:
		return "the beginning"
	case domain.SampleMiddle:
		return "the middle"
	case domain.SampleEnd:
		return "the end"
	default:
		return "the whole"
	}
}
