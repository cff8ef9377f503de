package relevance

import (
	"strings"

	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/util"
	"go.uber.org/zap"
)

// Filter scores videos against the configured keyword list. Metadata is
// all it looks at, so it runs before anything is downloaded.
type Filter struct {
	keywords []string
	logger   *zap.Logger
}

func NewFilter(keywords []string, logger *zap.Logger) *Filter {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := util.Normalize(kw); n != "" {
			normalized = append(normalized, n)
		}
	}

	return &Filter{
		keywords: normalized,
		logger:   logger,
	}
}

// Score accumulates a weighted hit per keyword: a title match counts
// more than a description match, and one keyword can earn both.
func (f *Filter) Score(video *domain.VideoDescriptor) float64 {
	if video == nil {
		return 0
	}

	title := util.Normalize(video.Title)
	description := util.Normalize(video.Description)

	score := 0.0
	for _, kw := range f.keywords {
		if strings.Contains(title, kw) {
			score += constants.FilterWeights.Title
		}
		if strings.Contains(description, kw) {
			score += constants.FilterWeights.Description
		}
	}

	return score
}

// Apply keeps the videos whose score strictly exceeds the channel's
// selectivity. Equal-to-threshold is a drop, so selectivity 0 still
// discards zero-score videos.
func (f *Filter) Apply(videos []*domain.VideoDescriptor, selectivity float64) []*domain.VideoDescriptor {
	kept := make([]*domain.VideoDescriptor, 0, len(videos))

	for _, video := range videos {
		score := f.Score(video)
		if score > selectivity {
			kept = append(kept, video)
			continue
		}

		f.logger.Debug("Video filtered out",
			zap.String("video_id", video.VideoID),
			zap.String("title", util.TruncateString(video.Title, 60)),
			zap.Float64("score", score),
			zap.Float64("selectivity", selectivity))
	}

	f.logger.Info("Relevance filter applied",
		zap.Int("candidates", len(videos)),
		zap.Int("kept", len(kept)),
		zap.Float64("selectivity", selectivity))

	return kept
}
