package align

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"go.uber.org/zap"
)

// Aligner merges the two time series speech recognition produces: timed
// transcription text and timed speaker turns. Each turn collects the
// text of every transcription segment overlapping it in time.
type Aligner struct {
	logger *zap.Logger
}

func NewAligner(logger *zap.Logger) *Aligner {
	return &Aligner{logger: logger}
}

// Align attributes transcription text to speaker turns. Overlap is
// inclusive on both edges, so a segment that merely touches a turn
// boundary still contributes its text. Turns that collect no text are
// dropped.
func (a *Aligner) Align(transcriptions []domain.TranscriptionSegment, turns []domain.DiarizationTurn) []domain.AttributedSegment {
	if len(turns) == 0 {
		return a.fallback(transcriptions)
	}

	sortedSegments := make([]domain.TranscriptionSegment, len(transcriptions))
	copy(sortedSegments, transcriptions)
	sort.SliceStable(sortedSegments, func(i, j int) bool {
		return sortedSegments[i].Start < sortedSegments[j].Start
	})

	sortedTurns := make([]domain.DiarizationTurn, len(turns))
	copy(sortedTurns, turns)
	sort.SliceStable(sortedTurns, func(i, j int) bool {
		return sortedTurns[i].Start < sortedTurns[j].Start
	})

	result := make([]domain.AttributedSegment, 0, len(sortedTurns))
	lo := 0

	for _, turn := range sortedTurns {
		// Segments ending before this turn starts cannot overlap it,
		// nor any later turn, because turn starts only grow from here.
		for lo < len(sortedSegments) && sortedSegments[lo].End < turn.Start {
			lo++
		}

		var texts []string
		for i := lo; i < len(sortedSegments) && sortedSegments[i].Start <= turn.End; i++ {
			if sortedSegments[i].End >= turn.Start {
				texts = append(texts, sortedSegments[i].Text)
			}
		}

		text := strings.TrimSpace(strings.Join(texts, " "))
		if text == "" {
			continue
		}

		result = append(result, domain.AttributedSegment{
			ID:      uuid.New().String(),
			Start:   turn.Start,
			End:     turn.End,
			Speaker: turn.Speaker,
			Text:    text,
		})
	}

	a.logger.Debug("Alignment complete",
		zap.Int("transcriptions", len(transcriptions)),
		zap.Int("turns", len(turns)),
		zap.Int("segments", len(result)))

	return result
}

// fallback covers recordings where diarization produced nothing: the
// whole transcript becomes one segment under a synthetic speaker.
func (a *Aligner) fallback(transcriptions []domain.TranscriptionSegment) []domain.AttributedSegment {
	var texts []string
	end := 0.0

	for _, segment := range transcriptions {
		texts = append(texts, segment.Text)
		if segment.End > end {
			end = segment.End
		}
	}

	text := strings.TrimSpace(strings.Join(texts, " "))
	if text == "" {
		return []domain.AttributedSegment{}
	}

	a.logger.Warn("No diarization turns, falling back to single segment",
		zap.Int("transcriptions", len(transcriptions)),
		zap.Float64("end", end))

	return []domain.AttributedSegment{
		{
			ID:      uuid.New().String(),
			Start:   0,
			End:     end,
			Speaker: constants.Alignment.FallbackSpeaker,
			Text:    text,
		},
	}
}
