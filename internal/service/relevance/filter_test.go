package relevance

import (
	"math"
	"testing"

	"github.com/kapu/speech-archive-go/internal/domain"
	"go.uber.org/zap"
)

func TestScoreWeighsTitleAboveDescription(t *testing.T) {
	filter := NewFilter([]string{"speech"}, zap.NewNop())

	titleOnly := filter.Score(&domain.VideoDescriptor{Title: "Full speech from the rally"})
	if math.Abs(titleOnly-0.6) > 1e-9 {
		t.Fatalf("expected title hit to score 0.6, got %v", titleOnly)
	}

	descriptionOnly := filter.Score(&domain.VideoDescriptor{Description: "Complete speech, unedited"})
	if math.Abs(descriptionOnly-0.4) > 1e-9 {
		t.Fatalf("expected description hit to score 0.4, got %v", descriptionOnly)
	}

	both := filter.Score(&domain.VideoDescriptor{
		Title:       "Full speech from the rally",
		Description: "Complete speech, unedited",
	})
	if math.Abs(both-1.0) > 1e-9 {
		t.Fatalf("expected one keyword to earn both weights, got %v", both)
	}
}

func TestScoreAccumulatesAcrossKeywords(t *testing.T) {
	filter := NewFilter([]string{"speech", "rally"}, zap.NewNop())

	score := filter.Score(&domain.VideoDescriptor{Title: "Rally speech highlights"})
	if math.Abs(score-1.2) > 1e-9 {
		t.Fatalf("expected two title hits to score 1.2, got %v", score)
	}
}

func TestScoreIsCaseInsensitive(t *testing.T) {
	filter := NewFilter([]string{"SPEECH"}, zap.NewNop())

	score := filter.Score(&domain.VideoDescriptor{Title: "full Speech tonight"})
	if math.Abs(score-0.6) > 1e-9 {
		t.Fatalf("expected case-insensitive match, got %v", score)
	}
}

func TestScoreIgnoresUnrelatedVideos(t *testing.T) {
	filter := NewFilter([]string{"speech"}, zap.NewNop())

	score := filter.Score(&domain.VideoDescriptor{
		Title:       "Weekly cooking show",
		Description: "Pasta night",
	})
	if score != 0 {
		t.Fatalf("expected zero score, got %v", score)
	}
}

func TestApplyRequiresScoreStrictlyAboveSelectivity(t *testing.T) {
	filter := NewFilter([]string{"speech"}, zap.NewNop())
	videos := []*domain.VideoDescriptor{
		{VideoID: "title-hit", Title: "Morning speech"},
	}

	// A title hit scores exactly 0.6; equal-to-threshold is a drop.
	kept := filter.Apply(videos, 0.6)
	if len(kept) != 0 {
		t.Fatalf("expected score equal to selectivity to be dropped, got %d kept", len(kept))
	}

	kept = filter.Apply(videos, 0.59)
	if len(kept) != 1 {
		t.Fatalf("expected score above selectivity to be kept, got %d kept", len(kept))
	}
}

func TestApplyDropsZeroScoreEvenAtZeroSelectivity(t *testing.T) {
	filter := NewFilter([]string{"speech"}, zap.NewNop())
	videos := []*domain.VideoDescriptor{
		{VideoID: "unrelated", Title: "Cooking show"},
	}

	kept := filter.Apply(videos, 0)
	if len(kept) != 0 {
		t.Fatalf("expected zero-score video to be dropped at selectivity 0, got %d kept", len(kept))
	}
}

func TestApplyPreservesInputOrder(t *testing.T) {
	filter := NewFilter([]string{"speech"}, zap.NewNop())
	videos := []*domain.VideoDescriptor{
		{VideoID: "a", Title: "speech one"},
		{VideoID: "b", Title: "cooking show"},
		{VideoID: "c", Title: "speech two"},
	}

	kept := filter.Apply(videos, 0.5)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept videos, got %d", len(kept))
	}
	if kept[0].VideoID != "a" || kept[1].VideoID != "c" {
		t.Fatalf("expected kept videos in input order, got %v, %v", kept[0].VideoID, kept[1].VideoID)
	}
}
