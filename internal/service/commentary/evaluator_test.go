package commentary

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/service/ai"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	evaluations []domain.CommentaryEvaluation
	errs        []error
	calls       int
	prompts     []string
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, promptText string, _ ai.ModelPreset, dest any, _ *ai.GenerateOptions) (*ai.GenerateMetadata, error) {
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, promptText)

	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}

	evaluation := f.evaluations[idx]
	*dest.(*domain.CommentaryEvaluation) = evaluation
	return &ai.GenerateMetadata{Provider: "Gemini", Model: "test-model"}, nil
}

func TestExtractSamplesShortTranscriptGoesWhole(t *testing.T) {
	transcript := strings.Repeat("a", 3000)

	samples := ExtractSamples(transcript)
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample at the threshold, got %d", len(samples))
	}
	if samples[0].Position != domain.SampleFull {
		t.Fatalf("expected full-transcript sample, got %v", samples[0].Position)
	}
	if samples[0].Text != transcript {
		t.Fatalf("expected untouched transcript text")
	}
}

func TestExtractSamplesLongTranscriptProbesThreePositions(t *testing.T) {
	transcript := strings.Repeat("a", 1000) + strings.Repeat("b", 1001) + strings.Repeat("c", 1000)

	samples := ExtractSamples(transcript)
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples above the threshold, got %d", len(samples))
	}

	if samples[0].Position != domain.SampleBegin || samples[0].Text != strings.Repeat("a", 1000) {
		t.Fatalf("unexpected begin sample: %v, %d runes", samples[0].Position, len([]rune(samples[0].Text)))
	}
	if samples[1].Position != domain.SampleMiddle || len([]rune(samples[1].Text)) != 1000 {
		t.Fatalf("unexpected middle sample: %v, %d runes", samples[1].Position, len([]rune(samples[1].Text)))
	}
	if !strings.Contains(samples[1].Text, "b") || strings.Contains(samples[1].Text, "a") {
		t.Fatalf("expected middle sample centered in the middle third, got %q...", samples[1].Text[:10])
	}
	if samples[2].Position != domain.SampleEnd || samples[2].Text != strings.Repeat("c", 1000) {
		t.Fatalf("unexpected end sample: %v", samples[2].Position)
	}
}

func TestExtractSamplesCountsRunesNotBytes(t *testing.T) {
	// 3000 runes of a multibyte character stay a single sample even
	// though the byte length is far past the threshold.
	transcript := strings.Repeat("한", 3000)

	samples := ExtractSamples(transcript)
	if len(samples) != 1 {
		t.Fatalf("expected multibyte transcript to be measured in runes, got %d samples", len(samples))
	}
}

func TestAggregateAveragesAcrossSamples(t *testing.T) {
	evaluations := []domain.CommentaryEvaluation{
		{NoCommentaryConfidence: 90, MinimalCommentaryConfidence: 5, SubstantialCommentaryConfidence: 5},
		{NoCommentaryConfidence: 70, MinimalCommentaryConfidence: 20, SubstantialCommentaryConfidence: 10},
	}

	decision := Aggregate("vid", evaluations)
	if decision.CommentaryLevel != domain.CommentaryNone {
		t.Fatalf("expected no_commentary, got %v", decision.CommentaryLevel)
	}
	if decision.Confidence != 80 {
		t.Fatalf("expected averaged confidence 80, got %v", decision.Confidence)
	}
	if decision.NeedsReview {
		t.Fatalf("expected confident decision not to need review")
	}
	if len(decision.Evaluations) != 2 {
		t.Fatalf("expected evaluations to be carried on the decision, got %d", len(decision.Evaluations))
	}
}

func TestAggregateFlagsLowConfidenceForReview(t *testing.T) {
	evaluations := []domain.CommentaryEvaluation{
		{NoCommentaryConfidence: 40, MinimalCommentaryConfidence: 35, SubstantialCommentaryConfidence: 25},
	}

	decision := Aggregate("vid", evaluations)
	if decision.CommentaryLevel != domain.CommentaryNone {
		t.Fatalf("expected no_commentary, got %v", decision.CommentaryLevel)
	}
	if !decision.NeedsReview {
		t.Fatalf("expected winning average below 70 to need review")
	}
}

func TestAggregateBreaksTiesTowardLessCommentary(t *testing.T) {
	evaluations := []domain.CommentaryEvaluation{
		{NoCommentaryConfidence: 45, MinimalCommentaryConfidence: 45, SubstantialCommentaryConfidence: 45},
	}

	decision := Aggregate("vid", evaluations)
	if decision.CommentaryLevel != domain.CommentaryNone {
		t.Fatalf("expected three-way tie to resolve to no_commentary, got %v", decision.CommentaryLevel)
	}

	evaluations = []domain.CommentaryEvaluation{
		{NoCommentaryConfidence: 10, MinimalCommentaryConfidence: 45, SubstantialCommentaryConfidence: 45},
	}

	decision = Aggregate("vid", evaluations)
	if decision.CommentaryLevel != domain.CommentaryMinimal {
		t.Fatalf("expected minimal to win its tie with substantial, got %v", decision.CommentaryLevel)
	}
}

func TestAggregateWithoutEvaluationsIsUndetermined(t *testing.T) {
	decision := Aggregate("vid", nil)
	if decision.CommentaryLevel != domain.CommentaryUndetermined {
		t.Fatalf("expected undetermined, got %v", decision.CommentaryLevel)
	}
	if decision.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", decision.Confidence)
	}
	if !decision.NeedsReview {
		t.Fatalf("expected undetermined decision to need review")
	}
}

func TestEvaluateClassifiesShortTranscript(t *testing.T) {
	generator := &fakeGenerator{
		evaluations: []domain.CommentaryEvaluation{
			{
				NoCommentaryConfidence:          90,
				MinimalCommentaryConfidence:     5,
				SubstantialCommentaryConfidence: 5,
				FinalClassification:             domain.CommentaryNone,
			},
		},
	}
	evaluator := NewEvaluator(generator, nil, zap.NewNop())

	video := &domain.VideoDescriptor{VideoID: "vid", Title: "Rally speech", ChannelName: "News"}
	decision := evaluator.Evaluate(context.Background(), video, "short transcript")

	if generator.calls != 1 {
		t.Fatalf("expected one model call for a short transcript, got %d", generator.calls)
	}
	if decision.CommentaryLevel != domain.CommentaryNone {
		t.Fatalf("expected no_commentary, got %v", decision.CommentaryLevel)
	}
	if decision.ShouldSkip() {
		t.Fatalf("expected non-substantial video not to be skipped")
	}
	if !strings.Contains(generator.prompts[0], "Rally speech") {
		t.Fatalf("expected prompt to carry the video title")
	}
}

func TestEvaluateSurvivesPartialSampleFailures(t *testing.T) {
	generator := &fakeGenerator{
		evaluations: []domain.CommentaryEvaluation{
			{},
			{
				NoCommentaryConfidence:          10,
				MinimalCommentaryConfidence:     10,
				SubstantialCommentaryConfidence: 80,
				FinalClassification:             domain.CommentarySubstantial,
			},
			{
				NoCommentaryConfidence:          10,
				MinimalCommentaryConfidence:     10,
				SubstantialCommentaryConfidence: 80,
				FinalClassification:             domain.CommentarySubstantial,
			},
		},
		errs: []error{fmt.Errorf("model unavailable"), nil, nil},
	}
	evaluator := NewEvaluator(generator, nil, zap.NewNop())

	video := &domain.VideoDescriptor{VideoID: "vid"}
	decision := evaluator.Evaluate(context.Background(), video, strings.Repeat("x", 3001))

	if generator.calls != 3 {
		t.Fatalf("expected all three samples attempted, got %d calls", generator.calls)
	}
	if decision.CommentaryLevel != domain.CommentarySubstantial {
		t.Fatalf("expected substantial from surviving samples, got %v", decision.CommentaryLevel)
	}
	if decision.Confidence != 80 {
		t.Fatalf("expected average over parsed samples only, got %v", decision.Confidence)
	}
	if !decision.ShouldSkip() {
		t.Fatalf("expected confident substantial decision to be skipped")
	}
}

func TestEvaluateAllSamplesFailingIsUndetermined(t *testing.T) {
	generator := &fakeGenerator{
		evaluations: make([]domain.CommentaryEvaluation, 3),
		errs: []error{
			fmt.Errorf("model unavailable"),
			fmt.Errorf("model unavailable"),
			fmt.Errorf("model unavailable"),
		},
	}
	evaluator := NewEvaluator(generator, nil, zap.NewNop())

	video := &domain.VideoDescriptor{VideoID: "vid"}
	decision := evaluator.Evaluate(context.Background(), video, strings.Repeat("x", 3001))

	if decision.CommentaryLevel != domain.CommentaryUndetermined {
		t.Fatalf("expected undetermined when nothing parsed, got %v", decision.CommentaryLevel)
	}
	if !decision.NeedsReview {
		t.Fatalf("expected undetermined decision to need review")
	}
	if decision.ShouldSkip() {
		t.Fatalf("expected undetermined video to stay in the pipeline")
	}
}

func TestEvaluateRejectsInvalidClassification(t *testing.T) {
	generator := &fakeGenerator{
		evaluations: []domain.CommentaryEvaluation{
			{
				NoCommentaryConfidence: 90,
				FinalClassification:    domain.CommentaryLevel("talk_show"),
			},
		},
	}
	evaluator := NewEvaluator(generator, nil, zap.NewNop())

	video := &domain.VideoDescriptor{VideoID: "vid"}
	decision := evaluator.Evaluate(context.Background(), video, "short transcript")

	if decision.CommentaryLevel != domain.CommentaryUndetermined {
		t.Fatalf("expected invalid classification to count as unparsed, got %v", decision.CommentaryLevel)
	}
}
