package align

import (
	"testing"

	"github.com/kapu/speech-archive-go/internal/domain"
	"go.uber.org/zap"
)

func TestAlignCollectsOverlappingTextInOrder(t *testing.T) {
	aligner := NewAligner(zap.NewNop())

	transcriptions := []domain.TranscriptionSegment{
		{Start: 5, End: 12, Text: "a"},
		{Start: 15, End: 18, Text: "b"},
		{Start: 25, End: 30, Text: "c"},
	}
	turns := []domain.DiarizationTurn{
		{Start: 10, End: 20, Speaker: "SPEAKER_0"},
	}

	segments := aligner.Align(transcriptions, turns)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "a b" {
		t.Fatalf("expected concatenated text %q, got %q", "a b", segments[0].Text)
	}
	if segments[0].Speaker != "SPEAKER_0" {
		t.Fatalf("expected turn speaker, got %q", segments[0].Speaker)
	}
	if segments[0].Start != 10 || segments[0].End != 20 {
		t.Fatalf("expected segment to carry turn boundaries, got [%v, %v]", segments[0].Start, segments[0].End)
	}
	if segments[0].ID == "" {
		t.Fatalf("expected generated segment id")
	}
}

func TestAlignTreatsBoundaryTouchAsOverlap(t *testing.T) {
	aligner := NewAligner(zap.NewNop())

	transcriptions := []domain.TranscriptionSegment{
		{Start: 0, End: 10, Text: "ends at start"},
		{Start: 20, End: 25, Text: "starts at end"},
	}
	turns := []domain.DiarizationTurn{
		{Start: 10, End: 20, Speaker: "SPEAKER_1"},
	}

	segments := aligner.Align(transcriptions, turns)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "ends at start starts at end" {
		t.Fatalf("expected both boundary-touching segments included, got %q", segments[0].Text)
	}
}

func TestAlignDropsTurnsWithoutText(t *testing.T) {
	aligner := NewAligner(zap.NewNop())

	transcriptions := []domain.TranscriptionSegment{
		{Start: 0, End: 5, Text: "hello"},
	}
	turns := []domain.DiarizationTurn{
		{Start: 0, End: 5, Speaker: "SPEAKER_0"},
		{Start: 50, End: 60, Speaker: "SPEAKER_1"},
	}

	segments := aligner.Align(transcriptions, turns)
	if len(segments) != 1 {
		t.Fatalf("expected silent turn to be dropped, got %d segments", len(segments))
	}
	if segments[0].Speaker != "SPEAKER_0" {
		t.Fatalf("expected surviving segment from first turn, got %q", segments[0].Speaker)
	}
}

func TestAlignHandlesUnsortedInput(t *testing.T) {
	aligner := NewAligner(zap.NewNop())

	transcriptions := []domain.TranscriptionSegment{
		{Start: 15, End: 18, Text: "second"},
		{Start: 5, End: 12, Text: "first"},
	}
	turns := []domain.DiarizationTurn{
		{Start: 14, End: 20, Speaker: "SPEAKER_1"},
		{Start: 0, End: 13, Speaker: "SPEAKER_0"},
	}

	segments := aligner.Align(transcriptions, turns)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Speaker != "SPEAKER_0" || segments[0].Text != "first" {
		t.Fatalf("expected first turn to collect %q, got %q for %q", "first", segments[0].Text, segments[0].Speaker)
	}
	if segments[1].Speaker != "SPEAKER_1" || segments[1].Text != "second" {
		t.Fatalf("expected second turn to collect %q, got %q for %q", "second", segments[1].Text, segments[1].Speaker)
	}
}

func TestAlignSharesSegmentAcrossOverlappingTurns(t *testing.T) {
	aligner := NewAligner(zap.NewNop())

	// One long transcription spanning both turns contributes to each.
	transcriptions := []domain.TranscriptionSegment{
		{Start: 0, End: 30, Text: "spanning"},
	}
	turns := []domain.DiarizationTurn{
		{Start: 0, End: 10, Speaker: "SPEAKER_0"},
		{Start: 10, End: 30, Speaker: "SPEAKER_1"},
	}

	segments := aligner.Align(transcriptions, turns)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	for _, segment := range segments {
		if segment.Text != "spanning" {
			t.Fatalf("expected spanning text on %s, got %q", segment.Speaker, segment.Text)
		}
	}
	if segments[0].ID == segments[1].ID {
		t.Fatalf("expected distinct segment ids")
	}
}

func TestAlignFallsBackWithoutTurns(t *testing.T) {
	aligner := NewAligner(zap.NewNop())

	transcriptions := []domain.TranscriptionSegment{
		{Start: 0, End: 10, Text: "hello"},
		{Start: 10, End: 95, Text: "world"},
	}

	segments := aligner.Align(transcriptions, nil)
	if len(segments) != 1 {
		t.Fatalf("expected single fallback segment, got %d", len(segments))
	}
	if segments[0].Speaker != "SPEAKER_0" {
		t.Fatalf("expected fallback speaker SPEAKER_0, got %q", segments[0].Speaker)
	}
	if segments[0].Start != 0 || segments[0].End != 95 {
		t.Fatalf("expected fallback to span [0, 95], got [%v, %v]", segments[0].Start, segments[0].End)
	}
	if segments[0].Text != "hello world" {
		t.Fatalf("expected full text, got %q", segments[0].Text)
	}
}

func TestAlignFallbackWithoutTextReturnsEmpty(t *testing.T) {
	aligner := NewAligner(zap.NewNop())

	segments := aligner.Align(nil, nil)
	if len(segments) != 0 {
		t.Fatalf("expected no segments for empty input, got %d", len(segments))
	}

	segments = aligner.Align([]domain.TranscriptionSegment{{Start: 0, End: 5, Text: "   "}}, nil)
	if len(segments) != 0 {
		t.Fatalf("expected no segments for whitespace-only transcript, got %d", len(segments))
	}
}
