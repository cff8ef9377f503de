package domain

// TranscriptionSegment is a timed span of recognized speech with no
// speaker identity attached.
type TranscriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// DiarizationTurn is a timed span attributed to one speaker, carrying
// no text of its own.
type DiarizationTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// AttributedSegment is the merge of the two: a speaker turn with the
// transcription text that overlaps it in time.
type AttributedSegment struct {
	ID      string  `json:"id"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

func (s *AttributedSegment) Duration() float64 {
	if s == nil || s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}
