package domain

type CommentaryLevel string

const (
	CommentaryNone         CommentaryLevel = "no_commentary"
	CommentaryMinimal      CommentaryLevel = "minimal_commentary"
	CommentarySubstantial  CommentaryLevel = "substantial_commentary"
	CommentaryUndetermined CommentaryLevel = "undetermined"
	CommentaryError        CommentaryLevel = "error"
)

func (l CommentaryLevel) String() string {
	return string(l)
}

// IsClassification reports whether the level is one the model may
// assign. Undetermined and error are outcomes the pipeline itself
// records, never model classifications.
func (l CommentaryLevel) IsClassification() bool {
	switch l {
	case CommentaryNone, CommentaryMinimal, CommentarySubstantial:
		return true
	default:
		return false
	}
}

type SamplePosition string

const (
	SampleBegin  SamplePosition = "begin"
	SampleMiddle SamplePosition = "middle"
	SampleEnd    SamplePosition = "end"
	SampleFull   SamplePosition = "full"
)

func (p SamplePosition) String() string {
	return string(p)
}

// CommentarySample is one transcript excerpt submitted for classification.
type CommentarySample struct {
	Position SamplePosition `json:"position"`
	Text     string         `json:"text"`
}

// CommentaryEvaluation is the parsed model verdict for a single sample.
type CommentaryEvaluation struct {
	NoCommentaryConfidence          float64         `json:"no_commentary_confidence"`
	MinimalCommentaryConfidence     float64         `json:"minimal_commentary_confidence"`
	SubstantialCommentaryConfidence float64         `json:"substantial_commentary_confidence"`
	Reasoning                       string          `json:"reasoning"`
	FinalClassification             CommentaryLevel `json:"final_classification"`
}

// CommentaryDecision is the aggregated verdict for a whole video.
type CommentaryDecision struct {
	VideoID         string                 `json:"video_id"`
	CommentaryLevel CommentaryLevel        `json:"commentary_level"`
	Confidence      float64                `json:"confidence"`
	NeedsReview     bool                   `json:"needs_review"`
	Evaluations     []CommentaryEvaluation `json:"evaluations,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// ShouldSkip reports whether the video is excluded from the archive.
// Only a confident substantial_commentary verdict skips; a verdict
// flagged for review never does.
func (d *CommentaryDecision) ShouldSkip() bool {
	if d == nil {
		return false
	}
	return d.CommentaryLevel == CommentarySubstantial && !d.NeedsReview
}

func (d *CommentaryDecision) IsError() bool {
	if d == nil {
		return false
	}
	return d.CommentaryLevel == CommentaryError
}
