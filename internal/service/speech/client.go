package speech

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

const (
	languageCode    = "en-US"
	recognizerModel = "latest_long"
	windowSeconds   = 10.0
	minSpeakers     = 1
	maxSpeakers     = 6
)

// Client runs diarized speech recognition on downloaded audio. One
// long-running call yields both of the series the aligner consumes:
// timed transcription text and timed speaker turns.
type Client struct {
	client     *speech.Client
	logger     *zap.Logger
	maxRetries int
}

// Result carries the recognition output for one recording.
type Result struct {
	FullText string
	Segments []domain.TranscriptionSegment
	Turns    []domain.DiarizationTurn
}

func NewClient(ctx context.Context, logger *zap.Logger) (*Client, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	logger.Info("Speech client initialized",
		zap.String("model", recognizerModel),
		zap.String("language", languageCode))

	return &Client{
		client:     client,
		logger:     logger,
		maxRetries: constants.RetryConfig.MaxAttempts,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Recognize transcribes the audio file with speaker diarization.
func (c *Client) Recognize(ctx context.Context, videoID, audioPath string) (*Result, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, errors.NewAcquisitionError("failed to read audio file", videoID, "recognize", err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.Timeouts.Recognition)
	defer cancel()

	config := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_MP3,
		LanguageCode:               languageCode,
		Model:                      recognizerModel,
		EnableAutomaticPunctuation: true,
		EnableWordTimeOffsets:      true,
		DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          minSpeakers,
			MaxSpeakerCount:          maxSpeakers,
		},
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	c.logger.Info("Running speech recognition",
		zap.String("video_id", videoID),
		zap.Int("audio_bytes", len(audio)))

	resp, err := c.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := c.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, errors.NewAcquisitionError("speech recognition failed", videoID, "recognize", err)
	}

	result := parseResponse(resp)

	c.logger.Info("Speech recognition complete",
		zap.String("video_id", videoID),
		zap.Int("transcript_chars", len(result.FullText)),
		zap.Int("segments", len(result.Segments)),
		zap.Int("turns", len(result.Turns)))

	return result, nil
}

type recognizedWord struct {
	word    string
	start   float64
	end     float64
	speaker int
}

func parseResponse(resp *speechpb.LongRunningRecognizeResponse) *Result {
	out := &Result{}
	if resp == nil || len(resp.Results) == 0 {
		return out
	}

	var full strings.Builder
	var words []recognizedWord

	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		if transcript := strings.TrimSpace(alt.Transcript); transcript != "" {
			if full.Len() > 0 {
				full.WriteString(" ")
			}
			full.WriteString(transcript)
		}
	}

	// With diarization on, the final result repeats every word of the
	// recording with its speaker tag.
	if tagged := taggedWords(resp.Results[len(resp.Results)-1]); len(tagged) > 0 {
		words = tagged
	} else {
		for _, r := range resp.Results {
			words = append(words, taggedWords(r)...)
		}
	}

	out.FullText = full.String()
	out.Segments = groupByTime(words, windowSeconds)
	out.Turns = groupBySpeaker(words)

	return out
}

func taggedWords(r *speechpb.SpeechRecognitionResult) []recognizedWord {
	if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
		return nil
	}

	alt := r.Alternatives[0]
	words := make([]recognizedWord, 0, len(alt.Words))
	for _, w := range alt.Words {
		if w == nil {
			continue
		}
		words = append(words, recognizedWord{
			word:    w.Word,
			start:   durToSec(w.StartTime),
			end:     durToSec(w.EndTime),
			speaker: int(w.SpeakerTag),
		})
	}
	return words
}

// groupByTime rolls words into fixed windows, producing the timed
// transcription series.
func groupByTime(words []recognizedWord, windowSec float64) []domain.TranscriptionSegment {
	if len(words) == 0 {
		return nil
	}

	segments := []domain.TranscriptionSegment{}
	curStart := words[0].start
	curEnd := words[0].end
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text == "" {
			return
		}
		segments = append(segments, domain.TranscriptionSegment{
			Start: curStart,
			End:   curEnd,
			Text:  text,
		})
		buf.Reset()
	}

	for _, w := range words {
		if (w.start-curStart) >= windowSec && buf.Len() > 0 {
			flush()
			curStart = w.start
			curEnd = w.end
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(w.word)
		if w.end > curEnd {
			curEnd = w.end
		}
	}
	flush()

	return segments
}

// groupBySpeaker rolls consecutive same-speaker words into turns,
// producing the diarization series. Untagged words mean the service
// returned no diarization, so no turns are fabricated from them.
func groupBySpeaker(words []recognizedWord) []domain.DiarizationTurn {
	tagged := false
	for _, w := range words {
		if w.speaker > 0 {
			tagged = true
			break
		}
	}
	if !tagged {
		return nil
	}

	turns := []domain.DiarizationTurn{}
	curSpeaker := words[0].speaker
	curStart := words[0].start
	curEnd := words[0].end

	flush := func() {
		turns = append(turns, domain.DiarizationTurn{
			Start:   curStart,
			End:     curEnd,
			Speaker: speakerLabel(curSpeaker),
		})
	}

	for _, w := range words[1:] {
		if w.speaker != curSpeaker {
			flush()
			curSpeaker = w.speaker
			curStart = w.start
			curEnd = w.end
			continue
		}
		if w.end > curEnd {
			curEnd = w.end
		}
	}
	flush()

	return turns
}

// speakerLabel maps the API's 1-based speaker tags onto the archive's
// zero-based labels.
func speakerLabel(tag int) string {
	if tag < 1 {
		tag = 1
	}
	return fmt.Sprintf("SPEAKER_%d", tag-1)
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func (c *Client) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := constants.RetryConfig.BaseDelay
	var last error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == c.maxRetries {
			break
		}

		c.logger.Warn("Speech recognition retry",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.String("code", code.String()))

		time.Sleep(backoff)
		backoff *= 2
		if backoff > constants.RetryConfig.MaxDelay {
			backoff = constants.RetryConfig.MaxDelay
		}
	}

	return nil, last
}
