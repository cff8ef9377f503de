package uidata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kapu/speech-archive-go/internal/archive"
	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/util"
	"go.uber.org/zap"
)

// topicTable maps presentation topics to the transcript keywords that
// mark them. A topic appears on a video when any keyword occurs in its
// transcript.
var topicTable = []struct {
	Name     string
	Keywords []string
}{
	{Name: "Economy", Keywords: []string{"economy", "jobs", "unemployment", "tariff", "taxes", "business"}},
	{Name: "Immigration", Keywords: []string{"border", "wall", "immigration", "illegal", "mexico"}},
	{Name: "Foreign Policy", Keywords: []string{"china", "russia", "nato", "iran", "north korea", "trade"}},
	{Name: "Election", Keywords: []string{"election", "vote", "ballot", "fraud", "rigged"}},
	{Name: "Military", Keywords: []string{"military", "troops", "veterans", "defense", "army", "navy"}},
	{Name: "Healthcare", Keywords: []string{"healthcare", "obamacare", "medicare", "doctors", "hospital"}},
	{Name: "Media", Keywords: []string{"fake news", "media", "press", "cnn", "news"}},
	{Name: "Energy", Keywords: []string{"energy", "oil", "gas", "pipeline", "fracking", "coal"}},
}

type Topic struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	RelevanceScore float64  `json:"relevance_score"`
	SegmentIDs     []string `json:"segment_ids"`
}

type Quote struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	ImportanceScore float64 `json:"importance_score"`
}

type Segment struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	FormattedStart string  `json:"formatted_start"`
	FormattedEnd   string  `json:"formatted_end"`
	Speaker        string  `json:"speaker"`
}

type Transcript struct {
	Segments []Segment `json:"segments"`
}

// VideoData is the per-video presentation document written for the
// front end.
type VideoData struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ThumbnailURL  string     `json:"thumbnail_url"`
	YouTubeURL    string     `json:"youtube_url"`
	Channel       string     `json:"channel"`
	PublishedDate string     `json:"published_date"`
	Duration      string     `json:"duration"`
	ViewCount     uint64     `json:"view_count"`
	LikeCount     uint64     `json:"like_count"`
	Topics        []Topic    `json:"topics"`
	KeyQuotes     []Quote    `json:"key_quotes"`
	Transcript    Transcript `json:"transcript"`
}

type IndexEntry struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ThumbnailURL  string `json:"thumbnail_url"`
	Channel       string `json:"channel"`
	PublishedDate string `json:"published_date"`
	Duration      string `json:"duration"`
	TopicCount    int    `json:"topic_count"`
	SegmentCount  int    `json:"segment_count"`
	ViewCount     uint64 `json:"view_count"`
}

type Index struct {
	Videos      []IndexEntry `json:"videos"`
	Total       int          `json:"total"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Builder renders persisted archive records into presentation JSON.
type Builder struct {
	store  *archive.Store
	outDir string
	logger *zap.Logger
}

func NewBuilder(store *archive.Store, outDir string, logger *zap.Logger) (*Builder, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create UI data directory: %w", err)
	}
	return &Builder{
		store:  store,
		outDir: outDir,
		logger: logger,
	}, nil
}

// Build writes one document per archived video plus an index of all of
// them, newest first.
func (b *Builder) Build() (*Index, error) {
	records, err := b.store.ListMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	index := &Index{
		Videos:      make([]IndexEntry, 0, len(records)),
		GeneratedAt: time.Now().UTC(),
	}

	for _, record := range records {
		transcript, err := b.store.GetTranscript(record.VideoID)
		if err != nil {
			b.logger.Warn("Skipping video without readable transcript",
				zap.String("video_id", record.VideoID),
				zap.Error(err))
			continue
		}

		data := b.buildVideo(record, transcript)
		if err := b.writeJSON(record.VideoID+".json", data); err != nil {
			return nil, err
		}

		index.Videos = append(index.Videos, IndexEntry{
			ID:            data.ID,
			Title:         data.Title,
			ThumbnailURL:  data.ThumbnailURL,
			Channel:       data.Channel,
			PublishedDate: data.PublishedDate,
			Duration:      data.Duration,
			TopicCount:    len(data.Topics),
			SegmentCount:  len(data.Transcript.Segments),
			ViewCount:     data.ViewCount,
		})
	}

	index.Total = len(index.Videos)
	if err := b.writeJSON("index.json", index); err != nil {
		return nil, err
	}

	b.logger.Info("UI data generated",
		zap.Int("videos", index.Total),
		zap.String("out_dir", b.outDir))
	return index, nil
}

func (b *Builder) buildVideo(record *domain.MetadataRecord, transcript *domain.TranscriptRecord) *VideoData {
	data := &VideoData{
		ID:            record.VideoID,
		Title:         record.Title,
		Description:   record.Description,
		ThumbnailURL:  record.ThumbnailURL(),
		YouTubeURL:    record.WatchURL(),
		Channel:       record.ChannelName,
		PublishedDate: util.FormatPublishedDate(record.PublishedAt),
		Topics:        extractTopics(transcript.Segments),
		KeyQuotes:     extractQuotes(transcript.Segments),
		Transcript:    Transcript{Segments: make([]Segment, 0, len(transcript.Segments))},
	}

	if details := record.Details; details != nil {
		data.ViewCount = details.ViewCount
		data.LikeCount = details.LikeCount
		data.Duration = util.FormatClockDuration(details.DurationSeconds)
		if details.ChannelTitle != "" {
			data.Channel = details.ChannelTitle
		}
	} else {
		data.Duration = util.FormatClockDuration(0)
	}

	for _, segment := range transcript.Segments {
		data.Transcript.Segments = append(data.Transcript.Segments, Segment{
			ID:             segment.ID,
			Text:           segment.Text,
			StartTime:      segment.Start,
			EndTime:        segment.End,
			FormattedStart: util.FormatClockDuration(int(segment.Start)),
			FormattedEnd:   util.FormatClockDuration(int(segment.End)),
			Speaker:        segment.Speaker,
		})
	}

	return data
}

// extractTopics matches the topic keyword table against the transcript.
// Scores are fixed placeholders until real salience ranking lands.
func extractTopics(segments []domain.AttributedSegment) []Topic {
	fullText := make([]string, 0, len(segments))
	for _, segment := range segments {
		fullText = append(fullText, strings.ToLower(segment.Text))
	}
	joined := strings.Join(fullText, " ")

	topics := make([]Topic, 0)
	for _, candidate := range topicTable {
		if !containsAny(joined, candidate.Keywords) {
			continue
		}

		topic := Topic{
			ID:             uuid.New().String(),
			Name:           candidate.Name,
			RelevanceScore: 0.8,
			SegmentIDs:     make([]string, 0),
		}
		for _, segment := range segments {
			if containsAny(strings.ToLower(segment.Text), candidate.Keywords) {
				topic.SegmentIDs = append(topic.SegmentIDs, segment.ID)
			}
		}
		if len(topic.SegmentIDs) > 0 {
			topics = append(topics, topic)
		}
	}
	return topics
}

// extractQuotes picks quote-sized segments in transcript order. Both
// length bounds are exclusive.
func extractQuotes(segments []domain.AttributedSegment) []Quote {
	quotes := make([]Quote, 0, constants.UIData.MaxQuotesPerVideo)
	for _, segment := range segments {
		length := utf8.RuneCountInString(segment.Text)
		if length <= constants.UIData.MinQuoteLength || length >= constants.UIData.MaxQuoteLength {
			continue
		}
		quotes = append(quotes, Quote{
			ID:              segment.ID,
			Text:            segment.Text,
			StartTime:       segment.Start,
			EndTime:         segment.End,
			ImportanceScore: 0.9,
		})
		if len(quotes) >= constants.UIData.MaxQuotesPerVideo {
			break
		}
	}
	return quotes
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func (b *Builder) writeJSON(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(b.outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
