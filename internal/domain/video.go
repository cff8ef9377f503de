package domain

import "time"

// VideoDescriptor is the channel-listing view of a video, before any
// download or analysis has happened.
type VideoDescriptor struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	ChannelName string `json:"channel_name"`
	ChannelURL  string `json:"channel_url"`
}

func (v *VideoDescriptor) WatchURL() string {
	if v == nil || v.VideoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

func (v *VideoDescriptor) ThumbnailURL() string {
	if v == nil || v.VideoID == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + v.VideoID + "/maxresdefault.jpg"
}

// VideoDetails carries the statistics fetched for videos that survive
// the commentary gate.
type VideoDetails struct {
	ViewCount       uint64   `json:"view_count"`
	LikeCount       uint64   `json:"like_count"`
	DurationSeconds int      `json:"duration_seconds"`
	Tags            []string `json:"tags,omitempty"`
	ChannelTitle    string   `json:"channel_title,omitempty"`
}

// MetadataRecord is the metadata artifact persisted per archived video.
type MetadataRecord struct {
	VideoID              string              `json:"video_id"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	PublishedAt          string              `json:"published_at"`
	ChannelName          string              `json:"channel_name"`
	ChannelURL           string              `json:"channel_url"`
	Details              *VideoDetails       `json:"details,omitempty"`
	CommentaryEvaluation *CommentaryDecision `json:"commentary_evaluation,omitempty"`
	ProcessedAt          time.Time           `json:"processed_at"`
}

func (m *MetadataRecord) WatchURL() string {
	if m == nil || m.VideoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + m.VideoID
}

func (m *MetadataRecord) ThumbnailURL() string {
	if m == nil || m.VideoID == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + m.VideoID + "/maxresdefault.jpg"
}

// TranscriptRecord is the transcript artifact persisted per archived video.
type TranscriptRecord struct {
	VideoID     string              `json:"video_id"`
	Segments    []AttributedSegment `json:"segments"`
	ProcessedAt time.Time           `json:"processed_at"`
}
