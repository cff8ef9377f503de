package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/kapu/speech-archive-go/internal/archive"
	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"go.uber.org/zap"
)

// VideoHandler serves the persisted archive. All endpoints are
// read-only; the store is never written through this surface.
type VideoHandler struct {
	store  *archive.Store
	logger *zap.Logger
}

func NewVideoHandler(store *archive.Store, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		store:  store,
		logger: logger,
	}
}

type SearchMatch struct {
	VideoID     string  `json:"video_id"`
	Title       string  `json:"title"`
	ChannelName string  `json:"channel_name"`
	SegmentID   string  `json:"segment_id"`
	Speaker     string  `json:"speaker"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Text        string  `json:"text"`
	WatchURL    string  `json:"watch_url"`
}

type SearchResponse struct {
	Query   string        `json:"query"`
	Total   int           `json:"total"`
	Results []SearchMatch `json:"results"`
}

type VideoURLResponse struct {
	VideoID string `json:"video_id"`
	URL     string `json:"url"`
}

type SegmentURLResponse struct {
	VideoID   string  `json:"video_id"`
	SegmentID string  `json:"segment_id"`
	Speaker   string  `json:"speaker"`
	Start     float64 `json:"start"`
	URL       string  `json:"url"`
}

// GET /videos
// All archived metadata records, newest first.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	records, err := h.store.ListMetadata()
	if err != nil {
		h.logger.Error("Failed to list metadata", zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	RespondOK(c, records)
}

// GET /videos/:id
func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID := c.Param("id")

	record, err := h.store.GetMetadata(videoID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("video %s is not archived", videoID))
			return
		}
		h.logger.Error("Failed to load metadata", zap.String("video_id", videoID), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	RespondOK(c, record)
}

// GET /videos/:id/transcript
func (h *VideoHandler) GetTranscript(c *gin.Context) {
	videoID := c.Param("id")

	record, err := h.store.GetTranscript(videoID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("video %s has no transcript", videoID))
			return
		}
		h.logger.Error("Failed to load transcript", zap.String("video_id", videoID), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	RespondOK(c, record)
}

// GET /search?q=
// Case-insensitive substring search over transcript segment texts.
func (h *VideoHandler) SearchVideos(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if utf8.RuneCountInString(query) < constants.APIConfig.MinSearchQueryLength {
		RespondError(c, http.StatusBadRequest, "invalid_request",
			fmt.Errorf("query must be at least %d characters", constants.APIConfig.MinSearchQueryLength))
		return
	}

	records, err := h.store.ListMetadata()
	if err != nil {
		h.logger.Error("Failed to list metadata", zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}

	needle := strings.ToLower(query)
	results := make([]SearchMatch, 0)
	for _, record := range records {
		transcript, err := h.store.GetTranscript(record.VideoID)
		if err != nil {
			// A metadata record without a readable transcript is a
			// damaged entry, not a request failure.
			h.logger.Warn("Skipping video with unreadable transcript",
				zap.String("video_id", record.VideoID), zap.Error(err))
			continue
		}

		for _, segment := range transcript.Segments {
			if !strings.Contains(strings.ToLower(segment.Text), needle) {
				continue
			}
			results = append(results, SearchMatch{
				VideoID:     record.VideoID,
				Title:       record.Title,
				ChannelName: record.ChannelName,
				SegmentID:   segment.ID,
				Speaker:     segment.Speaker,
				Start:       segment.Start,
				End:         segment.End,
				Text:        segment.Text,
				WatchURL:    timestampedWatchURL(record, segment.Start),
			})
		}
	}

	RespondOK(c, SearchResponse{
		Query:   query,
		Total:   len(results),
		Results: results,
	})
}

// GET /videos/:id/url
func (h *VideoHandler) GetVideoURL(c *gin.Context) {
	videoID := c.Param("id")

	record, err := h.store.GetMetadata(videoID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("video %s is not archived", videoID))
			return
		}
		h.logger.Error("Failed to load metadata", zap.String("video_id", videoID), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}

	RespondOK(c, VideoURLResponse{
		VideoID: record.VideoID,
		URL:     record.WatchURL(),
	})
}

// GET /videos/:id/segments/:segmentID/url
// Watch URL positioned at the segment's start, rounded down to whole
// seconds.
func (h *VideoHandler) GetSegmentURL(c *gin.Context) {
	videoID := c.Param("id")
	segmentID := c.Param("segmentID")

	record, err := h.store.GetMetadata(videoID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("video %s is not archived", videoID))
			return
		}
		h.logger.Error("Failed to load metadata", zap.String("video_id", videoID), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}

	transcript, err := h.store.GetTranscript(videoID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("video %s has no transcript", videoID))
			return
		}
		h.logger.Error("Failed to load transcript", zap.String("video_id", videoID), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}

	for _, segment := range transcript.Segments {
		if segment.ID != segmentID {
			continue
		}
		RespondOK(c, SegmentURLResponse{
			VideoID:   record.VideoID,
			SegmentID: segment.ID,
			Speaker:   segment.Speaker,
			Start:     segment.Start,
			URL:       timestampedWatchURL(record, segment.Start),
		})
		return
	}

	RespondError(c, http.StatusNotFound, "not_found",
		fmt.Errorf("segment %s not found in video %s", segmentID, videoID))
}

func timestampedWatchURL(record *domain.MetadataRecord, start float64) string {
	return fmt.Sprintf("%s&t=%ds", record.WatchURL(), int(start))
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
