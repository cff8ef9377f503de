package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kapu/speech-archive-go/internal/archive"
	"github.com/kapu/speech-archive-go/internal/domain"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *archive.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := archive.NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("expected store to initialize, got %v", err)
	}

	router := NewRouter(RouterConfig{
		VideoHandler: NewVideoHandler(store, zap.NewNop()),
	})
	return router, store
}

func doGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		t.Fatalf("expected request to build, got %v", err)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dest); err != nil {
		t.Fatalf("expected JSON body, got %v: %s", err, recorder.Body.String())
	}
}

func saveArchivedVideo(t *testing.T, store *archive.Store, videoID string, segments ...domain.AttributedSegment) {
	t.Helper()

	metadata := &domain.MetadataRecord{
		VideoID:     videoID,
		Title:       "Speech " + videoID,
		ChannelName: "News Channel",
		PublishedAt: "2025-05-02T01:55:19Z",
	}
	transcript := &domain.TranscriptRecord{VideoID: videoID, Segments: segments}
	if err := store.SaveVideo(metadata, transcript); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doGet(t, router, "/healthcheck")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if recorder.Body.String() != "ok" {
		t.Fatalf("expected ok body, got %q", recorder.Body.String())
	}
}

func TestListVideosEmptyArchive(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doGet(t, router, "/videos")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var records []domain.MetadataRecord
	decodeBody(t, recorder, &records)
	if len(records) != 0 {
		t.Fatalf("expected empty archive listing, got %+v", records)
	}
}

func TestGetVideoReturnsRecord(t *testing.T) {
	router, store := newTestRouter(t)
	saveArchivedVideo(t, store, "vid-1",
		domain.AttributedSegment{ID: "seg-1", Start: 0, End: 5, Speaker: "SPEAKER_0", Text: "hello"})

	recorder := doGet(t, router, "/videos/vid-1")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var record domain.MetadataRecord
	decodeBody(t, recorder, &record)
	if record.VideoID != "vid-1" || record.Title != "Speech vid-1" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestGetVideoUnknownIDIsNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doGet(t, router, "/videos/vid-x")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}

	var envelope ErrorEnvelope
	decodeBody(t, recorder, &envelope)
	if envelope.Error.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", envelope.Error.Code)
	}
	if !strings.Contains(envelope.Error.Message, "not archived") {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}

func TestGetTranscriptUnknownIDIsNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doGet(t, router, "/videos/vid-x/transcript")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}

	var envelope ErrorEnvelope
	decodeBody(t, recorder, &envelope)
	if envelope.Error.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", envelope.Error.Code)
	}
}

func TestGetTranscriptReturnsSegments(t *testing.T) {
	router, store := newTestRouter(t)
	saveArchivedVideo(t, store, "vid-1",
		domain.AttributedSegment{ID: "seg-1", Start: 0, End: 12.5, Speaker: "SPEAKER_0", Text: "hello world"})

	recorder := doGet(t, router, "/videos/vid-1/transcript")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var transcript domain.TranscriptRecord
	decodeBody(t, recorder, &transcript)
	if len(transcript.Segments) != 1 || transcript.Segments[0].Text != "hello world" {
		t.Fatalf("unexpected transcript: %+v", transcript)
	}
}

func TestSearchRejectsShortQueries(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doGet(t, router, "/search?q=ab")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}

	var envelope ErrorEnvelope
	decodeBody(t, recorder, &envelope)
	if envelope.Error.Code != "invalid_request" {
		t.Fatalf("expected invalid_request code, got %q", envelope.Error.Code)
	}

	// Surrounding whitespace does not count toward the minimum.
	recorder = doGet(t, router, "/search?q=%20%20ab%20%20")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for padded short query, got %d", recorder.Code)
	}
}

func TestSearchFindsSegmentsCaseInsensitively(t *testing.T) {
	router, store := newTestRouter(t)
	saveArchivedVideo(t, store, "vid-1",
		domain.AttributedSegment{ID: "seg-1", Start: 65.9, End: 80, Speaker: "SPEAKER_0", Text: "The economy is strong"},
		domain.AttributedSegment{ID: "seg-2", Start: 80, End: 95, Speaker: "SPEAKER_1", Text: "completely unrelated"})
	saveArchivedVideo(t, store, "vid-2",
		domain.AttributedSegment{ID: "seg-3", Start: 0, End: 10, Speaker: "SPEAKER_0", Text: "nothing here either"})

	recorder := doGet(t, router, "/search?q=Economy")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var response SearchResponse
	decodeBody(t, recorder, &response)
	if response.Query != "Economy" || response.Total != 1 || len(response.Results) != 1 {
		t.Fatalf("unexpected search response: %+v", response)
	}

	match := response.Results[0]
	if match.VideoID != "vid-1" || match.SegmentID != "seg-1" {
		t.Fatalf("unexpected match: %+v", match)
	}
	if match.WatchURL != "https://www.youtube.com/watch?v=vid-1&t=65s" {
		t.Fatalf("expected timestamp rounded down to whole seconds, got %q", match.WatchURL)
	}
}

func TestSearchWithoutMatchesReturnsEmptyResults(t *testing.T) {
	router, store := newTestRouter(t)
	saveArchivedVideo(t, store, "vid-1",
		domain.AttributedSegment{ID: "seg-1", Start: 0, End: 5, Speaker: "SPEAKER_0", Text: "hello"})

	recorder := doGet(t, router, "/search?q=missing")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var response SearchResponse
	decodeBody(t, recorder, &response)
	if response.Total != 0 || len(response.Results) != 0 {
		t.Fatalf("expected empty results, got %+v", response)
	}
}

func TestGetVideoURL(t *testing.T) {
	router, store := newTestRouter(t)
	saveArchivedVideo(t, store, "vid-1",
		domain.AttributedSegment{ID: "seg-1", Start: 0, End: 5, Speaker: "SPEAKER_0", Text: "hello"})

	recorder := doGet(t, router, "/videos/vid-1/url")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var response VideoURLResponse
	decodeBody(t, recorder, &response)
	if response.URL != "https://www.youtube.com/watch?v=vid-1" {
		t.Fatalf("unexpected watch URL: %q", response.URL)
	}
}

func TestGetSegmentURLReturnsTimestampedLink(t *testing.T) {
	router, store := newTestRouter(t)
	saveArchivedVideo(t, store, "vid-1",
		domain.AttributedSegment{ID: "seg-1", Start: 125.4, End: 140, Speaker: "SPEAKER_0", Text: "hello"})

	recorder := doGet(t, router, "/videos/vid-1/segments/seg-1/url")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response SegmentURLResponse
	decodeBody(t, recorder, &response)
	if response.SegmentID != "seg-1" || response.Speaker != "SPEAKER_0" {
		t.Fatalf("unexpected segment response: %+v", response)
	}
	if response.URL != "https://www.youtube.com/watch?v=vid-1&t=125s" {
		t.Fatalf("unexpected segment URL: %q", response.URL)
	}
}

func TestGetSegmentURLUnknownSegmentIsNotFound(t *testing.T) {
	router, store := newTestRouter(t)
	saveArchivedVideo(t, store, "vid-1",
		domain.AttributedSegment{ID: "seg-1", Start: 0, End: 5, Speaker: "SPEAKER_0", Text: "hello"})

	recorder := doGet(t, router, "/videos/vid-1/segments/seg-404/url")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}

	var envelope ErrorEnvelope
	decodeBody(t, recorder, &envelope)
	if !strings.Contains(envelope.Error.Message, "not found in video") {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}
