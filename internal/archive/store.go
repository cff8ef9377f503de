package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kapu/speech-archive-go/internal/domain"
	"go.uber.org/zap"
)

const (
	metadataDir   = "metadata"
	transcriptDir = "transcripts"
)

// Store persists one metadata file and one transcript file per archived
// video, and reads them back for the query side.
type Store struct {
	dataDir string
	logger  *zap.Logger
}

func NewStore(dataDir string, logger *zap.Logger) (*Store, error) {
	for _, sub := range []string{metadataDir, transcriptDir} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	logger.Info("Archive store initialized",
		zap.String("data_dir", dataDir))

	return &Store{
		dataDir: dataDir,
		logger:  logger,
	}, nil
}

// SaveVideo writes both artifacts for a video. Each file lands via a
// temp-file rename, so a crash mid-write never leaves a torn JSON file
// in the archive.
func (s *Store) SaveVideo(metadata *domain.MetadataRecord, transcript *domain.TranscriptRecord) error {
	if metadata == nil || transcript == nil {
		return fmt.Errorf("metadata and transcript are both required")
	}
	if metadata.VideoID == "" {
		return fmt.Errorf("metadata has no video ID")
	}
	if metadata.VideoID != transcript.VideoID {
		return fmt.Errorf("metadata video %s does not match transcript video %s", metadata.VideoID, transcript.VideoID)
	}

	if err := s.writeJSON(s.metadataPath(metadata.VideoID), metadata); err != nil {
		return fmt.Errorf("failed to persist metadata for %s: %w", metadata.VideoID, err)
	}
	if err := s.writeJSON(s.transcriptPath(transcript.VideoID), transcript); err != nil {
		return fmt.Errorf("failed to persist transcript for %s: %w", transcript.VideoID, err)
	}

	s.logger.Info("Video archived",
		zap.String("video_id", metadata.VideoID),
		zap.Int("segments", len(transcript.Segments)))

	return nil
}

// Exists reports whether a video is fully archived. A video with only
// one of its two files present counts as absent and will be rewritten.
func (s *Store) Exists(videoID string) bool {
	if videoID == "" {
		return false
	}
	if _, err := os.Stat(s.metadataPath(videoID)); err != nil {
		return false
	}
	if _, err := os.Stat(s.transcriptPath(videoID)); err != nil {
		return false
	}
	return true
}

func (s *Store) GetMetadata(videoID string) (*domain.MetadataRecord, error) {
	var record domain.MetadataRecord
	if err := readJSON(s.metadataPath(videoID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) GetTranscript(videoID string) (*domain.TranscriptRecord, error) {
	var record domain.TranscriptRecord
	if err := readJSON(s.transcriptPath(videoID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListMetadata loads every archived video's metadata, newest first.
// Unreadable files are skipped so one damaged record cannot hide the
// rest of the archive.
func (s *Store) ListMetadata() ([]*domain.MetadataRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, metadataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	records := make([]*domain.MetadataRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		var record domain.MetadataRecord
		if err := readJSON(filepath.Join(s.dataDir, metadataDir, entry.Name()), &record); err != nil {
			s.logger.Warn("Skipping unreadable metadata file",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].PublishedAt > records[j].PublishedAt
	})

	return records, nil
}

func (s *Store) metadataPath(videoID string) string {
	return filepath.Join(s.dataDir, metadataDir, videoID+".json")
}

func (s *Store) transcriptPath(videoID string) string {
	return filepath.Join(s.dataDir, transcriptDir, videoID+".json")
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}

func readJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
