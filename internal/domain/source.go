package domain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kapu/speech-archive-go/internal/util"
)

// ChannelSource is one entry of the source catalog: a channel to scan
// and how selective the keyword filter should be for it.
type ChannelSource struct {
	URL         string  `json:"url"`
	ChannelName string  `json:"channel_name"`
	Selectivity float64 `json:"selectivity"`
}

func (s *ChannelSource) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.ChannelName != "" {
		return s.ChannelName
	}
	return s.URL
}

// LoadSources reads the channel catalog from disk. The catalog is part
// of the run configuration, so any problem here is a startup failure.
func LoadSources(path string) ([]ChannelSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var sources []ChannelSource
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	for i := range sources {
		if sources[i].URL == "" {
			return nil, fmt.Errorf("sources file %s: entry %d has no url", path, i)
		}
		// Out-of-range selectivity is clamped rather than rejected so a
		// catalog tweak cannot take the whole run down.
		sources[i].Selectivity = util.Clamp01(sources[i].Selectivity)
	}

	return sources, nil
}
