package crawler

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

type seedFile struct {
	Sources []struct {
		URL string `json:"url"`
	} `json:"sources"`
}

// LoadSeeds reads {"sources":[{"url":...}]}. An unreadable or malformed file
// yields no seeds and a warning, never an error.
func LoadSeeds(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Cannot read seeds file")
		return nil
	}

	var sf seedFile
	if err := json.Unmarshal(data, &sf); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Malformed seeds file")
		return nil
	}

	seeds := make([]string, 0, len(sf.Sources))
	for _, src := range sf.Sources {
		if u := strings.TrimSpace(src.URL); u != "" {
			seeds = append(seeds, u)
		}
	}
	return seeds
}
