package syncer

import (
	"encoding/json"
	"fmt"
	"os"
)

// RosterEntry is one line of the bootstrap roster file: a club name and
// its feed URL.
type RosterEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// LoadRoster reads a JSON roster file of {name, url} pairs.
func LoadRoster(path string) ([]RosterEntry, error) {
	if path == "" {
		return nil, fmt.Errorf("roster file path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	var roster []RosterEntry
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster file %s: %w", path, err)
	}
	return roster, nil
}
