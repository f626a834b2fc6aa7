package jsonfile

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/kubex/rclink/roster"
)

type rosterEntry struct {
	Name            string `json:"name"`
	LineUserID      string `json:"line_user_id,omitempty"`
	LineDisplayName string `json:"line_display_name,omitempty"`
	IsTarget        bool   `json:"is_target,omitempty"`
}

// ReadRoster loads <dir>/members.<set>.json and computes each name_key with
// normalizer, so keys match what the linker will compute at link time.
func (p Provider) ReadRoster(set string, normalizer roster.Normalizer) ([]roster.Member, error) {
	jsonPath := p.filePath("members", set)
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, errors.New("unable to load roster.json @ " + jsonPath)
	}

	var entries []rosterEntry
	if err := json.Unmarshal(bytes, &entries); err != nil {
		return nil, errors.New("unable to decode roster json: " + err.Error())
	}

	members := make([]roster.Member, 0, len(entries))
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		key := normalizer.Normalize(name)
		if key == "" {
			return nil, errors.New("invalid roster data: entry " + strconv.Itoa(i) + " has no name")
		}
		members = append(members, roster.Member{
			Name:            name,
			NameKey:         key,
			LineUserID:      entry.LineUserID,
			LineDisplayName: entry.LineDisplayName,
			IsTarget:        entry.IsTarget,
		})
	}
	return members, nil
}
