package trivia

import (
	"encoding/json"
	"fmt"
	"os"
)

type questionFile struct {
	Questions []*Question `json:"questions"`
}

// LoadJSON reads a question pack from disk and validates every entry.
// Questions without explicit ids get sequential ones.
func LoadJSON(path string) ([]*Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question file: %w", err)
	}
	var qf questionFile
	if err := json.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing question file: %w", err)
	}
	if len(qf.Questions) == 0 {
		return nil, fmt.Errorf("question file %s is empty", path)
	}

	seen := make(map[int64]bool)
	next := int64(1)
	for _, q := range qf.Questions {
		if q.ID == 0 {
			for seen[next] {
				next++
			}
			q.ID = next
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if q.Difficulty == 0 {
			q.Difficulty = DefaultDifficulty
		}
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	return qf.Questions, nil
}
