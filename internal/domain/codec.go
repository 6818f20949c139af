package domain

import (
	"encoding/json"
	"fmt"
)

// persistedState mirrors QuestState with optional fields so that records
// written by older versions decode with sane defaults.
type persistedState struct {
	Completed      []string `json:"completed"`
	Streak         *int     `json:"streak"`
	TotalCompleted *int     `json:"totalCompleted"`
	LastUpdate     string   `json:"lastUpdate"`
	Level          *int     `json:"level"`
	XP             *int     `json:"xp"`
}

func EncodeState(s QuestState) ([]byte, error) {
	if s.Completed == nil {
		s.Completed = []QuestName{}
	}
	return json.Marshal(s)
}

// DecodeState parses a stored record and normalizes it against catalog:
// unknown or repeated quests are dropped, counters are clamped at zero and the
// level is recomputed from XP. An unreadable date decodes as the zero Date, so
// the next rollover treats the record as stale.
func DecodeState(data []byte, catalog Catalog) (QuestState, error) {
	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return QuestState{}, fmt.Errorf("decode quest state: %w", err)
	}

	s := QuestState{Completed: make([]QuestName, 0, len(p.Completed))}
	seen := make(map[QuestName]bool, len(p.Completed))
	for _, n := range p.Completed {
		q := QuestName(n)
		if !catalog.Contains(q) || seen[q] {
			continue
		}
		seen[q] = true
		s.Completed = append(s.Completed, q)
	}

	if p.Streak != nil {
		s.Streak = max(0, *p.Streak)
	}
	if p.TotalCompleted != nil {
		s.TotalCompleted = max(0, *p.TotalCompleted)
	}
	if p.XP != nil {
		s.XP = max(0, *p.XP)
	}
	s.Level = LevelForXP(s.XP)

	if d, err := ParseDate(p.LastUpdate); err == nil {
		s.LastUpdate = d
	}
	return s, nil
}
