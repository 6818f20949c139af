package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// XPPerQuest is gained on completion and lost on un-completion.
	XPPerQuest = 15
	// XPPerLevel is the amount of XP between two levels.
	XPPerLevel = 100
)

var ErrUnknownQuest = errors.New("unknown quest")

type QuestName string

// Catalog is the ordered list of daily quests. It is fixed for the process lifetime.
type Catalog []QuestName

var DefaultCatalog = Catalog{
	"Check-in",
	"Espólios",
	"Expedição",
	"Infernal",
	"Deserto Desconhecido",
	"Pedido de Caça",
	"Intel Report",
}

// NewCatalog validates names and builds a catalog. Names must be non-empty and unique.
func NewCatalog(names []string) (Catalog, error) {
	if len(names) == 0 {
		return nil, errors.New("catalog is empty")
	}

	seen := make(map[QuestName]bool, len(names))
	c := make(Catalog, 0, len(names))
	for i, n := range names {
		q := QuestName(strings.TrimSpace(n))
		if q == "" {
			return nil, fmt.Errorf("quest %d has an empty name", i+1)
		}
		if seen[q] {
			return nil, fmt.Errorf("duplicate quest %q", q)
		}
		seen[q] = true
		c = append(c, q)
	}
	return c, nil
}

func (c Catalog) Contains(q QuestName) bool {
	for _, n := range c {
		if n == q {
			return true
		}
	}
	return false
}

// Resolve maps user input to a catalog quest. Input is either the quest name
// (case-insensitive) or its 1-based position in the catalog.
func (c Catalog) Resolve(input string) (QuestName, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	if i, err := strconv.Atoi(input); err == nil {
		if i >= 1 && i <= len(c) {
			return c[i-1], true
		}
		return "", false
	}

	for _, n := range c {
		if strings.EqualFold(string(n), input) {
			return n, true
		}
	}
	return "", false
}

const dateLayout = "2006-01-02"

// legacyDateLayout is the layout of JavaScript's Date.toDateString.
const legacyDateLayout = "Mon Jan 02 2006"

// Date is a calendar day formatted as YYYY-MM-DD. The zero value never equals a real day.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate accepts YYYY-MM-DD and the legacy toDateString layout.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, legacyDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

func (d Date) AddDays(n int) Date {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) String() string {
	return string(d)
}

// QuestState is the persisted progress record.
type QuestState struct {
	Completed      []QuestName `json:"completed"`
	Streak         int         `json:"streak"`
	TotalCompleted int         `json:"totalCompleted"`
	LastUpdate     Date        `json:"lastUpdate"`
	Level          int         `json:"level"`
	XP             int         `json:"xp"`
}

func DefaultState(today Date) QuestState {
	return QuestState{
		Completed:  []QuestName{},
		LastUpdate: today,
		Level:      1,
	}
}

func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

func (s QuestState) IsCompleted(q QuestName) bool {
	for _, n := range s.Completed {
		if n == q {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with s.
func (s QuestState) Clone() QuestState {
	out := s
	out.Completed = make([]QuestName, len(s.Completed))
	copy(out.Completed, s.Completed)
	return out
}

// Rollover resets the daily completions when today differs from the last
// update. The streak grows by one only if every catalog quest was done on the
// previous recorded day; skipped days are never credited.
func Rollover(prev QuestState, today Date, catalog Catalog) QuestState {
	if prev.LastUpdate == today {
		return prev
	}

	streak := 0
	if len(prev.Completed) == len(catalog) {
		streak = prev.Streak + 1
	}

	return QuestState{
		Completed:      []QuestName{},
		Streak:         streak,
		TotalCompleted: prev.TotalCompleted,
		LastUpdate:     today,
		Level:          LevelForXP(prev.XP),
		XP:             prev.XP,
	}
}

// Toggle flips the completion of quest. It panics if quest is not in catalog.
func Toggle(s QuestState, quest QuestName, catalog Catalog) QuestState {
	if !catalog.Contains(quest) {
		panic(fmt.Sprintf("domain: toggle %q: %v", quest, ErrUnknownQuest))
	}

	next := s.Clone()
	delta := XPPerQuest
	if s.IsCompleted(quest) {
		completed := make([]QuestName, 0, len(s.Completed))
		for _, n := range s.Completed {
			if n != quest {
				completed = append(completed, n)
			}
		}
		next.Completed = completed
		next.TotalCompleted--
		delta = -XPPerQuest
	} else {
		next.Completed = append(next.Completed, quest)
		next.TotalCompleted++
	}

	next.XP = max(0, s.XP+delta)
	next.Level = LevelForXP(next.XP)
	return next
}

// Progress is the state plus the values derived for display.
type Progress struct {
	State                QuestState
	Done                 int
	Total                int
	DailyProgressPercent float64
	XPProgressPercent    int
	AllComplete          bool
}

func ProgressOf(s QuestState, catalog Catalog) Progress {
	p := Progress{
		State: s.Clone(),
		Done:  len(s.Completed),
		Total: len(catalog),
	}
	if p.Total > 0 {
		p.DailyProgressPercent = 100 * float64(p.Done) / float64(p.Total)
	}
	p.XPProgressPercent = s.XP % XPPerLevel
	p.AllComplete = p.Total > 0 && p.Done == p.Total
	return p
}
