package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type GetStatusUsecase struct {
	tracker QuestTracker
}

func NewGetStatusUsecase(tracker QuestTracker) *GetStatusUsecase {
	return &GetStatusUsecase{tracker: tracker}
}

func (uc *GetStatusUsecase) Execute(ctx context.Context) (string, error) {
	// The ticker may not have fired yet after midnight.
	if _, err := uc.tracker.CheckRollover(ctx); err != nil && !errors.Is(err, ErrPersist) {
		return "", err
	}

	p := uc.tracker.Snapshot()
	s := p.State

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Quest Tracker – %s\n\n", s.LastUpdate))
	sb.WriteString(fmt.Sprintf("⭐ Level %d · %d/100 XP\n", s.Level, p.XPProgressPercent))
	sb.WriteString(fmt.Sprintf("🔥 %d days streak\n", s.Streak))
	sb.WriteString(fmt.Sprintf("📋 Today: %d/%d (%.0f%%)\n\n", p.Done, p.Total, p.DailyProgressPercent))

	for i, q := range uc.tracker.Catalog() {
		mark := "⬜"
		if s.IsCompleted(q) {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s", i+1, mark, q))
		if uc.tracker.Flashing(q) {
			sb.WriteString(" ✨")
		}
		sb.WriteString("\n")
	}

	if p.AllComplete {
		sb.WriteString("\n🏆 All quests complete for today!\n")
	}
	sb.WriteString(fmt.Sprintf("\nTotal completed: %d\nToggle with #quest <name or number>", s.TotalCompleted))

	return sb.String(), nil
}
