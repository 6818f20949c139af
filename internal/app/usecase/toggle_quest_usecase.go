package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fardannozami/quest-tracker/internal/domain"
)

// QuestTracker is the part of TrackerUsecase the chat use cases depend on.
type QuestTracker interface {
	Catalog() domain.Catalog
	Toggle(ctx context.Context, quest domain.QuestName) (ToggleResult, error)
	CheckRollover(ctx context.Context) (bool, error)
	Snapshot() domain.Progress
	Flashing(quest domain.QuestName) bool
}

type ToggleQuestUsecase struct {
	tracker QuestTracker
}

func NewToggleQuestUsecase(tracker QuestTracker) *ToggleQuestUsecase {
	return &ToggleQuestUsecase{tracker: tracker}
}

// Execute toggles the quest named (or numbered) by input and returns the reply.
// On a failed save the reply is still returned alongside the error.
func (uc *ToggleQuestUsecase) Execute(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "Usage: #quest <name or number>. Send #status to see the list.", nil
	}

	quest, ok := uc.tracker.Catalog().Resolve(input)
	if !ok {
		return fmt.Sprintf("Unknown quest \"%s\". Send #status to see the list.", input), nil
	}

	res, err := uc.tracker.Toggle(ctx, quest)
	if err != nil && !errors.Is(err, ErrPersist) {
		return "", err
	}

	p := res.Progress
	var sb strings.Builder
	if res.Completed {
		sb.WriteString(fmt.Sprintf("✅ %s done! %+d XP (Level %d, %d XP). %d/%d today.", quest, res.XPDelta, p.State.Level, p.State.XP, p.Done, p.Total))
		if p.AllComplete {
			sb.WriteString("\n🏆 All quests complete for today! Keep the streak going 🔥")
		}
	} else {
		sb.WriteString(fmt.Sprintf("↩️ %s marked as not done. %+d XP (Level %d, %d XP). %d/%d today.", quest, res.XPDelta, p.State.Level, p.State.XP, p.Done, p.Total))
	}

	return sb.String(), err
}
