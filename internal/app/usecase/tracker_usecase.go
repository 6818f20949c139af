package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	walog "go.mau.fi/whatsmeow/util/log"

	"github.com/fardannozami/quest-tracker/internal/clock"
	"github.com/fardannozami/quest-tracker/internal/domain"
)

const DefaultStateKey = "questData"

// ErrPersist wraps store write failures. The in-memory state is already
// updated when it is returned.
var ErrPersist = errors.New("persist quest state")

// FlashSignal receives the transient "just completed" highlight.
type FlashSignal interface {
	Flash(q domain.QuestName)
	Active(q domain.QuestName) bool
}

type TrackerOptions struct {
	Key      string
	Catalog  domain.Catalog
	Clock    clock.Clock
	Location *time.Location
	Flash    FlashSignal
	Logger   walog.Logger
}

type ToggleResult struct {
	Quest     domain.QuestName
	Completed bool
	XPDelta   int
	Progress  domain.Progress
}

// TrackerUsecase owns the single quest state record. It loads it once, runs
// every transition through the pure domain functions and saves after each one.
type TrackerUsecase struct {
	mu      sync.Mutex
	store   domain.StateStore
	key     string
	catalog domain.Catalog
	clock   clock.Clock
	loc     *time.Location
	flash   FlashSignal
	log     walog.Logger

	state  domain.QuestState
	loaded bool
}

func NewTrackerUsecase(store domain.StateStore, opts TrackerOptions) *TrackerUsecase {
	uc := &TrackerUsecase{
		store:   store,
		key:     opts.Key,
		catalog: opts.Catalog,
		clock:   opts.Clock,
		loc:     opts.Location,
		flash:   opts.Flash,
		log:     opts.Logger,
	}
	if uc.key == "" {
		uc.key = DefaultStateKey
	}
	if len(uc.catalog) == 0 {
		uc.catalog = domain.DefaultCatalog
	}
	if uc.clock == nil {
		uc.clock = clock.Real{}
	}
	if uc.loc == nil {
		uc.loc = time.Local
	}
	if uc.log == nil {
		uc.log = walog.Noop
	}
	return uc
}

func (uc *TrackerUsecase) Catalog() domain.Catalog {
	return uc.catalog
}

func (uc *TrackerUsecase) today() domain.Date {
	return domain.DateOf(uc.clock.Now().In(uc.loc))
}

// Load reads the stored record, falling back to the default state when it is
// missing or unreadable, applies rollover for today and saves the result.
func (uc *TrackerUsecase) Load(ctx context.Context) (domain.Progress, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	err := uc.loadLocked(ctx)
	return domain.ProgressOf(uc.state, uc.catalog), err
}

func (uc *TrackerUsecase) loadLocked(ctx context.Context) error {
	today := uc.today()

	raw, err := uc.store.Get(ctx, uc.key)
	var state domain.QuestState
	switch {
	case errors.Is(err, domain.ErrStateNotFound):
		uc.log.Infof("No stored quest state under %q, starting fresh", uc.key)
		state = domain.DefaultState(today)
	case err != nil:
		return fmt.Errorf("read quest state: %w", err)
	default:
		state, err = domain.DecodeState(raw, uc.catalog)
		if err != nil {
			uc.log.Warnf("Discarding unreadable quest state: %v", err)
			state = domain.DefaultState(today)
		}
	}

	uc.state = domain.Rollover(state, today, uc.catalog)
	uc.loaded = true
	if uc.state.LastUpdate != state.LastUpdate {
		uc.log.Infof("Rolled over from %s to %s, streak %d", state.LastUpdate, today, uc.state.Streak)
	}
	return uc.saveLocked(ctx)
}

func (uc *TrackerUsecase) ensureLoadedLocked(ctx context.Context) error {
	if uc.loaded {
		return nil
	}
	return uc.loadLocked(ctx)
}

func (uc *TrackerUsecase) saveLocked(ctx context.Context) error {
	b, err := domain.EncodeState(uc.state)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := uc.store.Put(ctx, uc.key, b); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// rolloverLocked reports whether the day changed.
func (uc *TrackerUsecase) rolloverLocked() bool {
	today := uc.today()
	if uc.state.LastUpdate == today {
		return false
	}

	prev := uc.state
	uc.state = domain.Rollover(prev, today, uc.catalog)
	uc.log.Infof("Rolled over from %s to %s, streak %d", prev.LastUpdate, today, uc.state.Streak)
	return true
}

// CheckRollover re-evaluates the current day and saves only when it changed.
func (uc *TrackerUsecase) CheckRollover(ctx context.Context) (bool, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.loaded {
		return true, uc.loadLocked(ctx)
	}
	if !uc.rolloverLocked() {
		return false, nil
	}
	return true, uc.saveLocked(ctx)
}

// Toggle flips quest for today. A pending rollover is applied first so a
// completion made after midnight counts for the new day.
func (uc *TrackerUsecase) Toggle(ctx context.Context, quest domain.QuestName) (ToggleResult, error) {
	if !uc.catalog.Contains(quest) {
		return ToggleResult{}, fmt.Errorf("toggle %q: %w", quest, domain.ErrUnknownQuest)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.ensureLoadedLocked(ctx); err != nil && !errors.Is(err, ErrPersist) {
		return ToggleResult{}, err
	}
	uc.rolloverLocked()

	before := uc.state.XP
	uc.state = domain.Toggle(uc.state, quest, uc.catalog)

	res := ToggleResult{
		Quest:     quest,
		Completed: uc.state.IsCompleted(quest),
		XPDelta:   uc.state.XP - before,
		Progress:  domain.ProgressOf(uc.state, uc.catalog),
	}
	if res.Completed && uc.flash != nil {
		uc.flash.Flash(quest)
	}

	return res, uc.saveLocked(ctx)
}

// Snapshot returns a copy of the in-memory state with derived values.
func (uc *TrackerUsecase) Snapshot() domain.Progress {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return domain.ProgressOf(uc.state, uc.catalog)
}

// Flashing reports whether quest was completed moments ago.
func (uc *TrackerUsecase) Flashing(quest domain.QuestName) bool {
	if uc.flash == nil {
		return false
	}
	return uc.flash.Active(quest)
}

// RunRolloverLoop checks for a new day on every tick until ctx is done.
func (uc *TrackerUsecase) RunRolloverLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := uc.CheckRollover(ctx); err != nil {
				uc.log.Errorf("Rollover check failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
