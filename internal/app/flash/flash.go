// Package flash keeps the short-lived "just completed" highlight shown next
// to a quest after it is checked off. Nothing here is persisted.
package flash

import (
	"sync"
	"time"

	"github.com/fardannozami/quest-tracker/internal/domain"
)

const DefaultDuration = 500 * time.Millisecond

type pending struct {
	timer *time.Timer
	gen   uint64
}

// Flasher holds at most one pending clear timer per quest. Flashing a quest
// that is already lit restarts its timer.
type Flasher struct {
	mu       sync.Mutex
	duration time.Duration
	seq      uint64
	active   map[domain.QuestName]pending
	stopped  bool
}

func New(d time.Duration) *Flasher {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Flasher{
		duration: d,
		active:   make(map[domain.QuestName]pending),
	}
}

func (f *Flasher) Flash(q domain.QuestName) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return
	}
	if p, ok := f.active[q]; ok {
		p.timer.Stop()
	}

	f.seq++
	gen := f.seq
	f.active[q] = pending{
		gen:   gen,
		timer: time.AfterFunc(f.duration, func() { f.expire(q, gen) }),
	}
}

// expire only clears the flash it was scheduled for; a timer that fires
// while a newer Flash holds the lock must not clear the newer one.
func (f *Flasher) expire(q domain.QuestName, gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.active[q]; ok && p.gen == gen {
		delete(f.active, q)
	}
}

func (f *Flasher) Active(q domain.QuestName) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[q]
	return ok
}

// Pending returns the number of quests currently lit.
func (f *Flasher) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

// Stop cancels every pending timer. Later calls to Flash are ignored.
func (f *Flasher) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true
	for q, p := range f.active {
		p.timer.Stop()
		delete(f.active, q)
	}
}
