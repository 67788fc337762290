// Package scheduler fires one-shot broadcasts at absolute wall-clock instants.
//
// Entries are kept in fireAt order. A ticker compares the injected clock with
// the pending entries and hands every due entry, oldest first, to a single
// firing goroutine, so slow deliveries never hold up the ticker and side
// effects happen in chronological order.
//
// Each entry moves through
//
//	scheduled -> fired | cancelled | missed
//
// and never leaves a terminal state. An entry is marked fired right before its
// action runs; a failing action is logged but not retried.
//
// State is process-local. Entries are defined again from configuration on
// every start, so a restart may repeat or skip an instant that was due while
// the process was down.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"summit-push-go/internal/clock"
)

var (
	ErrNotFound   = errors.New("scheduled broadcast not found")
	ErrNotPending = errors.New("scheduled broadcast already settled")
)

type State int

const (
	StateScheduled State = iota
	StateFired
	StateCancelled
	StateMissed
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateFired:
		return "fired"
	case StateCancelled:
		return "cancelled"
	case StateMissed:
		return "missed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Action is the work run when an entry becomes due.
type Action func(ctx context.Context) error

type Config struct {
	Tick time.Duration
	// CatchUp fires entries that are already past due. When false, an entry
	// found more than one tick late is marked missed instead.
	CatchUp bool
}

// Entry is a read-only view of a scheduled broadcast.
type Entry struct {
	ID      string
	Name    string
	FireAt  time.Time
	State   State
	FiredAt time.Time
	Err     error
}

type entry struct {
	Entry
	action Action
}

type Scheduler struct {
	mu      sync.Mutex
	cfg     Config
	clock   clock.Clock
	log     *zap.Logger
	entries []*entry
	seq     int
}

func New(cfg Config, clk clock.Clock, log *zap.Logger) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Scheduler{cfg: cfg, clock: clk, log: log}
}

// Schedule registers action to run once at fireAt and returns the entry id.
// Instants in the past are accepted and handled according to Config.CatchUp.
func (s *Scheduler) Schedule(name string, fireAt time.Time, action Action) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	e := &entry{
		Entry: Entry{
			ID:     fmt.Sprintf("sched:%d", s.seq),
			Name:   name,
			FireAt: fireAt.UTC(),
			State:  StateScheduled,
		},
		action: action,
	}
	s.entries = append(s.entries, e)
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].FireAt.Before(s.entries[j].FireAt)
	})
	s.log.Debug("broadcast scheduled", zap.String("id", e.ID), zap.String("name", name), zap.Time("fire_at", e.FireAt))
	return e.ID
}

// Cancel stops a pending entry from firing.
func (s *Scheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID != id {
			continue
		}
		if e.State != StateScheduled {
			return fmt.Errorf("%w: %s is %s", ErrNotPending, id, e.State)
		}
		e.State = StateCancelled
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Entries returns every entry in fireAt order.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Entry)
	}
	return out
}

// Tick fires every entry due at the current clock time and returns how many
// actions ran.
func (s *Scheduler) Tick(ctx context.Context) int {
	due := s.collect(s.clock.Now())
	s.fire(ctx, due)
	return len(due)
}

// Run ticks until ctx is done. Due entries run on a separate goroutine, one
// batch after another.
func (s *Scheduler) Run(ctx context.Context) error {
	batches := make(chan []*entry, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for batch := range batches {
			s.fire(ctx, batch)
		}
	}()
	defer func() {
		close(batches)
		<-done
	}()

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("tick", s.cfg.Tick), zap.Bool("catch_up", s.cfg.CatchUp), zap.Int("entries", len(s.Entries())))

	enqueue := func() {
		start := time.Now()
		if due := s.collect(s.clock.Now()); len(due) > 0 {
			select {
			case batches <- due:
			case <-ctx.Done():
			}
		}
		tickDuration.Observe(time.Since(start).Seconds())
	}

	enqueue()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			enqueue()
		}
	}
}

// collect moves due entries out of the scheduled state and returns the ones
// whose actions must run, in fireAt order.
func (s *Scheduler) collect(now time.Time) []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*entry
	for _, e := range s.entries {
		if e.FireAt.After(now) {
			break
		}
		if e.State != StateScheduled {
			continue
		}
		if !s.cfg.CatchUp && now.Sub(e.FireAt) > s.cfg.Tick {
			e.State = StateMissed
			missedTotal.Inc()
			s.log.Warn("scheduled broadcast missed", zap.String("id", e.ID), zap.String("name", e.Name), zap.Time("fire_at", e.FireAt))
			continue
		}
		e.State = StateFired
		e.FiredAt = now
		due = append(due, e)
	}
	return due
}

func (s *Scheduler) fire(ctx context.Context, due []*entry) {
	for _, e := range due {
		firedTotal.Inc()
		s.log.Info("firing scheduled broadcast", zap.String("id", e.ID), zap.String("name", e.Name), zap.Time("fire_at", e.FireAt))
		var err error
		if r := panics.Try(func() { err = e.action(ctx) }); r != nil {
			err = r.AsError()
		}
		if err != nil {
			actionErrors.Inc()
			s.log.Error("scheduled broadcast failed", zap.String("id", e.ID), zap.String("name", e.Name), zap.Error(err))
			s.mu.Lock()
			e.Err = err
			s.mu.Unlock()
		}
	}
}
