package command

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hightide-robotics/reefbot/internal/log"
)

// ID identifies a scheduled command instance.
type ID = uuid.UUID

// Scheduler drives scheduled commands at a fixed rate on a single
// goroutine. All Execute calls happen on that one control goroutine;
// Schedule and Cancel may be called from anywhere.
type Scheduler struct {
	rate time.Duration
	stop chan struct{}

	mu      sync.Mutex
	active  map[ID]Command
	pending []pendingOp

	tickCount uint64
}

type pendingOp struct {
	id  ID
	cmd Command // nil means cancel
}

// NewScheduler creates a scheduler ticking at the given rate.
// The robot loop runs at 20ms (50Hz).
func NewScheduler(rate time.Duration) *Scheduler {
	return &Scheduler{
		rate:   rate,
		stop:   make(chan struct{}),
		active: make(map[ID]Command),
	}
}

// Schedule queues a command to start on the next tick and returns its ID.
func (s *Scheduler) Schedule(cmd Command) ID {
	id := uuid.New()
	s.mu.Lock()
	s.pending = append(s.pending, pendingOp{id: id, cmd: cmd})
	s.mu.Unlock()
	return id
}

// Cancel interrupts a running command. The command's End(true) runs on the
// next tick. Canceling an unknown ID is a no-op.
func (s *Scheduler) Cancel(id ID) {
	s.mu.Lock()
	s.pending = append(s.pending, pendingOp{id: id})
	s.mu.Unlock()
}

// Run starts the control loop. Blocks until Stop is called.
func (s *Scheduler) Run() {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	log.Info("scheduler started", "rate", s.rate)
	for {
		select {
		case <-s.stop:
			s.cancelAll()
			log.Info("scheduler stopped", "ticks", s.tickCount)
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Stop halts the control loop and interrupts every active command.
func (s *Scheduler) Stop() {
	close(s.stop)
}

// Tick executes one control cycle: apply pending schedule/cancel requests,
// then run every active command once. Exported so tests and the sim loop
// can step the scheduler manually.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	ops := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, op := range ops {
		if op.cmd != nil {
			s.active[op.id] = op.cmd
			op.cmd.Initialize()
			log.Debug("command scheduled", "name", op.cmd.Name(), "id", op.id)
			continue
		}
		if cmd, ok := s.active[op.id]; ok {
			delete(s.active, op.id)
			cmd.End(true)
			log.Debug("command canceled", "name", cmd.Name(), "id", op.id)
		}
	}

	for id, cmd := range s.active {
		cmd.Execute()
		if cmd.IsFinished() {
			delete(s.active, id)
			cmd.End(false)
			log.Debug("command finished", "name", cmd.Name(), "id", id)
		}
	}

	s.tickCount++
}

// ActiveCount returns the number of commands currently running. Only valid
// on the control goroutine (or in tests stepping Tick manually).
func (s *Scheduler) ActiveCount() int {
	return len(s.active)
}

func (s *Scheduler) cancelAll() {
	for id, cmd := range s.active {
		delete(s.active, id)
		cmd.End(true)
	}
}
