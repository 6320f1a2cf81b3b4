// Package quiz drives one review pass over a queue of due words or
// structures. Sessions are explicit state machines: every answer
// transition returns the next state plus the auto-advance delay as data,
// and the owner decides when (and whether) to fire the advance.
package quiz

import (
	"errors"
	"sync"
	"time"
)

// Phase is the feedback state of the current question
type Phase string

const (
	// PhaseIdle accepts input
	PhaseIdle Phase = "idle"
	// PhaseCorrect shows positive feedback before advancing
	PhaseCorrect Phase = "correct"
	// PhaseIncorrect shows the comparison and waits for a retry
	PhaseIncorrect Phase = "incorrect"
	// PhaseSkipped reveals the answer before advancing
	PhaseSkipped Phase = "skipped"
)

// Display delays before a session auto-advances to the next question.
// Wrong answers and reveals get the longer window.
const (
	CorrectAdvanceDelay   = 1500 * time.Millisecond
	IncorrectAdvanceDelay = 3000 * time.Millisecond
)

// Stats holds the running answer counters of one session
type Stats struct {
	Correct   int
	Incorrect int
}

var (
	// ErrSessionComplete is returned when the queue is already exhausted
	ErrSessionComplete = errors.New("quiz: session is complete")
	// ErrInputDisabled is returned when an answer arrives while feedback
	// for the previous answer is still showing
	ErrInputDisabled = errors.New("quiz: input is disabled during feedback")
)

// AdvanceTimer owns the single outstanding auto-advance timer of a session.
// Scheduling a new advance invalidates the previous one, and Cancel makes
// sure no queued fire can touch a session its owner already closed.
type AdvanceTimer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Schedule arranges fn to run after d, replacing any pending advance
func (a *AdvanceTimer) Schedule(d time.Duration, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = time.AfterFunc(d, func() {
		a.mu.Lock()
		stale := gen != a.gen
		a.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Cancel discards the pending advance, if any
func (a *AdvanceTimer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}
