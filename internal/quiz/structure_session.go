package quiz

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/lingoleap/internal/diff"
	"github.com/example/lingoleap/internal/mastery"
	"github.com/example/lingoleap/pkg/models"
)

// Mode selects how a structure session treats mastery counters
type Mode int

const (
	// ModeNormal reviews unmastered structures and updates counters per answer
	ModeNormal Mode = iota
	// ModePracticeAgain re-runs a fully mastered category; counters are left
	// alone per answer and every record resets to zero on completion
	ModePracticeAgain
)

// StructureSession runs one review pass over the structures of a category.
// The session carries its own lock: answers arrive on the owner's input
// path while advances fire from a timer goroutine, and both mutate the
// cursor state. mode, category and the queue length are fixed at creation
// and read without it.
type StructureSession struct {
	mode     Mode
	category string

	mu           sync.Mutex
	queue        []models.Structure
	index        int
	phase        Phase
	firstAttempt bool
	stats        Stats
	done         bool
}

// StructureResult describes the outcome of one answer or skip
type StructureResult struct {
	Phase Phase
	// Structure is the question this result belongs to
	Structure models.Structure
	// Updated carries the new mastery counter when one must be persisted;
	// nil when nothing changed (retry-correct, or practice-again mode)
	Updated *models.Structure
	// Diff compares the user's answer against the reference on a miss
	Diff []diff.Token
	// FirstAttempt reports whether this was the first try at the question
	FirstAttempt bool
	// AdvanceAfter is the feedback window before the session advances;
	// zero means the question stays open for a retry
	AdvanceAfter time.Duration
}

// Eligible filters a category's structures down to the quizzable subset:
// a non-empty example and a mastery counter still below the threshold.
func Eligible(structures []models.Structure) []models.Structure {
	var out []models.Structure
	for i := range structures {
		if structures[i].HasExample() && !mastery.IsMastered(structures[i].ConsecutiveCorrect) {
			out = append(out, structures[i])
		}
	}
	return out
}

// NewStructureSession snapshots the given structures into a queue ordered by
// creation date ascending. Records with unparsable creation dates sort last.
func NewStructureSession(category string, structures []models.Structure, mode Mode) *StructureSession {
	queue := make([]models.Structure, len(structures))
	copy(queue, structures)
	sort.SliceStable(queue, func(i, j int) bool {
		ti, okI := queue[i].CreatedTime()
		tj, okJ := queue[j].CreatedTime()
		if okI && okJ {
			return ti.Before(tj)
		}
		return okI && !okJ
	})
	return &StructureSession{
		mode:         mode,
		category:     category,
		queue:        queue,
		phase:        PhaseIdle,
		firstAttempt: true,
		done:         len(queue) == 0,
	}
}

// Current returns the structure being asked, or nil when the session is complete
func (s *StructureSession) Current() *models.Structure {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	return &s.queue[s.index]
}

// Category returns the category this session reviews
func (s *StructureSession) Category() string { return s.category }

// Mode returns the session mode
func (s *StructureSession) Mode() Mode { return s.mode }

// Phase returns the feedback state of the current question
func (s *StructureSession) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Index returns the zero-based position in the queue
func (s *StructureSession) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Len returns the session queue length
func (s *StructureSession) Len() int { return len(s.queue) }

// Done reports whether the queue is exhausted
func (s *StructureSession) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Stats returns the running counters
func (s *StructureSession) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Remaining returns how many questions have not been answered yet
func (s *StructureSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) - (s.stats.Correct + s.stats.Incorrect)
}

// NeedsReset reports whether the owner must reset the whole category's
// counters to zero: only after a practice-again session ran to completion.
// Abandoning the session keeps all counters as they were.
func (s *StructureSession) NeedsReset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done && s.mode == ModePracticeAgain
}

// Submit evaluates one answer against the current structure's example.
//
// A correct first attempt increments the mastery counter and the correct
// stat. A miss resets the counter (every miss, not just the first) but
// counts toward the incorrect stat only once per question; the question
// stays open for a retry. A correct retry after a miss only unblocks
// progression: the earlier miss already reset the counter and the recovery
// is not a fresh success.
func (s *StructureSession) Submit(answer string) (*StructureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, ErrSessionComplete
	}
	if s.phase != PhaseIdle {
		return nil, ErrInputDisabled
	}

	item := s.queue[s.index]
	correct := strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(item.Example))

	result := &StructureResult{
		Structure:    item,
		FirstAttempt: s.firstAttempt,
	}
	if correct {
		s.phase = PhaseCorrect
		result.Phase = PhaseCorrect
		result.AdvanceAfter = CorrectAdvanceDelay
		if s.firstAttempt {
			s.stats.Correct++
			result.Updated = s.applyMastery(true)
		}
		return result, nil
	}

	s.phase = PhaseIncorrect
	result.Phase = PhaseIncorrect
	result.Diff = diff.Align(answer, item.Example)
	if s.firstAttempt {
		s.stats.Incorrect++
	}
	result.Updated = s.applyMastery(false)
	s.firstAttempt = false
	return result, nil
}

// Skip gives up on the current question. A skip is accepted while the
// question is open for input, which includes the retry window after a miss:
// once a learner has missed, giving up must still be possible. It counts as
// a failure for the mastery counter and, on a first attempt, for the
// incorrect stat; the reference answer is revealed for the longer feedback
// window.
func (s *StructureSession) Skip() (*StructureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, ErrSessionComplete
	}
	if s.phase != PhaseIdle && s.phase != PhaseIncorrect {
		return nil, ErrInputDisabled
	}

	item := s.queue[s.index]
	result := &StructureResult{
		Phase:        PhaseSkipped,
		Structure:    item,
		FirstAttempt: s.firstAttempt,
		AdvanceAfter: IncorrectAdvanceDelay,
	}
	s.phase = PhaseSkipped
	if s.firstAttempt {
		s.stats.Incorrect++
	}
	result.Updated = s.applyMastery(false)
	return result, nil
}

// EditInput returns the question to the idle state after a miss so the
// learner can retry. The mastery tracker is not touched. Editing in any
// other phase is a no-op.
func (s *StructureSession) EditInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseIncorrect {
		s.phase = PhaseIdle
	}
}

// Advance moves to the next question after the feedback delay. It returns
// false when the queue is exhausted and the session has completed.
func (s *StructureSession) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.phase = PhaseIdle
	s.firstAttempt = true
	if s.index+1 < len(s.queue) {
		s.index++
		return true
	}
	s.done = true
	return false
}

// applyMastery runs the tracker and records the new counter on the session's
// snapshot. In practice-again mode the session leaves counters alone and
// returns nil: the full-category reset on completion replaces them.
func (s *StructureSession) applyMastery(wasCorrect bool) *models.Structure {
	if s.mode == ModePracticeAgain {
		return nil
	}
	item := &s.queue[s.index]
	item.ConsecutiveCorrect = mastery.Update(item.ConsecutiveCorrect, wasCorrect)
	updated := *item
	return &updated
}
