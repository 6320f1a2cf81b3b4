package quiz

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/lingoleap/internal/spaced_repetition"
	"github.com/example/lingoleap/pkg/models"
)

// VocabularySession runs one review pass over a queue of due words.
// The queue is snapshotted at session start: later changes to the word set
// do not resize or reorder an active session. The session carries its own
// lock because answers arrive on the owner's input path while advances fire
// from a timer goroutine.
type VocabularySession struct {
	mu    sync.Mutex
	queue []models.VocabularyWord
	index int
	phase Phase
	stats Stats
	done  bool
}

// VocabularyResult describes the outcome of one answer submission
type VocabularyResult struct {
	Correct bool
	// Word is the question that was answered
	Word models.VocabularyWord
	// Updated carries the new scheduling fields; the owner persists it
	Updated models.VocabularyWord
	// AdvanceAfter is how long to show feedback before Advance is called
	AdvanceAfter time.Duration
}

// NewVocabularySession snapshots the due words into a session queue.
// When rnd is non-nil the queue is shuffled, as the review flow does;
// passing nil keeps the input order.
func NewVocabularySession(due []models.VocabularyWord, rnd *rand.Rand) *VocabularySession {
	queue := make([]models.VocabularyWord, len(due))
	copy(queue, due)
	if rnd != nil {
		rnd.Shuffle(len(queue), func(i, j int) {
			queue[i], queue[j] = queue[j], queue[i]
		})
	}
	return &VocabularySession{
		queue: queue,
		phase: PhaseIdle,
		done:  len(queue) == 0,
	}
}

// Current returns the word being asked, or nil when the session is complete
func (s *VocabularySession) Current() *models.VocabularyWord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	return &s.queue[s.index]
}

// Phase returns the feedback state of the current question
func (s *VocabularySession) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Index returns the zero-based position in the queue
func (s *VocabularySession) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Len returns the session queue length, fixed at creation
func (s *VocabularySession) Len() int { return len(s.queue) }

// Done reports whether the queue is exhausted
func (s *VocabularySession) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Stats returns the running counters
func (s *VocabularySession) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Submit evaluates one answer against the current word. The scheduler runs
// exactly once per queue position: while the result's feedback is showing
// the session rejects further input with ErrInputDisabled.
func (s *VocabularySession) Submit(answer string, now time.Time) (*VocabularyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, ErrSessionComplete
	}
	if s.phase != PhaseIdle {
		return nil, ErrInputDisabled
	}

	word := s.queue[s.index]
	correct := strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(word.Word)

	newLevel, nextReview := spaced_repetition.Schedule(word.SRSLevel, correct, now)
	updated := word
	updated.SRSLevel = newLevel
	updated.NextReviewDate = nextReview.Format(time.RFC3339)

	result := &VocabularyResult{
		Correct: correct,
		Word:    word,
		Updated: updated,
	}
	if correct {
		s.phase = PhaseCorrect
		s.stats.Correct++
		result.AdvanceAfter = CorrectAdvanceDelay
	} else {
		s.phase = PhaseIncorrect
		s.stats.Incorrect++
		result.AdvanceAfter = IncorrectAdvanceDelay
	}
	return result, nil
}

// Advance moves to the next question after the feedback delay. It returns
// false when the queue is exhausted and the session has completed.
func (s *VocabularySession) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.phase = PhaseIdle
	if s.index+1 < len(s.queue) {
		s.index++
		return true
	}
	s.done = true
	return false
}
