package quiz

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingoleap/internal/diff"
	"github.com/example/lingoleap/pkg/models"
)

func structureItems(items ...models.Structure) []models.Structure {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range items {
		if items[i].CreatedAt == "" {
			items[i].CreatedAt = base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		}
	}
	return items
}

func TestEligibleFiltersMasteredAndExampleless(t *testing.T) {
	items := []models.Structure{
		{Structure: "a", Example: "example a", ConsecutiveCorrect: 0},
		{Structure: "b", Example: "", ConsecutiveCorrect: 0},
		{Structure: "c", Example: "example c", ConsecutiveCorrect: 2},
		{Structure: "d", Example: "example d", ConsecutiveCorrect: 1},
	}

	eligible := Eligible(items)
	require.Len(t, eligible, 2)
	assert.Equal(t, "a", eligible[0].Structure)
	assert.Equal(t, "d", eligible[1].Structure)
}

func TestStructureSessionOrdersByCreationDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []models.Structure{
		{Structure: "newest", Example: "x", CreatedAt: now.Add(time.Hour).Format(time.RFC3339)},
		{Structure: "broken", Example: "x", CreatedAt: "garbage"},
		{Structure: "oldest", Example: "x", CreatedAt: now.Add(-time.Hour).Format(time.RFC3339)},
	}

	s := NewStructureSession("set", items, ModeNormal)
	var order []string
	for !s.Done() {
		order = append(order, s.Current().Structure)
		_, err := s.Skip()
		require.NoError(t, err)
		s.Advance()
	}
	assert.Equal(t, []string{"oldest", "newest", "broken"}, order)
}

func TestStructureSessionCorrectFirstAttempt(t *testing.T) {
	items := structureItems(models.Structure{Structure: "used to", Example: "I used to play tennis.", ConsecutiveCorrect: 1})
	s := NewStructureSession("habits", items, ModeNormal)

	result, err := s.Submit("  i used to play tennis. ")
	require.NoError(t, err)
	assert.Equal(t, PhaseCorrect, result.Phase)
	assert.True(t, result.FirstAttempt)
	require.NotNil(t, result.Updated)
	assert.Equal(t, 2, result.Updated.ConsecutiveCorrect)
	assert.Equal(t, CorrectAdvanceDelay, result.AdvanceAfter)
	assert.Equal(t, Stats{Correct: 1}, s.Stats())
}

func TestStructureSessionMissResetsCounterAndAllowsRetry(t *testing.T) {
	items := structureItems(models.Structure{Structure: "used to", Example: "I used to play tennis.", ConsecutiveCorrect: 1})
	s := NewStructureSession("habits", items, ModeNormal)

	result, err := s.Submit("I use to play tennis.")
	require.NoError(t, err)
	assert.Equal(t, PhaseIncorrect, result.Phase)
	require.NotNil(t, result.Updated)
	assert.Equal(t, 0, result.Updated.ConsecutiveCorrect)
	assert.NotEmpty(t, result.Diff)
	// The question stays open; no automatic advance
	assert.Zero(t, result.AdvanceAfter)

	// New input is rejected until the learner explicitly edits
	_, err = s.Submit("I used to play tennis.")
	assert.ErrorIs(t, err, ErrInputDisabled)

	s.EditInput()
	retry, err := s.Submit("I used to play tennis.")
	require.NoError(t, err)
	assert.Equal(t, PhaseCorrect, retry.Phase)
	assert.False(t, retry.FirstAttempt)
	// A recovery after a miss does not touch the counter or the correct stat
	assert.Nil(t, retry.Updated)
	assert.Equal(t, CorrectAdvanceDelay, retry.AdvanceAfter)
	assert.Equal(t, Stats{Incorrect: 1}, s.Stats())
}

func TestStructureSessionRepeatedMissesCountOnce(t *testing.T) {
	items := structureItems(models.Structure{Structure: "s", Example: "the right answer", ConsecutiveCorrect: 1})
	s := NewStructureSession("set", items, ModeNormal)

	for _, attempt := range []string{"wrong one", "wrong two", "wrong three"} {
		s.EditInput()
		result, err := s.Submit(attempt)
		require.NoError(t, err)
		assert.Equal(t, PhaseIncorrect, result.Phase)
		require.NotNil(t, result.Updated)
		assert.Equal(t, 0, result.Updated.ConsecutiveCorrect)
	}
	// Only the first miss hit the stat
	assert.Equal(t, Stats{Incorrect: 1}, s.Stats())
}

func TestStructureSessionSkip(t *testing.T) {
	items := structureItems(models.Structure{Structure: "s", Example: "the right answer", ConsecutiveCorrect: 1})
	s := NewStructureSession("set", items, ModeNormal)

	result, err := s.Skip()
	require.NoError(t, err)
	assert.Equal(t, PhaseSkipped, result.Phase)
	require.NotNil(t, result.Updated)
	assert.Equal(t, 0, result.Updated.ConsecutiveCorrect)
	assert.Equal(t, IncorrectAdvanceDelay, result.AdvanceAfter)
	assert.Equal(t, Stats{Incorrect: 1}, s.Stats())

	// Feedback is showing, a second skip is rejected
	_, err = s.Skip()
	assert.ErrorIs(t, err, ErrInputDisabled)
}

func TestStructureSessionSkipAfterMiss(t *testing.T) {
	items := structureItems(
		models.Structure{Structure: "s", Example: "the right answer", ConsecutiveCorrect: 1},
		models.Structure{Structure: "t", Example: "next one"},
	)
	s := NewStructureSession("set", items, ModeNormal)

	miss, err := s.Submit("wrong answer")
	require.NoError(t, err)
	require.Equal(t, PhaseIncorrect, miss.Phase)
	require.Zero(t, miss.AdvanceAfter)

	// Giving up must stay possible while the comparison is showing,
	// without an explicit edit first
	result, err := s.Skip()
	require.NoError(t, err)
	assert.Equal(t, PhaseSkipped, result.Phase)
	assert.False(t, result.FirstAttempt)
	assert.Equal(t, IncorrectAdvanceDelay, result.AdvanceAfter)
	require.NotNil(t, result.Updated)
	assert.Equal(t, 0, result.Updated.ConsecutiveCorrect)
	// The miss already consumed the incorrect stat for this question
	assert.Equal(t, Stats{Incorrect: 1}, s.Stats())

	require.True(t, s.Advance())
	assert.Equal(t, "t", s.Current().Structure)
}

func TestStructureSessionEditInputOnlyAfterMiss(t *testing.T) {
	items := structureItems(models.Structure{Structure: "s", Example: "answer", ConsecutiveCorrect: 0})
	s := NewStructureSession("set", items, ModeNormal)

	_, err := s.Submit("answer")
	require.NoError(t, err)
	require.Equal(t, PhaseCorrect, s.Phase())

	// Editing during correct feedback must not reopen the question
	s.EditInput()
	assert.Equal(t, PhaseCorrect, s.Phase())
}

func TestStructureSessionFirstAttemptResetsPerQuestion(t *testing.T) {
	items := structureItems(
		models.Structure{Structure: "a", Example: "answer a"},
		models.Structure{Structure: "b", Example: "answer b"},
	)
	s := NewStructureSession("set", items, ModeNormal)

	_, err := s.Submit("wrong")
	require.NoError(t, err)
	s.EditInput()
	_, err = s.Submit("answer a")
	require.NoError(t, err)
	require.True(t, s.Advance())
	assert.Equal(t, 1, s.Remaining())

	result, err := s.Submit("answer b")
	require.NoError(t, err)
	assert.True(t, result.FirstAttempt)
	assert.Equal(t, Stats{Correct: 1, Incorrect: 1}, s.Stats())
	assert.Equal(t, 0, s.Remaining())
}

func TestStructureSessionPracticeAgainDoesNotPersistPerAnswer(t *testing.T) {
	items := structureItems(
		models.Structure{Structure: "a", Example: "answer a", ConsecutiveCorrect: 2},
		models.Structure{Structure: "b", Example: "answer b", ConsecutiveCorrect: 3},
	)
	s := NewStructureSession("set", items, ModePracticeAgain)

	result, err := s.Submit("answer a")
	require.NoError(t, err)
	assert.Nil(t, result.Updated)
	require.True(t, s.Advance())
	assert.False(t, s.NeedsReset())

	skip, err := s.Skip()
	require.NoError(t, err)
	assert.Nil(t, skip.Updated)
	require.False(t, s.Advance())

	// Completion of a practice round asks the owner for the category reset
	assert.True(t, s.Done())
	assert.True(t, s.NeedsReset())
}

func TestStructureSessionAbandonedPracticeNeedsNoReset(t *testing.T) {
	items := structureItems(
		models.Structure{Structure: "a", Example: "answer a", ConsecutiveCorrect: 2},
		models.Structure{Structure: "b", Example: "answer b", ConsecutiveCorrect: 2},
	)
	s := NewStructureSession("set", items, ModePracticeAgain)

	_, err := s.Submit("answer a")
	require.NoError(t, err)
	assert.False(t, s.NeedsReset())
}

func TestStructureSessionConcurrentAnswerAndAdvance(t *testing.T) {
	var items []models.Structure
	for i := 0; i < 50; i++ {
		items = append(items, models.Structure{Structure: "s", Example: "answer"})
	}
	s := NewStructureSession("set", structureItems(items...), ModeNormal)

	// Answers arrive on one goroutine while advances fire from another,
	// the way the timer-driven owner uses a session
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Submit("answer")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Advance()
		}
	}()
	wg.Wait()

	// Each queue position accepts at most one scored answer
	stats := s.Stats()
	assert.LessOrEqual(t, stats.Correct+stats.Incorrect, s.Len())
	if s.Done() {
		assert.Nil(t, s.Current())
	}
}

func TestStructureSessionDiffAgainstReference(t *testing.T) {
	items := structureItems(models.Structure{Structure: "s", Example: "I like cats"})
	s := NewStructureSession("set", items, ModeNormal)

	result, err := s.Submit("I like the cat")
	require.NoError(t, err)
	assert.Equal(t, []diff.Token{
		{Text: "I", Op: diff.OpCommon},
		{Text: "like", Op: diff.OpCommon},
		{Text: "the", Op: diff.OpRemoved},
		{Text: "cat", Op: diff.OpRemoved},
		{Text: "cats", Op: diff.OpAdded},
	}, result.Diff)
}
