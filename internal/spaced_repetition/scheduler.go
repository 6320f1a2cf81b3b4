package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/lingoleap/pkg/models"
)

// Schedule computes the next ladder level and review time for a word after
// one answer. Correct answers climb one level, incorrect answers drop one;
// both are clamped to the 0..MaxLevel range. The next review is scheduled
// by the delay of the level the word lands on.
func Schedule(currentLevel int, wasCorrect bool, now time.Time) (newLevel int, nextReview time.Time) {
	if wasCorrect {
		newLevel = clampLevel(currentLevel + 1)
	} else {
		newLevel = clampLevel(currentLevel - 1)
	}
	nextReview = now.Add(time.Duration(DelayMinutesFor(newLevel)) * time.Minute)
	return newLevel, nextReview
}

// IsDue reports whether a word should be reviewed at the given time. A word
// with an unparsable next review date is always due, so a corrupt record
// never locks the learner out of it.
func IsDue(word *models.VocabularyWord, now time.Time) bool {
	next, ok := word.NextReviewTime()
	if !ok {
		return true
	}
	return !next.After(now)
}

// DueWords filters a record set down to the words due at the given time.
// The order of the input is preserved.
func DueWords(words []models.VocabularyWord, now time.Time) []models.VocabularyWord {
	var due []models.VocabularyWord
	for i := range words {
		if IsDue(&words[i], now) {
			due = append(due, words[i])
		}
	}
	return due
}

// SortByNextReview orders words by their next review date, earliest first.
// Words with unparsable dates sort last so the list view stays usable.
func SortByNextReview(words []models.VocabularyWord) {
	sort.SliceStable(words, func(i, j int) bool {
		ti, okI := words[i].NextReviewTime()
		tj, okJ := words[j].NextReviewTime()
		if okI && okJ {
			return ti.Before(tj)
		}
		return okI && !okJ
	})
}
