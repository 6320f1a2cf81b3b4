// Package mastery tracks consecutive-correct counters for grammatical
// structures against a fixed mastery threshold.
package mastery

import "github.com/example/lingoleap/pkg/models"

// Threshold is the number of consecutive correct first-attempt answers
// required before a structure counts as mastered
const Threshold = 2

// Update returns the new consecutive-correct count after one answer.
// Any miss (wrong answer or skip) resets the count to zero. First-attempt
// accounting is the quiz session's job: a recovered-correct retry must not
// reach this function at all.
func Update(currentCount int, wasCorrect bool) int {
	if !wasCorrect {
		return 0
	}
	return currentCount + 1
}

// IsMastered reports whether a counter value has reached the threshold
func IsMastered(count int) bool {
	return count >= Threshold
}

// CategoryMastered reports whether every structure in the slice that has an
// example sentence is mastered. An empty slice is not considered mastered.
func CategoryMastered(structures []models.Structure) bool {
	if len(structures) == 0 {
		return false
	}
	for i := range structures {
		if structures[i].HasExample() && !IsMastered(structures[i].ConsecutiveCorrect) {
			return false
		}
	}
	return true
}
