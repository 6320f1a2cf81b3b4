package models

import "time"

// VocabularyWord represents a single word being learned with the SRS ladder.
// SRSLevel is the 0..9 ladder position; the date fields hold RFC3339 strings.
type VocabularyWord struct {
	ID             string `json:"id" db:"id"`
	Word           string `json:"word" db:"word"`
	PartOfSpeech   string `json:"part_of_speech" db:"part_of_speech"`
	Definition     string `json:"definition" db:"definition"`
	SRSLevel       int    `json:"srs_level" db:"srs_level"`
	NextReviewDate string `json:"next_review_date" db:"next_review_date"`
	CreatedAt      string `json:"created_at" db:"created_at"`
}

// NextReviewTime parses the stored next review date. A malformed date is
// reported through ok=false; callers treat such records as due immediately
// so a corrupt row never blocks the learner.
func (w *VocabularyWord) NextReviewTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, w.NextReviewDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CreatedTime parses the stored creation date
func (w *VocabularyWord) CreatedTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, w.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
