package database

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/lingoleap/pkg/models"
)

// VocabularyRepository handles database operations for vocabulary words
type VocabularyRepository struct{}

// NewVocabularyRepository creates a new repository instance
func NewVocabularyRepository() *VocabularyRepository {
	return &VocabularyRepository{}
}

// GetAll returns all words, newest first
func (r *VocabularyRepository) GetAll() ([]models.VocabularyWord, error) {
	var words []models.VocabularyWord
	err := DB.Select(&words, "SELECT * FROM vocabulary_words ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	return words, nil
}

// GetAllOrEmpty returns all words, degrading to an empty set when the load
// fails so a storage fault never blocks a session from starting
func (r *VocabularyRepository) GetAllOrEmpty() []models.VocabularyWord {
	words, err := r.GetAll()
	if err != nil {
		log.Printf("Warning: loading vocabulary failed, starting empty: %v", err)
		return nil
	}
	return words
}

// GetByID returns a word by ID
func (r *VocabularyRepository) GetByID(id string) (*models.VocabularyWord, error) {
	var word models.VocabularyWord
	err := DB.Get(&word, rebind("SELECT * FROM vocabulary_words WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	return &word, nil
}

// Create inserts a new word at ladder level 0, due immediately
func (r *VocabularyRepository) Create(word *models.VocabularyWord) error {
	now := time.Now().Format(time.RFC3339)
	word.ID = uuid.NewString()
	word.SRSLevel = 0
	word.NextReviewDate = now
	word.CreatedAt = now

	_, err := DB.Exec(
		rebind(`INSERT INTO vocabulary_words (id, word, part_of_speech, definition, srs_level, next_review_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
		word.ID, word.Word, word.PartOfSpeech, word.Definition, word.SRSLevel, word.NextReviewDate, word.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// Update modifies the text fields of an existing word. Scheduling fields
// are owned by the review scheduler and only change through UpdateReview.
func (r *VocabularyRepository) Update(word *models.VocabularyWord) error {
	_, err := DB.Exec(
		rebind("UPDATE vocabulary_words SET word = ?, part_of_speech = ?, definition = ? WHERE id = ?"),
		word.Word, word.PartOfSpeech, word.Definition, word.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update word: %w", err)
	}
	return nil
}

// UpdateReview persists the scheduling fields after a quiz answer
func (r *VocabularyRepository) UpdateReview(word *models.VocabularyWord) error {
	_, err := DB.Exec(
		rebind("UPDATE vocabulary_words SET srs_level = ?, next_review_date = ? WHERE id = ?"),
		word.SRSLevel, word.NextReviewDate, word.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review state: %w", err)
	}
	return nil
}

// Delete removes a word
func (r *VocabularyRepository) Delete(id string) error {
	_, err := DB.Exec(rebind("DELETE FROM vocabulary_words WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// Search finds words by pattern match on the word or definition
func (r *VocabularyRepository) Search(query string) ([]models.VocabularyWord, error) {
	var words []models.VocabularyWord
	pattern := "%" + query + "%"
	err := DB.Select(&words,
		rebind("SELECT * FROM vocabulary_words WHERE LOWER(word) LIKE LOWER(?) OR LOWER(definition) LIKE LOWER(?) ORDER BY word"),
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search words: %w", err)
	}
	return words, nil
}
