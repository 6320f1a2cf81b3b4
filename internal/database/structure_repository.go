package database

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lingoleap/pkg/models"
)

// Validation errors for category renames
var (
	ErrEmptyCategoryName    = errors.New("category name cannot be empty")
	ErrCategoryNameConflict = errors.New("category name already exists")
)

// ValidateCategoryRename checks a proposed category rename against the set
// of existing category names. The new name is trimmed; an empty result or a
// collision with a different existing category rejects the rename before
// any record is touched. Renaming a category to itself is allowed.
func ValidateCategoryRename(existing []string, oldName, newName string) (string, error) {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return "", ErrEmptyCategoryName
	}
	for _, name := range existing {
		if strings.TrimSpace(name) == trimmed && trimmed != oldName {
			return "", ErrCategoryNameConflict
		}
	}
	return trimmed, nil
}

// StructureRepository handles database operations for structures
type StructureRepository struct{}

// NewStructureRepository creates a new repository instance
func NewStructureRepository() *StructureRepository {
	return &StructureRepository{}
}

// GetAll returns all structures in manual order
func (r *StructureRepository) GetAll() ([]models.Structure, error) {
	var structures []models.Structure
	err := DB.Select(&structures, "SELECT * FROM structures ORDER BY position, created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to get structures: %w", err)
	}
	return structures, nil
}

// GetAllOrEmpty returns all structures, degrading to an empty set when the
// load fails so a storage fault never blocks a session from starting
func (r *StructureRepository) GetAllOrEmpty() []models.Structure {
	structures, err := r.GetAll()
	if err != nil {
		log.Printf("Warning: loading structures failed, starting empty: %v", err)
		return nil
	}
	return structures
}

// GetByID returns a structure by ID
func (r *StructureRepository) GetByID(id string) (*models.Structure, error) {
	var s models.Structure
	err := DB.Get(&s, rebind("SELECT * FROM structures WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get structure by ID: %w", err)
	}
	return &s, nil
}

// GetByCategory returns the structures of one display category in manual order
func (r *StructureRepository) GetByCategory(category string) ([]models.Structure, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	// Filtered in memory: the Uncategorized grouping is a display rule over
	// trimmed values, not something the stored column can match directly.
	var out []models.Structure
	for _, s := range all {
		if s.DisplayCategory() == category {
			out = append(out, s)
		}
	}
	return out, nil
}

// Categories returns the distinct display category names, sorted
func (r *StructureRepository) Categories() ([]string, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	grouped := models.GroupByCategory(all)
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Create inserts a new structure with a zero mastery counter, appended to
// the end of the manual order
func (r *StructureRepository) Create(s *models.Structure) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().Format(time.RFC3339)
	s.ConsecutiveCorrect = 0

	var maxPos int
	if err := DB.Get(&maxPos, "SELECT COALESCE(MAX(position), 0) FROM structures"); err != nil {
		return fmt.Errorf("failed to get max position: %w", err)
	}
	s.Position = maxPos + 1

	_, err := DB.Exec(
		rebind(`INSERT INTO structures (id, structure, category, example, created_at, consecutive_correct, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
		s.ID, s.Structure, s.Category, s.Example, s.CreatedAt, s.ConsecutiveCorrect, s.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to create structure: %w", err)
	}
	return nil
}

// Update modifies the text fields of an existing structure
func (r *StructureRepository) Update(s *models.Structure) error {
	_, err := DB.Exec(
		rebind("UPDATE structures SET structure = ?, category = ?, example = ? WHERE id = ?"),
		s.Structure, s.Category, s.Example, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update structure: %w", err)
	}
	return nil
}

// UpdateMastery persists the consecutive-correct counter after a quiz answer
func (r *StructureRepository) UpdateMastery(s *models.Structure) error {
	_, err := DB.Exec(
		rebind("UPDATE structures SET consecutive_correct = ? WHERE id = ?"),
		s.ConsecutiveCorrect, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update mastery counter: %w", err)
	}
	return nil
}

// Delete removes a structure
func (r *StructureRepository) Delete(id string) error {
	_, err := DB.Exec(rebind("DELETE FROM structures WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete structure: %w", err)
	}
	return nil
}

// RenameCategory validates and applies a bulk category rename. Either every
// record of the old category is rewritten or, on a validation error, none.
func (r *StructureRepository) RenameCategory(oldName, newName string) error {
	existing, err := r.Categories()
	if err != nil {
		return err
	}
	trimmed, err := ValidateCategoryRename(existing, oldName, newName)
	if err != nil {
		return err
	}
	if trimmed == oldName {
		return nil
	}

	all, err := r.GetAll()
	if err != nil {
		return err
	}
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin rename: %w", err)
	}
	for _, s := range all {
		if s.DisplayCategory() != oldName {
			continue
		}
		if _, err := tx.Exec(rebind("UPDATE structures SET category = ? WHERE id = ?"), trimmed, s.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to rename category: %w", err)
		}
	}
	return tx.Commit()
}

// ResetCategoryProgress zeroes the mastery counter of every structure in a
// category, used when a practice-again session completes
func (r *StructureRepository) ResetCategoryProgress(category string) error {
	structures, err := r.GetByCategory(category)
	if err != nil {
		return err
	}
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	for _, s := range structures {
		if _, err := tx.Exec(rebind("UPDATE structures SET consecutive_correct = 0 WHERE id = ?"), s.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reset category progress: %w", err)
		}
	}
	return tx.Commit()
}

// Move reorders the full structure list by moving the item at index from to
// index to, then persists the resulting positions
func (r *StructureRepository) Move(from, to int) error {
	all, err := r.GetAll()
	if err != nil {
		return err
	}
	reordered := models.MoveItem(all, from, to)

	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	for i, s := range reordered {
		if _, err := tx.Exec(rebind("UPDATE structures SET position = ? WHERE id = ?"), i+1, s.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to persist order: %w", err)
		}
	}
	return tx.Commit()
}
