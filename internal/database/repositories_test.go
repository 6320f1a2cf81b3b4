package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingoleap/pkg/models"
)

// setupTestDB swaps the global connection for an in-memory SQLite database
func setupTestDB(t *testing.T) {
	t.Helper()
	prev := DB
	require.NoError(t, ConnectMemory())
	db := DB
	t.Cleanup(func() {
		db.Close()
		DB = prev
	})
}

func TestVocabularyRepositoryCreateAndGet(t *testing.T) {
	setupTestDB(t)
	repo := NewVocabularyRepository()

	word := models.VocabularyWord{Word: "serendipity", PartOfSpeech: "noun", Definition: "a happy accident"}
	require.NoError(t, repo.Create(&word))
	require.NotEmpty(t, word.ID)
	assert.Equal(t, 0, word.SRSLevel)
	assert.NotEmpty(t, word.NextReviewDate)

	got, err := repo.GetByID(word.ID)
	require.NoError(t, err)
	assert.Equal(t, "serendipity", got.Word)
	assert.Equal(t, "a happy accident", got.Definition)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestVocabularyRepositoryUpdateLeavesSchedulingAlone(t *testing.T) {
	setupTestDB(t)
	repo := NewVocabularyRepository()

	word := models.VocabularyWord{Word: "cat", Definition: "a small feline"}
	require.NoError(t, repo.Create(&word))

	word.SRSLevel = 5
	word.NextReviewDate = "2030-01-01T00:00:00Z"
	require.NoError(t, repo.UpdateReview(&word))

	word.Definition = "a domestic feline"
	word.SRSLevel = 0
	require.NoError(t, repo.Update(&word))

	got, err := repo.GetByID(word.ID)
	require.NoError(t, err)
	assert.Equal(t, "a domestic feline", got.Definition)
	// The text update did not clobber the scheduler's fields
	assert.Equal(t, 5, got.SRSLevel)
	assert.Equal(t, "2030-01-01T00:00:00Z", got.NextReviewDate)
}

func TestVocabularyRepositoryDelete(t *testing.T) {
	setupTestDB(t)
	repo := NewVocabularyRepository()

	word := models.VocabularyWord{Word: "gone"}
	require.NoError(t, repo.Create(&word))
	require.NoError(t, repo.Delete(word.ID))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVocabularyRepositorySearch(t *testing.T) {
	setupTestDB(t)
	repo := NewVocabularyRepository()

	for _, w := range []models.VocabularyWord{
		{Word: "resilient", Definition: "able to recover quickly"},
		{Word: "fragile", Definition: "easily broken"},
	} {
		word := w
		require.NoError(t, repo.Create(&word))
	}

	hits, err := repo.Search("RESIL")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "resilient", hits[0].Word)

	hits, err = repo.Search("broken")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fragile", hits[0].Word)
}

func createStructures(t *testing.T, repo *StructureRepository, items ...models.Structure) []models.Structure {
	t.Helper()
	out := make([]models.Structure, len(items))
	for i, item := range items {
		s := item
		require.NoError(t, repo.Create(&s))
		out[i] = s
	}
	return out
}

func TestStructureRepositoryCreateAssignsPositions(t *testing.T) {
	setupTestDB(t)
	repo := NewStructureRepository()

	created := createStructures(t, repo,
		models.Structure{Structure: "first", Category: "Set"},
		models.Structure{Structure: "second", Category: "Set"},
	)
	assert.Equal(t, 1, created[0].Position)
	assert.Equal(t, 2, created[1].Position)

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Structure)
	assert.Equal(t, "second", all[1].Structure)
}

func TestStructureRepositoryGetByCategoryUsesDisplayNames(t *testing.T) {
	setupTestDB(t)
	repo := NewStructureRepository()

	createStructures(t, repo,
		models.Structure{Structure: "a", Category: " Tenses "},
		models.Structure{Structure: "b", Category: ""},
		models.Structure{Structure: "c", Category: "Tenses"},
	)

	tenses, err := repo.GetByCategory("Tenses")
	require.NoError(t, err)
	assert.Len(t, tenses, 2)

	uncategorized, err := repo.GetByCategory(models.UncategorizedLabel)
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "b", uncategorized[0].Structure)

	names, err := repo.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Tenses", models.UncategorizedLabel}, names)
}

func TestStructureRepositoryUpdateMastery(t *testing.T) {
	setupTestDB(t)
	repo := NewStructureRepository()

	created := createStructures(t, repo, models.Structure{Structure: "a", Category: "Set"})
	created[0].ConsecutiveCorrect = 2
	require.NoError(t, repo.UpdateMastery(&created[0]))

	got, err := repo.GetByID(created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ConsecutiveCorrect)
}

func TestStructureRepositoryRenameCategory(t *testing.T) {
	setupTestDB(t)
	repo := NewStructureRepository()

	createStructures(t, repo,
		models.Structure{Structure: "a", Category: "Old"},
		models.Structure{Structure: "b", Category: "Old"},
		models.Structure{Structure: "c", Category: "Other"},
	)

	require.NoError(t, repo.RenameCategory("Old", "New"))

	renamed, err := repo.GetByCategory("New")
	require.NoError(t, err)
	assert.Len(t, renamed, 2)

	old, err := repo.GetByCategory("Old")
	require.NoError(t, err)
	assert.Empty(t, old)

	err = repo.RenameCategory("New", "Other")
	assert.ErrorIs(t, err, ErrCategoryNameConflict)
}

func TestStructureRepositoryResetCategoryProgress(t *testing.T) {
	setupTestDB(t)
	repo := NewStructureRepository()

	created := createStructures(t, repo,
		models.Structure{Structure: "a", Category: "Set"},
		models.Structure{Structure: "b", Category: "Set"},
		models.Structure{Structure: "c", Category: "Other"},
	)
	for i := range created {
		created[i].ConsecutiveCorrect = 3
		require.NoError(t, repo.UpdateMastery(&created[i]))
	}

	require.NoError(t, repo.ResetCategoryProgress("Set"))

	set, err := repo.GetByCategory("Set")
	require.NoError(t, err)
	for _, s := range set {
		assert.Equal(t, 0, s.ConsecutiveCorrect)
	}

	other, err := repo.GetByCategory("Other")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, 3, other[0].ConsecutiveCorrect)
}

func TestStructureRepositoryMove(t *testing.T) {
	setupTestDB(t)
	repo := NewStructureRepository()

	createStructures(t, repo,
		models.Structure{Structure: "a", Category: "Set"},
		models.Structure{Structure: "b", Category: "Set"},
		models.Structure{Structure: "c", Category: "Set"},
	)

	require.NoError(t, repo.Move(0, 2))

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].Structure)
	assert.Equal(t, "c", all[1].Structure)
	assert.Equal(t, "a", all[2].Structure)
}
