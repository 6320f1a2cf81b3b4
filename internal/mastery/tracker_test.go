package mastery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/lingoleap/pkg/models"
)

func TestUpdateCorrectIncrements(t *testing.T) {
	assert.Equal(t, 1, Update(0, true))
	assert.Equal(t, 2, Update(1, true))
	assert.Equal(t, 3, Update(2, true))
}

func TestUpdateMissResetsToZero(t *testing.T) {
	assert.Equal(t, 0, Update(1, false))
	assert.Equal(t, 0, Update(5, false))
	// A miss on an already-zero counter stays at zero
	assert.Equal(t, 0, Update(0, false))
}

func TestIsMastered(t *testing.T) {
	assert.False(t, IsMastered(0))
	assert.False(t, IsMastered(1))
	assert.True(t, IsMastered(2))
	assert.True(t, IsMastered(7))
}

func TestCategoryMasteredEmptySlice(t *testing.T) {
	assert.False(t, CategoryMastered(nil))
	assert.False(t, CategoryMastered([]models.Structure{}))
}

func TestCategoryMastered(t *testing.T) {
	structures := []models.Structure{
		{Structure: "a", Example: "example a", ConsecutiveCorrect: 2},
		{Structure: "b", Example: "example b", ConsecutiveCorrect: 3},
	}
	assert.True(t, CategoryMastered(structures))

	structures[1].ConsecutiveCorrect = 1
	assert.False(t, CategoryMastered(structures))
}

func TestCategoryMasteredIgnoresItemsWithoutExamples(t *testing.T) {
	// Items without example sentences can never be quizzed, so they don't
	// hold the category back.
	structures := []models.Structure{
		{Structure: "a", Example: "example a", ConsecutiveCorrect: 2},
		{Structure: "b", Example: "", ConsecutiveCorrect: 0},
	}
	assert.True(t, CategoryMastered(structures))

	onlyUnquizzable := []models.Structure{
		{Structure: "b", Example: "  ", ConsecutiveCorrect: 0},
	}
	assert.True(t, CategoryMastered(onlyUnquizzable))
}
