package ingredient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/domain"
	"github.com/marke1-web/foodgram-project-react/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}))
	return db
}

func setupService(t *testing.T) (IngredientService, *gorm.DB) {
	db := setupTestDB(t)
	return NewIngredientService(NewIngredientRepository(db)), db
}

func seedIngredients(t *testing.T, db *gorm.DB, names ...string) map[string]uuid.UUID {
	ids := make(map[string]uuid.UUID, len(names))
	for _, name := range names {
		ingredient := entities.Ingredient{
			ID:              uuid.New(),
			Name:            name,
			MeasurementUnit: "г",
		}
		require.NoError(t, db.Create(&ingredient).Error)
		ids[name] = ingredient.ID
	}
	return ids
}

func TestGetIngredientsPrefixFilter(t *testing.T) {
	service, db := setupService(t)
	seedIngredients(t, db, "абрикос", "абрикосовое варенье", "мука", "Sugar")

	all, err := service.GetIngredients(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	filtered, err := service.GetIngredients(context.Background(), "абрикос")
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	// ordered by name
	assert.Equal(t, "абрикос", filtered[0].Name)
	assert.Equal(t, "абрикосовое варенье", filtered[1].Name)

	// prefix is matched case-insensitively; SQLite's LOWER only folds
	// ASCII, so the mixed-case check uses a Latin name
	upper, err := service.GetIngredients(context.Background(), "sugar")
	require.NoError(t, err)
	require.Len(t, upper, 1)
	assert.Equal(t, "Sugar", upper[0].Name)

	none, err := service.GetIngredients(context.Background(), "шоколад")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// LIKE wildcards in the query are literals: "%" must not match everything.
func TestGetIngredientsWildcardsAreLiterals(t *testing.T) {
	service, db := setupService(t)
	seedIngredients(t, db, "мука", "соль", "100% какао")

	all, err := service.GetIngredients(context.Background(), "%")
	require.NoError(t, err)
	assert.Empty(t, all)

	underscore, err := service.GetIngredients(context.Background(), "_")
	require.NoError(t, err)
	assert.Empty(t, underscore)

	literal, err := service.GetIngredients(context.Background(), "100%")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100% какао", literal[0].Name)
}

func TestGetIngredientDetail(t *testing.T) {
	service, db := setupService(t)
	ids := seedIngredients(t, db, "мука")

	res, err := service.GetIngredientDetail(context.Background(), ids["мука"].String())
	require.NoError(t, err)
	assert.Equal(t, "мука", res.Name)
	assert.Equal(t, "г", res.MeasurementUnit)

	_, err = service.GetIngredientDetail(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}
