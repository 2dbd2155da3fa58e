package tag

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
	require.NoError(t, db.AutoMigrate(&entities.Tag{}))
	return db
}

func TestGetTags(t *testing.T) {
	db := setupTestDB(t)
	service := NewTagService(NewTagRepository(db))

	breakfast := entities.Tag{ID: uuid.New(), Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"}
	lunch := entities.Tag{ID: uuid.New(), Name: "Обед", Color: "#49B64E", Slug: "lunch"}
	require.NoError(t, db.Create(&breakfast).Error)
	require.NoError(t, db.Create(&lunch).Error)

	tags, err := service.GetTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)

	detail, err := service.GetTagDetail(context.Background(), breakfast.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Завтрак", detail.Name)
	assert.Equal(t, "#E26C2D", detail.Color)
	assert.Equal(t, "breakfast", detail.Slug)

	_, err = service.GetTagDetail(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

// Name and slug are unique, color is not: two tags may share a color.
func TestTagColorNotUnique(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&entities.Tag{
		ID: uuid.New(), Name: "Обед", Color: "#49B64E", Slug: "lunch",
	}).Error)
	require.NoError(t, db.Create(&entities.Tag{
		ID: uuid.New(), Name: "Ужин", Color: "#49B64E", Slug: "dinner",
	}).Error)

	err := db.Create(&entities.Tag{
		ID: uuid.New(), Name: "Полдник", Color: "#111111", Slug: "lunch",
	}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
