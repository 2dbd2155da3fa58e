package migration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// The schema must migrate on SQLite as well as Postgres: IDs are assigned by
// the application, so no table relies on a database-side uuid default.
func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"users", "tags", "ingredients", "recipes",
		"recipe_ingredients", "favorites", "shopping_carts", "subscriptions",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	user := entities.User{
		ID:       uuid.New(),
		Email:    "ivan@example.com",
		Username: "ivan",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
}
