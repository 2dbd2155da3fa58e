package subscription

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/domain"
	"github.com/marke1-web/foodgram-project-react/entities"
	"github.com/marke1-web/foodgram-project-react/pkg/user"
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

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
		&entities.Subscription{},
	))
	return db
}

func setupService(t *testing.T) (SubscriptionService, *gorm.DB) {
	db := setupTestDB(t)
	return NewSubscriptionService(NewSubscriptionRepository(db), user.NewUserRepository(db)), db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	u := &entities.User{
		ID:        uuid.New(),
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "hashed",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestRecipe(t *testing.T, db *gorm.DB, author *entities.User, name string) *entities.Recipe {
	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        name,
		Text:        "text",
		ImageURL:    "https://cdn.test/recipes/" + name,
		CookingTime: 10,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func TestSubscribeToggle(t *testing.T) {
	service, db := setupService(t)
	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")

	res, err := service.Subscribe(context.Background(), reader.ID.String(), author.ID.String())
	require.NoError(t, err)
	assert.Equal(t, author.ID.String(), res.ID)
	assert.True(t, res.IsSubscribed)

	_, err = service.Subscribe(context.Background(), reader.ID.String(), author.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)

	require.NoError(t, service.Unsubscribe(context.Background(), reader.ID.String(), author.ID.String()))

	err = service.Unsubscribe(context.Background(), reader.ID.String(), author.ID.String())
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestSubscribeToSelf(t *testing.T) {
	service, db := setupService(t)
	reader := createTestUser(t, db, "reader")

	_, err := service.Subscribe(context.Background(), reader.ID.String(), reader.ID.String())
	assert.ErrorIs(t, err, domain.ErrSelfSubscription)
}

func TestSubscribeToUnknownAuthor(t *testing.T) {
	service, db := setupService(t)
	reader := createTestUser(t, db, "reader")

	_, err := service.Subscribe(context.Background(), reader.ID.String(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetSubscriptionsRecipesLimit(t *testing.T) {
	service, db := setupService(t)
	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")

	for i := 0; i < 4; i++ {
		createTestRecipe(t, db, author, fmt.Sprintf("Рецепт %d", i))
	}

	_, err := service.Subscribe(context.Background(), reader.ID.String(), author.ID.String())
	require.NoError(t, err)
	_, err = service.Subscribe(context.Background(), reader.ID.String(), other.ID.String())
	require.NoError(t, err)

	subs, count, err := service.GetSubscriptions(context.Background(), reader.ID.String(), 1, 20, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.Len(t, subs, 2)

	byUsername := map[string]domain.SubscriptionResponse{}
	for _, sub := range subs {
		byUsername[sub.Username] = sub
	}
	// recipes are capped by the limit while the count stays the real total
	assert.Len(t, byUsername["author"].Recipes, 2)
	assert.EqualValues(t, 4, byUsername["author"].RecipesCount)
	assert.Empty(t, byUsername["other"].Recipes)
	assert.Zero(t, byUsername["other"].RecipesCount)
}

func TestGetSubscriptionsEmpty(t *testing.T) {
	service, db := setupService(t)
	reader := createTestUser(t, db, "reader")

	subs, count, err := service.GetSubscriptions(context.Background(), reader.ID.String(), 1, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, subs)
}
