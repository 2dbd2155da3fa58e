package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/domain"
	"github.com/marke1-web/foodgram-project-react/entities"
	"github.com/marke1-web/foodgram-project-react/pkg/jwt"
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

func setupService(t *testing.T) (UserService, *gorm.DB) {
	db := setupTestDB(t)
	return NewUserService(NewUserRepository(db), jwt.NewJWTService()), db
}

func registerRequest(username string) domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Иван",
		LastName:  "Иванов",
		Password:  "correct-horse",
	}
}

func TestRegister(t *testing.T) {
	service, db := setupService(t)

	res, err := service.Register(context.Background(), registerRequest("ivan"))
	require.NoError(t, err)
	assert.Equal(t, "ivan", res.Username)
	assert.NotEmpty(t, res.ID)

	var stored entities.User
	require.NoError(t, db.Where("username = ?", "ivan").First(&stored).Error)
	// passwords are stored hashed, never verbatim
	assert.NotEqual(t, "correct-horse", stored.Password)
}

func TestRegisterReservedUsername(t *testing.T) {
	service, _ := setupService(t)

	for _, username := range []string{"me", "Me", "ME"} {
		req := registerRequest(username)
		_, err := service.Register(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrUsernameReserved)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	service, _ := setupService(t)

	_, err := service.Register(context.Background(), registerRequest("ivan"))
	require.NoError(t, err)

	dupEmail := registerRequest("petr")
	dupEmail.Email = "ivan@example.com"
	_, err = service.Register(context.Background(), dupEmail)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	dupUsername := registerRequest("ivan")
	dupUsername.Email = "other@example.com"
	_, err = service.Register(context.Background(), dupUsername)
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)
}

func TestLogin(t *testing.T) {
	service, _ := setupService(t)

	_, err := service.Register(context.Background(), registerRequest("ivan"))
	require.NoError(t, err)

	res, err := service.Login(context.Background(), domain.LoginRequest{
		Email:    "ivan@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = service.Login(context.Background(), domain.LoginRequest{
		Email:    "ivan@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = service.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	service, _ := setupService(t)

	registered, err := service.Register(context.Background(), registerRequest("ivan"))
	require.NoError(t, err)

	me, err := service.Me(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "ivan", me.Username)
	assert.False(t, me.IsSubscribed)

	_, err = service.Me(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUserDetailSubscriptionFlag(t *testing.T) {
	service, db := setupService(t)

	viewer, err := service.Register(context.Background(), registerRequest("viewer"))
	require.NoError(t, err)
	author, err := service.Register(context.Background(), registerRequest("author"))
	require.NoError(t, err)

	detail, err := service.GetUserDetail(context.Background(), author.ID, viewer.ID)
	require.NoError(t, err)
	assert.False(t, detail.IsSubscribed)

	require.NoError(t, db.Create(&entities.Subscription{
		ID:       uuid.New(),
		UserID:   uuid.MustParse(viewer.ID),
		AuthorID: uuid.MustParse(author.ID),
	}).Error)

	detail, err = service.GetUserDetail(context.Background(), author.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsSubscribed)

	// anonymous viewers never see the flag set
	detail, err = service.GetUserDetail(context.Background(), author.ID, "")
	require.NoError(t, err)
	assert.False(t, detail.IsSubscribed)
}

func TestChangePassword(t *testing.T) {
	service, _ := setupService(t)

	registered, err := service.Register(context.Background(), registerRequest("ivan"))
	require.NoError(t, err)

	err = service.ChangePassword(context.Background(), registered.ID, domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	err = service.ChangePassword(context.Background(), registered.ID, domain.ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "new-password",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), domain.LoginRequest{
		Email:    "ivan@example.com",
		Password: "new-password",
	})
	assert.NoError(t, err)

	_, err = service.Login(context.Background(), domain.LoginRequest{
		Email:    "ivan@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	service, _ := setupService(t)
	jwtService := jwt.NewJWTService()

	registered, err := service.Register(context.Background(), registerRequest("ivan"))
	require.NoError(t, err)

	token, err := jwtService.GenerateTokenResetPassword(map[string]any{
		"user_id": registered.ID,
	}, 30*time.Minute)
	require.NoError(t, err)

	err = service.ResetPassword(context.Background(), domain.ResetPasswordRequest{
		Token:       token,
		NewPassword: "reset-password",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), domain.LoginRequest{
		Email:    "ivan@example.com",
		Password: "reset-password",
	})
	assert.NoError(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	service, _ := setupService(t)
	jwtService := jwt.NewJWTService()

	registered, err := service.Register(context.Background(), registerRequest("ivan"))
	require.NoError(t, err)

	token, err := jwtService.GenerateTokenResetPassword(map[string]any{
		"user_id": registered.ID,
	}, -time.Minute)
	require.NoError(t, err)

	err = service.ResetPassword(context.Background(), domain.ResetPasswordRequest{
		Token:       token,
		NewPassword: "reset-password",
	})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	err = service.ResetPassword(context.Background(), domain.ResetPasswordRequest{
		Token:       "not-a-token",
		NewPassword: "reset-password",
	})
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
