package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/entities"
	"github.com/marke1-web/foodgram-project-react/internal/api/handlers"
	"github.com/marke1-web/foodgram-project-react/internal/api/presenters"
	"github.com/marke1-web/foodgram-project-react/internal/api/routes"
	"github.com/marke1-web/foodgram-project-react/internal/middleware"
	"github.com/marke1-web/foodgram-project-react/internal/utils"
	"github.com/marke1-web/foodgram-project-react/pkg/ingredient"
	"github.com/marke1-web/foodgram-project-react/pkg/jwt"
	"github.com/marke1-web/foodgram-project-react/pkg/recipe"
	"github.com/marke1-web/foodgram-project-react/pkg/subscription"
	"github.com/marke1-web/foodgram-project-react/pkg/tag"
	"github.com/marke1-web/foodgram-project-react/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeS3 struct{}

func (fakeS3) UploadFile(fileName string, data []byte, dir string, allowedTypes ...string) (string, error) {
	return dir + "/" + fileName, nil
}

func (fakeS3) DeleteFile(objectKey string) error { return nil }

func (fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

// setupApp wires the full route table against an in-memory database
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	utils.InitValidator()

	jwtService := jwt.NewJWTService()
	userRepository := user.NewUserRepository(db)
	userService := user.NewUserService(userRepository, jwtService)
	tagService := tag.NewTagService(tag.NewTagRepository(db))
	ingredientService := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	recipeService := recipe.NewRecipeService(recipe.NewRecipeRepository(db), userRepository, fakeS3{})
	subscriptionService := subscription.NewSubscriptionService(subscription.NewSubscriptionRepository(db), userRepository)

	app := fiber.New()
	routeConfig := routes.Config{
		App:                 app,
		UserHandler:         handlers.NewUserHandler(userService, utils.Validate),
		TagHandler:          handlers.NewTagHandler(tagService),
		IngredientHandler:   handlers.NewIngredientHandler(ingredientService),
		RecipeHandler:       handlers.NewRecipeHandler(recipeService, utils.Validate),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subscriptionService),
		Middleware:          middleware.NewMiddleware(),
		JWTService:          jwtService,
	}
	routeConfig.Setup()
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeResponse(t *testing.T, res *http.Response) presenters.Response {
	var body presenters.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	res := doJSON(t, app, http.MethodPost, "/api/v1/users/register", "", fiber.Map{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Иван",
		"last_name":  "Иванов",
		"password":   "correct-horse",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = doJSON(t, app, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeResponse(t, res)
	data := body.Data.(map[string]any)
	token, _ := data["auth_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func seedCatalog(t *testing.T, db *gorm.DB) (tagID, ingredientID string) {
	lunch := entities.Tag{ID: uuid.New(), Name: "Обед", Color: "#49B64E", Slug: "lunch"}
	salt := entities.Ingredient{ID: uuid.New(), Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&lunch).Error)
	require.NoError(t, db.Create(&salt).Error)
	return lunch.ID.String(), salt.ID.String()
}

func recipePayload(tagID, ingredientID string) fiber.Map {
	return fiber.Map{
		"tags": []string{tagID},
		"ingredients": []fiber.Map{
			{"id": ingredientID, "amount": 5},
		},
		"name":         "Борщ",
		"text":         "Варить час.",
		"image":        "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		"cooking_time": 60,
	}
}

func TestPing(t *testing.T) {
	app, _ := setupApp(t)

	res := doJSON(t, app, http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := setupApp(t)

	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodPost, "/api/v1/recipes"},
		{http.MethodGet, "/api/v1/recipes/download_shopping_cart"},
		{http.MethodGet, "/api/v1/users/subscriptions"},
	} {
		res := doJSON(t, app, target.method, target.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, target.path)
	}
}

func TestCreateAndReadRecipe(t *testing.T) {
	app, db := setupApp(t)
	token := registerAndLogin(t, app, "author")
	tagID, ingredientID := seedCatalog(t, db)

	res := doJSON(t, app, http.MethodPost, "/api/v1/recipes", token, recipePayload(tagID, ingredientID))
	require.Equal(t, http.StatusCreated, res.StatusCode)

	body := decodeResponse(t, res)
	created := body.Data.(map[string]any)
	recipeID, _ := created["id"].(string)
	require.NotEmpty(t, recipeID)

	// the detail endpoint is readable without a token
	res = doJSON(t, app, http.MethodGet, "/api/v1/recipes/"+recipeID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body = decodeResponse(t, res)
	detail := body.Data.(map[string]any)
	assert.Equal(t, "Борщ", detail["name"])
	assert.Equal(t, false, detail["is_favorited"])
}

func TestCreateRecipeValidationStatus(t *testing.T) {
	app, db := setupApp(t)
	token := registerAndLogin(t, app, "author")
	tagID, ingredientID := seedCatalog(t, db)

	payload := recipePayload(tagID, ingredientID)
	payload["ingredients"] = []fiber.Map{}

	res := doJSON(t, app, http.MethodPost, "/api/v1/recipes", token, payload)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	body := decodeResponse(t, res)
	assert.False(t, body.Status)
	assert.NotEmpty(t, body.Error)
}

func TestFavoriteConflictStatus(t *testing.T) {
	app, db := setupApp(t)
	token := registerAndLogin(t, app, "author")
	tagID, ingredientID := seedCatalog(t, db)

	res := doJSON(t, app, http.MethodPost, "/api/v1/recipes", token, recipePayload(tagID, ingredientID))
	require.Equal(t, http.StatusCreated, res.StatusCode)
	recipeID := decodeResponse(t, res).Data.(map[string]any)["id"].(string)

	res = doJSON(t, app, http.MethodPost, "/api/v1/recipes/"+recipeID+"/favorite", token, nil)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res = doJSON(t, app, http.MethodPost, "/api/v1/recipes/"+recipeID+"/favorite", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = doJSON(t, app, http.MethodDelete, "/api/v1/recipes/"+recipeID+"/favorite", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = doJSON(t, app, http.MethodDelete, "/api/v1/recipes/"+recipeID+"/favorite", token, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUpdateRecipeForbiddenForStranger(t *testing.T) {
	app, db := setupApp(t)
	authorToken := registerAndLogin(t, app, "author")
	strangerToken := registerAndLogin(t, app, "stranger")
	tagID, ingredientID := seedCatalog(t, db)

	res := doJSON(t, app, http.MethodPost, "/api/v1/recipes", authorToken, recipePayload(tagID, ingredientID))
	require.Equal(t, http.StatusCreated, res.StatusCode)
	recipeID := decodeResponse(t, res).Data.(map[string]any)["id"].(string)

	payload := recipePayload(tagID, ingredientID)
	delete(payload, "image")

	res = doJSON(t, app, http.MethodPatch, "/api/v1/recipes/"+recipeID, strangerToken, payload)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestDownloadShoppingCartAttachment(t *testing.T) {
	app, db := setupApp(t)
	token := registerAndLogin(t, app, "author")
	tagID, ingredientID := seedCatalog(t, db)

	res := doJSON(t, app, http.MethodPost, "/api/v1/recipes", token, recipePayload(tagID, ingredientID))
	require.Equal(t, http.StatusCreated, res.StatusCode)
	recipeID := decodeResponse(t, res).Data.(map[string]any)["id"].(string)

	res = doJSON(t, app, http.MethodPost, "/api/v1/recipes/"+recipeID+"/shopping_cart", token, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = doJSON(t, app, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", res.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="Список_покупок.txt"`, res.Header.Get(fiber.HeaderContentDisposition))

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "Список продуктов: \nSalt (g) - 5 \n", string(raw))
}

func TestSubscribeFlow(t *testing.T) {
	app, db := setupApp(t)
	readerToken := registerAndLogin(t, app, "reader")
	registerAndLogin(t, app, "author")

	var author entities.User
	require.NoError(t, db.Where("username = ?", "author").First(&author).Error)

	res := doJSON(t, app, http.MethodPost, "/api/v1/users/"+author.ID.String()+"/subscribe", readerToken, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = doJSON(t, app, http.MethodGet, "/api/v1/users/subscriptions", readerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// the author detail now carries is_subscribed for the reader
	res = doJSON(t, app, http.MethodGet, "/api/v1/users/"+author.ID.String(), readerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	detail := decodeResponse(t, res).Data.(map[string]any)
	assert.Equal(t, true, detail["is_subscribed"])
}
