package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessAddFavorite     = "recipe added to favorites"
	MessageSuccessRemoveFavorite  = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"
	MessageSuccessDownloadCart    = "success download shopping list"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedAddFavorite     = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite  = "failed to remove recipe from favorites"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"
	MessageFailedDownloadCart    = "failed to download shopping list"

	ErrMissingField         = errors.New("required field is not filled")
	ErrIncompleteIngredient = errors.New("ingredient entry must contain both id and amount")
	ErrInvalidAmount        = errors.New("ingredient amount must be at least 1")
	ErrDuplicateIngredient  = errors.New("duplicate ingredients are not allowed")
	ErrUnknownIngredient    = errors.New("ingredient does not exist in the catalog")
	ErrUnknownTag           = errors.New("tag does not exist in the catalog")
	ErrDuplicateRecipe      = errors.New("recipe with this name already exists for this author")
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrNotRecipeAuthor      = errors.New("only the author can modify this recipe")
	ErrInvalidImage         = errors.New("image must be a base64 data URI")
	ErrAlreadyFavorited     = errors.New("recipe is already in favorites")
	ErrFavoriteNotFound     = errors.New("recipe is not in favorites")
	ErrAlreadyInCart        = errors.New("recipe is already in the shopping cart")
	ErrCartItemNotFound     = errors.New("recipe is not in the shopping cart")
)

// MissingFieldError wraps ErrMissingField with the offending field name so
// callers can still match it with errors.Is.
func MissingFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

type (
	RecipeIngredientRequest struct {
		ID     string `json:"id"`
		Amount *int   `json:"amount"`
	}

	CreateRecipeRequest struct {
		Tags        []string                  `json:"tags"`
		Ingredients []RecipeIngredientRequest `json:"ingredients"`
		Name        string                    `json:"name"`
		Text        string                    `json:"text"`
		Image       string                    `json:"image"`
		CookingTime int                       `json:"cooking_time"`
	}

	// UpdateRecipeRequest carries the complete desired association sets;
	// the stored sets are replaced wholesale, never merged.
	UpdateRecipeRequest struct {
		Tags        []string                  `json:"tags"`
		Ingredients []RecipeIngredientRequest `json:"ingredients"`
		Name        string                    `json:"name"`
		Text        string                    `json:"text"`
		Image       string                    `json:"image,omitempty"`
		CookingTime int                       `json:"cooking_time"`
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID                string                     `json:"id"`
		Tags              []TagResponse              `json:"tags"`
		Author            UserResponse               `json:"author"`
		Ingredients       []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited       bool                       `json:"is_favorited"`
		IsInShoppingCart  bool                       `json:"is_in_shopping_cart"`
		Name              string                     `json:"name"`
		Image             string                     `json:"image"`
		Text              string                     `json:"text"`
		CookingTime       int                        `json:"cooking_time"`
		PubDate           time.Time                  `json:"pub_date"`
	}

	// RecipeShortResponse is the compact payload used inside favorite, cart
	// and subscription responses.
	RecipeShortResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeFilter struct {
		TagSlugs         []string
		AuthorID         string
		IsFavorited      bool
		IsInShoppingCart bool
	}
)
