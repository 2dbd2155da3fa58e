package recipe

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/domain"
	"github.com/marke1-web/foodgram-project-react/entities"
	"github.com/marke1-web/foodgram-project-react/internal/utils/storage"
	"github.com/marke1-web/foodgram-project-react/pkg/user"
)

const shoppingListHeader = "Список продуктов: "

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)

		AddFavorite(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error)
		RemoveFavorite(ctx context.Context, recipeID string, userID string) error
		AddToCart(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error)
		RemoveFromCart(ctx context.Context, recipeID string, userID string) error

		DownloadShoppingCart(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
		userRepository   user.UserRepository
		s3               storage.AwsS3
	}
)

func NewRecipeService(recipeRepository RecipeRepository, userRepository user.UserRepository, s3 storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
		userRepository:   userRepository,
		s3:               s3,
	}
}

// validateComposition applies the submission rules in order, first failure
// wins. Catalog membership of tags and ingredients is checked later, inside
// the write transaction.
func validateComposition(tags []string, ingredients []domain.RecipeIngredientRequest, name, text string, cookingTime int) ([]IngredientAmount, error) {
	switch {
	case len(tags) == 0:
		return nil, domain.MissingFieldError("tags")
	case len(ingredients) == 0:
		return nil, domain.MissingFieldError("ingredients")
	case name == "":
		return nil, domain.MissingFieldError("name")
	case text == "":
		return nil, domain.MissingFieldError("text")
	case cookingTime < 1:
		return nil, domain.MissingFieldError("cooking_time")
	}

	for _, ing := range ingredients {
		if ing.ID == "" || ing.Amount == nil {
			return nil, domain.ErrIncompleteIngredient
		}
	}
	for _, ing := range ingredients {
		if *ing.Amount < 1 {
			return nil, domain.ErrInvalidAmount
		}
	}

	seen := make(map[string]struct{}, len(ingredients))
	validated := make([]IngredientAmount, 0, len(ingredients))
	for _, ing := range ingredients {
		if _, ok := seen[ing.ID]; ok {
			return nil, domain.ErrDuplicateIngredient
		}
		seen[ing.ID] = struct{}{}

		ingredientID, err := uuid.Parse(ing.ID)
		if err != nil {
			return nil, domain.ErrUnknownIngredient
		}
		validated = append(validated, IngredientAmount{
			IngredientID: ingredientID,
			Amount:       *ing.Amount,
		})
	}
	return validated, nil
}

func parseTagIDs(tags []string) ([]uuid.UUID, error) {
	tagIDs := make([]uuid.UUID, 0, len(tags))
	for _, tag := range tags {
		tagID, err := uuid.Parse(tag)
		if err != nil {
			return nil, domain.ErrUnknownTag
		}
		tagIDs = append(tagIDs, tagID)
	}
	return tagIDs, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	validated, err := validateComposition(req.Tags, req.Ingredients, req.Name, req.Text, req.CookingTime)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if req.Image == "" {
		return domain.RecipeResponse{}, domain.MissingFieldError("image")
	}
	tagIDs, err := parseTagIDs(req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	authorID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	imageURL, err := s.uploadImage(req.Image, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		PubDate:     time.Now(),
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, tagIDs, validated); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), userID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	validated, err := validateComposition(req.Tags, req.Ingredients, req.Name, req.Text, req.CookingTime)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	tagIDs, err := parseTagIDs(req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if recipe.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime
	if req.Image != "" {
		imageURL, err := s.uploadImage(req.Image, userID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
	}

	// Detach loaded associations so Save only touches the recipe row; the
	// repository replaces the sets itself.
	recipe.Author = nil
	recipe.Tags = nil
	recipe.Ingredients = nil

	if err := s.recipeRepository.ReplaceRecipe(ctx, recipe, tagIDs, validated); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID.String() != userID {
		return domain.ErrNotRecipeAuthor
	}
	return s.recipeRepository.DeleteRecipe(ctx, recipe)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res, err := s.buildRecipeResponse(ctx, recipe, viewerID)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, res)
	}
	return responses, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.buildRecipeResponse(ctx, recipe, viewerID)
}

func (s *recipeService) buildRecipeResponse(ctx context.Context, recipe *entities.Recipe, viewerID string) (domain.RecipeResponse, error) {
	res := domain.RecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		PubDate:     recipe.PubDate,
		Tags:        make([]domain.TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
	}

	for _, tag := range recipe.Tags {
		res.Tags = append(res.Tags, domain.TagResponse{
			ID:    tag.ID.String(),
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}
	for _, ri := range recipe.Ingredients {
		line := domain.RecipeIngredientResponse{
			ID:     ri.IngredientID.String(),
			Amount: ri.Amount,
		}
		if ri.Ingredient != nil {
			line.Name = ri.Ingredient.Name
			line.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		res.Ingredients = append(res.Ingredients, line)
	}

	if recipe.Author != nil {
		res.Author = domain.UserResponse{
			ID:        recipe.Author.ID.String(),
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
		}
	}

	if viewerID != "" {
		isFavorited, err := s.recipeRepository.IsFavorited(ctx, viewerID, res.ID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		res.IsFavorited = isFavorited

		isInCart, err := s.recipeRepository.IsInCart(ctx, viewerID, res.ID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		res.IsInShoppingCart = isInCart

		if recipe.Author != nil {
			isSubscribed, err := s.userRepository.IsSubscribed(ctx, viewerID, res.Author.ID)
			if err != nil {
				return domain.RecipeResponse{}, err
			}
			res.Author.IsSubscribed = isSubscribed
		}
	}

	return res, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error) {
	recipe, userUUID, err := s.resolveToggle(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if err := s.recipeRepository.AddFavorite(ctx, userUUID, recipe.ID); err != nil {
		return domain.RecipeShortResponse{}, err
	}
	return shortResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID string, userID string) error {
	recipe, userUUID, err := s.resolveToggle(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.recipeRepository.RemoveFavorite(ctx, userUUID, recipe.ID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID string, userID string) (domain.RecipeShortResponse, error) {
	recipe, userUUID, err := s.resolveToggle(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if err := s.recipeRepository.AddToCart(ctx, userUUID, recipe.ID); err != nil {
		return domain.RecipeShortResponse{}, err
	}
	return shortResponse(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID string, userID string) error {
	recipe, userUUID, err := s.resolveToggle(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.recipeRepository.RemoveFromCart(ctx, userUUID, recipe.ID)
}

func (s *recipeService) resolveToggle(ctx context.Context, recipeID string, userID string) (*entities.Recipe, uuid.UUID, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return recipe, userUUID, nil
}

func shortResponse(recipe *entities.Recipe) domain.RecipeShortResponse {
	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

// DownloadShoppingCart renders the aggregated ingredient list of every recipe
// in the user's cart. Rows are grouped by (name, measurement unit) with
// amounts summed across recipes; an empty cart yields only the header.
func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID string) (string, error) {
	rows, err := s.recipeRepository.GetCartIngredients(ctx, userID)
	if err != nil {
		return "", err
	}

	totals := make(map[string]int, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		key := fmt.Sprintf("%s (%s)", row.Name, row.MeasurementUnit)
		if _, ok := totals[key]; !ok {
			order = append(order, key)
		}
		totals[key] += row.Amount
	}

	var b strings.Builder
	b.WriteString(shoppingListHeader + "\n")
	for _, key := range order {
		b.WriteString(fmt.Sprintf("%s - %d \n", key, totals[key]))
	}
	return b.String(), nil
}

// uploadImage decodes a base64 data URI ("data:image/png;base64,...") and
// stores it, returning the public URL.
func (s *recipeService) uploadImage(dataURI string, userID string) (string, error) {
	meta, payload, found := strings.Cut(dataURI, ";base64,")
	if !found || !strings.HasPrefix(meta, "data:image/") {
		return "", domain.ErrInvalidImage
	}
	ext := "." + strings.TrimPrefix(meta, "data:image/")
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", domain.ErrInvalidImage
	}

	fileName := fmt.Sprintf("%s-%s%s", userID, uuid.New().String(), ext)
	objectKey, err := s.s3.UploadFile(fileName, data, "recipes", storage.AllowImage...)
	if err != nil {
		return "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}
