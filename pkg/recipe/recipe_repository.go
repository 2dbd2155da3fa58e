package recipe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/domain"
	"github.com/marke1-web/foodgram-project-react/entities"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []IngredientAmount) error
		ReplaceRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []IngredientAmount) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error)
		DeleteRecipe(ctx context.Context, recipe *entities.Recipe) error

		AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)
		AddToCart(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error
		IsInCart(ctx context.Context, userID, recipeID string) (bool, error)

		GetCartIngredients(ctx context.Context, userID string) ([]CartIngredientRow, error)
	}

	// IngredientAmount is one validated ingredient line of a submission.
	IngredientAmount struct {
		IngredientID uuid.UUID
		Amount       int
	}

	// CartIngredientRow is one ungrouped ingredient line pulled from every
	// recipe in a user's shopping cart.
	CartIngredientRow struct {
		Name            string
		MeasurementUnit string
		Amount          int
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipe persists the recipe row together with its complete tag and
// ingredient association sets in one transaction. Either every row exists
// afterwards or none do.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateRecipe
			}
			return err
		}
		return r.createAssociations(tx, recipe, tagIDs, ingredients)
	})
}

// ReplaceRecipe saves the updated recipe row, clears both association sets
// and re-creates them from the submission. Clear-then-recreate, not a diff.
func (r *recipeRepository) ReplaceRecipe(ctx context.Context, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateRecipe
			}
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return r.createAssociations(tx, recipe, tagIDs, ingredients)
	})
}

// createAssociations resolves each referenced catalog entry inside the
// transaction; a missing tag or ingredient rolls the whole write back.
func (r *recipeRepository) createAssociations(tx *gorm.DB, recipe *entities.Recipe, tagIDs []uuid.UUID, ingredients []IngredientAmount) error {
	var tags []entities.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return domain.ErrUnknownTag
	}
	if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
		return err
	}

	ingredientIDs := make([]uuid.UUID, 0, len(ingredients))
	for _, ing := range ingredients {
		ingredientIDs = append(ingredientIDs, ing.IngredientID)
	}
	var count int64
	if err := tx.Model(&entities.Ingredient{}).
		Where("id IN ?", ingredientIDs).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ingredientIDs)) {
		return domain.ErrUnknownIngredient
	}

	recipeIngredients := make([]entities.RecipeIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		recipeIngredients = append(recipeIngredients, entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipe.ID,
			IngredientID: ing.IngredientID,
			Amount:       ing.Amount,
		})
	}
	return tx.Create(&recipeIngredients).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	// Grouping by the primary key collapses recipes matched through several
	// tags into one row; Count then reports the number of groups.
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs).
			Group("recipes.id")
	}
	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if filter.IsFavorited && viewerID != "" {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", viewerID)
	}
	if filter.IsInShoppingCart && viewerID != "" {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", viewerID)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Offset(offset).
		Limit(limit).
		Order("recipes.pub_date desc, recipes.name asc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&entities.ShoppingCart{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	favorite := entities.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyFavorited
		}
		return err
	}
	return nil
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *recipeRepository) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	item := entities.ShoppingCart{
		ID:        uuid.New(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyInCart
		}
		return err
	}
	return nil
}

func (r *recipeRepository) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCart{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *recipeRepository) IsInCart(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetCartIngredients returns one row per ingredient line of every recipe in
// the user's cart, ordered by ingredient name. Summing happens in the service.
func (r *recipeRepository) GetCartIngredients(ctx context.Context, userID string) ([]CartIngredientRow, error) {
	var rows []CartIngredientRow
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeIngredient{}).
		Select("ingredients.name as name, ingredients.measurement_unit as measurement_unit, recipe_ingredients.amount as amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("ingredients.name asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
