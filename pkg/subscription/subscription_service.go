package subscription

import (
	"context"

	"github.com/google/uuid"
	"github.com/marke1-web/foodgram-project-react/domain"
	"github.com/marke1-web/foodgram-project-react/entities"
	"github.com/marke1-web/foodgram-project-react/pkg/user"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, userID, authorID string) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         user.UserRepository
	}
)

func NewSubscriptionService(subscriptionRepository SubscriptionRepository, userRepository user.UserRepository) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, authorID string) (domain.SubscriptionResponse, error) {
	if userID == authorID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}

	if err := s.subscriptionRepository.AddSubscription(ctx, userUUID, author.ID); err != nil {
		return domain.SubscriptionResponse{}, err
	}

	return s.buildSubscriptionResponse(ctx, author, 0)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		return err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}

	return s.subscriptionRepository.RemoveSubscription(ctx, userUUID, author.ID)
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	authors, count, err := s.subscriptionRepository.GetSubscribedAuthors(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		res, err := s.buildSubscriptionResponse(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, res)
	}
	return responses, count, nil
}

func (s *subscriptionService) buildSubscriptionResponse(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, recipesCount, err := s.subscriptionRepository.GetRecipesByAuthor(ctx, author.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	res := domain.SubscriptionResponse{
		UserResponse: domain.UserResponse{
			ID:           author.ID.String(),
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: true,
		},
		Recipes:      make([]domain.RecipeShortResponse, 0, len(recipes)),
		RecipesCount: recipesCount,
	}
	for _, recipe := range recipes {
		res.Recipes = append(res.Recipes, domain.RecipeShortResponse{
			ID:          recipe.ID.String(),
			Name:        recipe.Name,
			Image:       recipe.ImageURL,
			CookingTime: recipe.CookingTime,
		})
	}
	return res, nil
}
