package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/marke1-web/foodgram-project-react/domain"
)

// statusForError picks the HTTP status for a domain error; everything not
// recognized is treated as a bad request.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrFavoriteNotFound),
		errors.Is(err, domain.ErrCartItemNotFound),
		errors.Is(err, domain.ErrSubscriptionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotRecipeAuthor):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusBadRequest
	}
}
