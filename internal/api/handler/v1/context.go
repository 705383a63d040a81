package v1

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tcgarena/tournament-api/internal/api/handler/v1/response"
	"github.com/tcgarena/tournament-api/internal/api/middleware"
	"github.com/tcgarena/tournament-api/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// getUserFromContext resolves the authenticated caller placed in the context
// by the JWT middleware into a full user with role.
func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	rawID, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return domain.User{}, response.ErrUnauthorized(errors.New("not authenticated"))
	}

	userID, ok := rawID.(uint)
	if !ok || userID == 0 {
		return domain.User{}, response.ErrUnauthorized(errors.New("not authenticated"))
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		return domain.User{}, response.ErrUnauthorized(errors.New("unknown user"))
	}

	return user, nil
}
