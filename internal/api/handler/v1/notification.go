package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tcgarena/tournament-api/internal/api/handler/v1/response"
	"github.com/tcgarena/tournament-api/internal/domain"
)

type NotificationSink interface {
	DrainPendingForUser(userID uint) []domain.Notification
}

type NotificationHandler struct {
	sink NotificationSink
	uSvc UserService
}

func NewNotificationHandler(sink NotificationSink, uSvc UserService) *NotificationHandler {
	return &NotificationHandler{
		sink: sink,
		uSvc: uSvc,
	}
}

// HandleGetMyNotifications godoc
// @Summary      Drain the caller's pending notifications
// @Description  Returns queued notifications in delivery order and clears the queue.
// @Tags         notifications
// @Produce      json
// @Success      200    {array}   domain.Notification
// @Failure      401    {object}  response.Err
// @Router       /users/me/notifications [get]
// @Security BearerAuth
func (h *NotificationHandler) HandleGetMyNotifications(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	notifications := h.sink.DrainPendingForUser(user.ID)
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	ctx.JSON(http.StatusOK, notifications)
}
