package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tcgarena/tournament-api/internal/api/handler/v1/request"
	"github.com/tcgarena/tournament-api/internal/api/handler/v1/response"
	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, caller domain.User, tournamentID, deckID uint) (domain.Registration, error)
	Unregister(ctx context.Context, caller domain.User, tournamentID uint) error
	UnregisterUser(ctx context.Context, caller domain.User, tournamentID, userID uint) error
	ListByUser(ctx context.Context, caller domain.User, userID uint) ([]domain.Registration, error)
	ListByTournament(ctx context.Context, caller domain.User, tournamentID uint) ([]domain.Registration, error)
	ListAll(ctx context.Context, caller domain.User) ([]domain.Registration, error)
}

// tournamentGetter is the slice of the lifecycle service the registration
// handler needs for ownership checks.
type tournamentGetter interface {
	GetTournament(ctx context.Context, id uint) (domain.Tournament, error)
}

type RegistrationHandler struct {
	svc  RegistrationService
	tSvc tournamentGetter
	uSvc UserService
}

func NewRegistrationHandler(svc RegistrationService, tSvc tournamentGetter, uSvc UserService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:  svc,
		tSvc: tSvc,
		uSvc: uSvc,
	}
}

// HandleRegister godoc
// @Summary      Register a deck for a tournament
// @Description  Admission requires an APPROVED tournament with capacity left, an open deadline, and a deck of the tournament's game type. The first violated rule is reported.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        tournamentID  path      int                      true  "Tournament ID"
// @Param        input         body      request.RegisterRequest  true  "Deck to play"
// @Success      201    {object}  domain.Registration
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Router       /tournaments/{tournamentID}/registrations [post]
// @Security BearerAuth
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	var input request.RegisterRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Register(ctx.Request.Context(), user, tournamentID, input.DeckID)
	if err != nil {
		renderRegistrationErr(ctx, err, tournamentID)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUnregister godoc
// @Summary      Withdraw the caller's own registration
// @Description  Refused once the tournament has started.
// @Tags         registrations
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      204
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Router       /tournaments/{tournamentID}/registrations [delete]
// @Security BearerAuth
func (h *RegistrationHandler) HandleUnregister(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	if err := h.svc.Unregister(ctx.Request.Context(), user, tournamentID); err != nil {
		renderRegistrationErr(ctx, err, tournamentID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleUnregisterUser godoc
// @Summary      Remove a user's registration
// @Description  Only the tournament's organizer or an admin may remove other players. The removed user is notified.
// @Tags         registrations
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Param        userID        path  int  true  "User ID"
// @Success      204
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Router       /tournaments/{tournamentID}/registrations/{userID} [delete]
// @Security BearerAuth
func (h *RegistrationHandler) HandleUnregisterUser(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	userID, ok := parseIDParam(ctx, "userID")
	if !ok {
		return
	}

	tournament, err := h.tSvc.GetTournament(ctx.Request.Context(), tournamentID)
	if err != nil {
		renderRegistrationErr(ctx, err, tournamentID)
		return
	}

	if !canManageTournament(user, tournament) {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v does not manage tournament %v", user.ID, tournamentID)))
		return
	}

	if err := h.svc.UnregisterUser(ctx.Request.Context(), user, tournamentID, userID); err != nil {
		renderRegistrationErr(ctx, err, tournamentID)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListMyRegistrations godoc
// @Summary      List the caller's registrations
// @Tags         registrations
// @Produce      json
// @Success      200    {array}   domain.Registration
// @Failure      401    {object}  response.Err
// @Router       /users/me/registrations [get]
// @Security BearerAuth
func (h *RegistrationHandler) HandleListMyRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	registrations, err := h.svc.ListByUser(ctx.Request.Context(), user, user.ID)
	if err != nil {
		renderRegistrationErr(ctx, err, 0)
		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

// HandleListTournamentRegistrations godoc
// @Summary      List a tournament's registrations
// @Description  Only the tournament's organizer or an admin.
// @Tags         registrations
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      200    {array}   domain.Registration
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Router       /tournaments/{tournamentID}/registrations [get]
// @Security BearerAuth
func (h *RegistrationHandler) HandleListTournamentRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	tournament, err := h.tSvc.GetTournament(ctx.Request.Context(), tournamentID)
	if err != nil {
		renderRegistrationErr(ctx, err, tournamentID)
		return
	}

	if !canManageTournament(user, tournament) {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v does not manage tournament %v", user.ID, tournamentID)))
		return
	}

	registrations, err := h.svc.ListByTournament(ctx.Request.Context(), user, tournamentID)
	if err != nil {
		renderRegistrationErr(ctx, err, tournamentID)
		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

// HandleListAllRegistrations godoc
// @Summary      List every registration
// @Description  Admin only.
// @Tags         registrations
// @Produce      json
// @Success      200    {array}   domain.Registration
// @Failure      403    {object}  response.Err
// @Router       /registrations [get]
// @Security BearerAuth
func (h *RegistrationHandler) HandleListAllRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if !user.IsAdmin() {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))
		return
	}

	registrations, err := h.svc.ListAll(ctx.Request.Context(), user)
	if err != nil {
		renderRegistrationErr(ctx, err, 0)
		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

// renderRegistrationErr maps admission service errors to HTTP responses.
// State conflicts all map to 409 with the first violated rule's message.
func renderRegistrationErr(ctx *gin.Context, err error, tournamentID uint) {
	switch {
	case errors.Is(err, service.ErrCallerRequired):
		response.RenderErr(ctx, response.ErrUnauthorized(service.ErrCallerRequired))
	case errors.Is(err, service.ErrTournamentNotFound):
		response.RenderErr(ctx, response.ErrNotFound("tournament", "ID", tournamentID))
	case errors.Is(err, service.ErrDeckNotFound):
		response.RenderErr(ctx, response.ErrNotFound("deck", "tournament ID", tournamentID))
	case errors.Is(err, service.ErrRegistrationClosed),
		errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrCapacityReached),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrDeckMismatch),
		errors.Is(err, service.ErrDeckNotOwned),
		errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, service.ErrTournamentStarted):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
