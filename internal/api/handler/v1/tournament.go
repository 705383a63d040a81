package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tcgarena/tournament-api/internal/api/handler/v1/request"
	"github.com/tcgarena/tournament-api/internal/api/handler/v1/response"
	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/service"
)

type TournamentService interface {
	Create(ctx context.Context, caller domain.User, tournament domain.Tournament) (domain.Tournament, error)
	Update(ctx context.Context, caller domain.User, tournament domain.Tournament) (domain.Tournament, error)
	Delete(ctx context.Context, caller domain.User, id uint) error
	Approve(ctx context.Context, caller domain.User, id uint) (domain.Tournament, error)
	Reject(ctx context.Context, caller domain.User, id uint) (domain.Tournament, error)
	AdvanceAll(ctx context.Context) (int, error)
	GetTournament(ctx context.Context, id uint) (domain.Tournament, error)
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Tournament, error)
	ListByStatus(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error)
	ListByGameType(ctx context.Context, gameType domain.GameType) ([]domain.Tournament, error)
}

type TournamentHandler struct {
	svc  TournamentService
	uSvc UserService
}

func NewTournamentHandler(svc TournamentService, uSvc UserService) *TournamentHandler {
	return &TournamentHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateTournament godoc
// @Summary      Propose a new tournament
// @Description  Creates a tournament in PENDING status. Requires the organizer or admin role.
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateTournamentRequest  true  "Tournament details"
// @Success      201    {object}  domain.Tournament
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /tournaments [post]
// @Security BearerAuth
func (h *TournamentHandler) HandleCreateTournament(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if !user.IsOrganizer() && !user.IsAdmin() {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an organizer", user.ID)))
		return
	}

	var input request.CreateTournamentRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tournament, err := input.ToDomain()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Create(ctx.Request.Context(), user, tournament)
	if err != nil {
		renderTournamentErr(ctx, fmt.Errorf("v1.HandleCreateTournament -> h.svc.Create -> %w", err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateTournament godoc
// @Summary      Update a pending tournament
// @Description  Re-validates all fields. Only the owning organizer or an admin may update, and only while the stored tournament is still PENDING.
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        tournamentID  path      int                              true  "Tournament ID"
// @Param        input         body      request.UpdateTournamentRequest  true  "Tournament details"
// @Success      200    {object}  domain.Tournament
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Router       /tournaments/{tournamentID} [put]
// @Security BearerAuth
func (h *TournamentHandler) HandleUpdateTournament(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	stored, err := h.svc.GetTournament(ctx.Request.Context(), tournamentID)
	if err != nil {
		renderTournamentErr(ctx, err, withID(tournamentID))
		return
	}

	if !canManageTournament(user, stored) {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v does not own tournament %v", user.ID, tournamentID)))
		return
	}

	var input request.UpdateTournamentRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tournament, err := input.ToDomain()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	tournament.ID = tournamentID

	updated, err := h.svc.Update(ctx.Request.Context(), user, tournament)
	if err != nil {
		renderTournamentErr(ctx, err, withID(tournamentID))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteTournament godoc
// @Summary      Delete a tournament and its registrations
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      204
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Router       /tournaments/{tournamentID} [delete]
// @Security BearerAuth
func (h *TournamentHandler) HandleDeleteTournament(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	stored, err := h.svc.GetTournament(ctx.Request.Context(), tournamentID)
	if err != nil {
		renderTournamentErr(ctx, err, withID(tournamentID))
		return
	}

	if !canManageTournament(user, stored) {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v does not own tournament %v", user.ID, tournamentID)))
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), user, tournamentID); err != nil {
		renderTournamentErr(ctx, err, withID(tournamentID))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleApproveTournament godoc
// @Summary      Approve a pending tournament
// @Description  Admin only. Every current registrant is notified of the new status.
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      200    {object}  domain.Tournament
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Router       /tournaments/{tournamentID}/approve [post]
// @Security BearerAuth
func (h *TournamentHandler) HandleApproveTournament(ctx *gin.Context) {
	h.decide(ctx, h.svc.Approve)
}

// HandleRejectTournament godoc
// @Summary      Reject a pending tournament
// @Description  Admin only. Rejection notifies registrants the same way approval does.
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      200    {object}  domain.Tournament
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Router       /tournaments/{tournamentID}/reject [post]
// @Security BearerAuth
func (h *TournamentHandler) HandleRejectTournament(ctx *gin.Context) {
	h.decide(ctx, h.svc.Reject)
}

func (h *TournamentHandler) decide(ctx *gin.Context, op func(context.Context, domain.User, uint) (domain.Tournament, error)) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if !user.IsAdmin() {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	decided, err := op(ctx.Request.Context(), user, tournamentID)
	if err != nil {
		renderTournamentErr(ctx, err, withID(tournamentID))
		return
	}

	ctx.JSON(http.StatusOK, decided)
}

// HandleSweep godoc
// @Summary      Run one status sweep on demand
// @Description  Admin only. Advances every tournament through the automatic transition table.
// @Tags         tournaments
// @Produce      json
// @Success      200 {object} map[string]int
// @Failure      403 {object} response.Err
// @Router       /tournaments/sweep [post]
// @Security BearerAuth
func (h *TournamentHandler) HandleSweep(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if !user.IsAdmin() {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID)))
		return
	}

	advanced, err := h.svc.AdvanceAll(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.HandleSweep -> h.svc.AdvanceAll -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"advanced": advanced})
}

// HandleGetTournament godoc
// @Summary      Get one tournament
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      200    {object}  domain.Tournament
// @Failure      404    {object}  response.Err
// @Router       /tournaments/{tournamentID} [get]
// @Security BearerAuth
func (h *TournamentHandler) HandleGetTournament(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tournamentID, ok := parseIDParam(ctx, "tournamentID")
	if !ok {
		return
	}

	tournament, err := h.svc.GetTournament(ctx.Request.Context(), tournamentID)
	if err != nil {
		renderTournamentErr(ctx, err, withID(tournamentID))
		return
	}

	ctx.JSON(http.StatusOK, tournament)
}

// HandleListTournaments godoc
// @Summary      List tournaments
// @Description  Optional filters: status, game_type, or mine=true for the caller's own tournaments.
// @Tags         tournaments
// @Produce      json
// @Param        status     query  string  false  "Filter by status"
// @Param        game_type  query  string  false  "Filter by game type"
// @Param        mine       query  bool    false  "Only tournaments organized by the caller"
// @Success      200    {array}   domain.Tournament
// @Failure      401    {object}  response.Err
// @Router       /tournaments [get]
// @Security BearerAuth
func (h *TournamentHandler) HandleListTournaments(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var (
		tournaments []domain.Tournament
		err         error
	)

	switch {
	case ctx.Query("mine") == "true":
		tournaments, err = h.svc.ListByOrganizer(ctx.Request.Context(), user.ID)
	case ctx.Query("status") != "":
		tournaments, err = h.svc.ListByStatus(ctx.Request.Context(), domain.TournamentStatus(ctx.Query("status")))
	case ctx.Query("game_type") != "":
		tournaments, err = h.svc.ListByGameType(ctx.Request.Context(), domain.GameType(ctx.Query("game_type")))
	default:
		tournaments, err = h.svc.ListTournaments(ctx.Request.Context())
	}
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.HandleListTournaments -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, tournaments)
}

func canManageTournament(user domain.User, t domain.Tournament) bool {
	return user.IsAdmin() || t.OrganizerID == user.ID
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %v", name)))
		return 0, false
	}

	return uint(id), true
}

type errOption func(*errContext)

type errContext struct {
	tournamentID uint
}

func withID(id uint) errOption {
	return func(ec *errContext) {
		ec.tournamentID = id
	}
}

// renderTournamentErr maps lifecycle service errors to HTTP responses:
// validation failures to 400, missing records to 404, state conflicts to 409.
func renderTournamentErr(ctx *gin.Context, err error, opts ...errOption) {
	ec := &errContext{}
	for _, opt := range opts {
		opt(ec)
	}

	var validationErrs validation.Errors

	switch {
	case errors.Is(err, service.ErrCallerRequired):
		response.RenderErr(ctx, response.ErrUnauthorized(service.ErrCallerRequired))
	case errors.Is(err, service.ErrTournamentNotFound):
		response.RenderErr(ctx, response.ErrNotFound("tournament", "ID", ec.tournamentID))
	case errors.Is(err, service.ErrTournamentNotPending):
		response.RenderErr(ctx, response.ErrConflict(service.ErrTournamentNotPending))
	case errors.As(err, &validationErrs):
		response.RenderErr(ctx, response.ErrBadRequest(validationErrs))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
