package request

import (
	"errors"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tcgarena/tournament-api/internal/domain"
)

const dateLayout = "2006-01-02"

// Names must contain at least one letter, so a string of punctuation or
// digits alone is refused. regexp2 is needed for the lookahead.
var namePattern = regexp2.MustCompile(`^(?=.*\p{L})[\p{L}\p{N} '&:.!-]+$`, regexp2.None)

var errInvalidName = errors.New("name must contain at least one letter and only letters, digits, spaces or basic punctuation")

type CreateTournamentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity" binding:"required"`
	Deadline    string `json:"deadline" binding:"required" format:"YYYY-MM-DD"`
	StartDate   string `json:"start_date" binding:"required" format:"YYYY-MM-DD"`
	GameType    string `json:"game_type" binding:"required"`
}

func (req *CreateTournamentRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(2)),
		validation.Field(&req.Deadline, validation.Required, validation.Date(dateLayout)),
		validation.Field(&req.StartDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&req.GameType, validation.Required,
			validation.In(string(domain.GameMagic), string(domain.GamePokemon), string(domain.GameYugioh))),
	)
	if err != nil {
		return err
	}

	ok, err := namePattern.MatchString(req.Name)
	if err != nil || !ok {
		return errInvalidName
	}

	return nil
}

// ToDomain converts the validated request into a domain tournament.
func (req *CreateTournamentRequest) ToDomain() (domain.Tournament, error) {
	deadline, err := time.Parse(dateLayout, req.Deadline)
	if err != nil {
		return domain.Tournament{}, err
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return domain.Tournament{}, err
	}

	return domain.Tournament{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Deadline:    deadline,
		StartDate:   startDate,
		GameType:    domain.GameType(req.GameType),
	}, nil
}

type UpdateTournamentRequest struct {
	CreateTournamentRequest
}
