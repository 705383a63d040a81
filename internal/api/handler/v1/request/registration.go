package request

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type RegisterRequest struct {
	DeckID uint `json:"deck_id" binding:"required"`
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DeckID, validation.Required, validation.Min(uint(1))),
	)
}
