package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// VerifyStripeRequest: POST /order/verify-stripe
type VerifyStripeRequest struct {
	SessionID string `json:"sessionId" form:"session_id"`
}

func (req VerifyStripeRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.SessionID, validation.Required, validation.Length(1, 255)),
	)
}

type VerifyStripeResponse struct {
	OrderID string `json:"orderId,omitempty"`
	IsPaid  bool   `json:"isPaid"`
	Status  string `json:"status"`
}
