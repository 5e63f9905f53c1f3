package model

import (
	"time"

	"github.com/google/uuid"
)

// CallbackLog là một dòng audit trong payment_callback_logs.
// Ghi cho mọi callback, kể cả chữ ký sai.
type CallbackLog struct {
	ID             uuid.UUID         `json:"id"`
	Gateway        string            `json:"gateway"`
	OrderRef       string            `json:"orderRef"`
	Params         map[string]string `json:"params"`
	SignatureValid bool              `json:"signatureValid"`
	Outcome        OutcomeKind       `json:"outcome"`
	ReceivedAt     time.Time         `json:"receivedAt"`
}
