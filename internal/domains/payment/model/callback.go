package model

import (
	"github.com/google/uuid"

	ordermodel "shop-backend/internal/domains/order/model"
)

// =====================================================
// CALLBACK
// =====================================================

// Result là kết quả gateway báo về sau khi đã verify
type Result string

const (
	ResultPaid    Result = "paid"
	ResultFailed  Result = "failed"
	ResultPending Result = "pending"
)

// Callback is a verified gateway notification. Only adapters build it,
// after the signature (VNPay) or the server-side retrieval (Stripe) checks out.
type Callback struct {
	Gateway       ordermodel.PaymentMethod
	OrderRef      string
	Result        Result
	Code          string
	Message       string // mô tả code của gateway, có thể rỗng
	TransactionNo string
	Raw           map[string]string
}

// =====================================================
// OUTCOME
// =====================================================

type OutcomeKind string

const (
	OutcomePaid             OutcomeKind = "paid"
	OutcomeAlreadyPaid      OutcomeKind = "already_paid"
	OutcomeCancelled        OutcomeKind = "cancelled"
	OutcomePending          OutcomeKind = "pending"
	OutcomeInvalidSignature OutcomeKind = "invalid_signature"
	OutcomeOrderNotFound    OutcomeKind = "order_not_found"
	OutcomeProcessingFailed OutcomeKind = "processing_failed"
)

// Outcome is what Settle decided; the HTTP layer maps it to a redirect or a JSON body.
type Outcome struct {
	Kind    OutcomeKind
	OrderID uuid.UUID
	Code    string
}

func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomePaid || o.Kind == OutcomeAlreadyPaid
}
