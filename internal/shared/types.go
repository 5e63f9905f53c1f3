package shared

// Asynq task types
const (
	TypeExpirePendingOrder = "order:expire_pending"
	TypeSweepPendingOrders = "order:sweep_pending"
)

// Asynq queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ExpirePendingOrderPayload: huỷ một đơn online quá hạn thanh toán
type ExpirePendingOrderPayload struct {
	OrderID string `json:"orderId"`
}

// SweepPendingOrdersPayload: quét các đơn Pending Payment cũ hơn TTL
type SweepPendingOrdersPayload struct {
	Limit int `json:"limit"`
}
