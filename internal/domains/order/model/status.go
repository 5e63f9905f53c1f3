package model

// Status là trạng thái đơn hàng, lưu nguyên chuỗi hiển thị trong DB.
type Status string

const (
	StatusOrderPlaced    Status = "Order Placed"
	StatusPendingPayment Status = "Pending Payment"
	StatusPaid           Status = "Paid"
	StatusProcessing     Status = "Processing"
	StatusShipped        Status = "Shipped"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

var allStatuses = []Status{
	StatusOrderPlaced,
	StatusPendingPayment,
	StatusPaid,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// ParseStatus rejects anything that is not one of the seven status strings.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", NewOrderError(ErrCodeInvalidStatus, "Trạng thái không hợp lệ", ErrInvalidStatus)
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// adminTargets: trạng thái admin được phép set tay. Paid chỉ do settlement set.
var adminTargets = map[Status]bool{
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

// CheckAdminTransition validates an admin status change.
// Cancelled -> Cancelled is allowed and is a no-op for callers.
func CheckAdminTransition(from, to Status) error {
	if from == StatusCancelled && to == StatusCancelled {
		return nil
	}
	if from.IsTerminal() {
		return NewTransitionError(from, to)
	}
	if !adminTargets[to] {
		return NewSystemStatusError(from, to)
	}
	// Đơn online chưa thanh toán chỉ được huỷ
	if from == StatusPendingPayment && to != StatusCancelled {
		return NewTransitionError(from, to)
	}
	return nil
}

// CheckAdminDelete: đơn đang chờ gateway không được xoá từ admin
func CheckAdminDelete(status Status) error {
	if status == StatusPendingPayment {
		return NewOrderError(ErrCodeOrderInFlight, "Đơn hàng đang chờ thanh toán, không thể xoá", ErrOrderInFlight)
	}
	return nil
}

// RestoresOnCancel reports whether moving from -> Cancelled gives stock back.
// The caller still checks Order.StockCommitted.
func RestoresOnCancel(from Status) bool {
	return from != StatusCancelled
}

// RestoresOnDelete: xoá đơn Cancelled/Delivered không hoàn kho
func RestoresOnDelete(status Status) bool {
	return status != StatusCancelled && status != StatusDelivered
}
