package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// =====================================================
// PLACE ORDER REQUEST
// =====================================================

// CartItem là một dòng giỏ hàng client gửi lên
type CartItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

func (i CartItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Product, validation.Required, is.UUID),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&i.Size, validation.Required),
	)
}

func (a Address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Email, validation.Required, is.EmailFormat),
		validation.Field(&a.Street, validation.Required, validation.Length(1, 255)),
		validation.Field(&a.City, validation.Required),
		validation.Field(&a.State, validation.Required),
		validation.Field(&a.Zipcode, validation.Required),
		validation.Field(&a.Country, validation.Required),
		validation.Field(&a.Phone, validation.Required, validation.Length(6, 20)),
	)
}

// PlaceOrderRequest is the body of POST /order/{cod,stripe,vnpay}.
// Items may be empty here; the builder reports EmptyCart itself.
// Fees is what the client displayed. The server resolves its own snapshot
// and only logs a mismatch.
type PlaceOrderRequest struct {
	Items   []CartItem   `json:"items"`
	Address Address      `json:"address"`
	Fees    *FeeSnapshot `json:"fees,omitempty"`
}

func (req PlaceOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Items),
		validation.Field(&req.Address),
	)
}

type PlaceOrderResponse struct {
	OrderID     string `json:"orderId"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// =====================================================
// ADMIN REQUESTS
// =====================================================
type UpdateStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (req UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.OrderID, validation.Required, is.UUID),
		validation.Field(&req.Status, validation.Required),
	)
}

type UpdateOrderRequest struct {
	OrderID string   `json:"orderId"`
	Status  *string  `json:"status,omitempty"`
	Address *Address `json:"address,omitempty"`
}

func (req UpdateOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.OrderID, validation.Required, is.UUID),
		validation.Field(&req.Address),
	)
}

type DeleteOrderRequest struct {
	OrderID string `json:"orderId"`
}

func (req DeleteOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.OrderID, validation.Required, is.UUID),
	)
}

// =====================================================
// LIST ORDERS REQUEST
// =====================================================
type ListOrdersRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

func (req *ListOrdersRequest) Validate() error {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Limit, validation.Max(100)),
		validation.Field(&req.Status, validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if s == "" {
				return nil
			}
			_, err := ParseStatus(s)
			return err
		})),
	)
}

func (req *ListOrdersRequest) Offset() int {
	return (req.Page - 1) * req.Limit
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
	Total  int      `json:"total"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
}
