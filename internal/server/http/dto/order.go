package dto

import "time"

// Address is a customer delivery address.
type Address struct {
	Street  string   `json:"street"`
	Line2   string   `json:"line2,omitempty"`
	City    string   `json:"city"`
	ZipCode string   `json:"zipCode"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

// LineRequest is a requested cart line.
type LineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// QuoteRequest asks for a priced cart.
type QuoteRequest struct {
	OrderType string        `json:"orderType"`
	Address   *Address      `json:"address,omitempty"`
	Items     []LineRequest `json:"items"`
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	CustomerName  string        `json:"customerName"`
	Phone         string        `json:"phone"`
	Address       *Address      `json:"address,omitempty"`
	OrderType     string        `json:"orderType"`
	PaymentMethod string        `json:"paymentMethod"`
	Items         []LineRequest `json:"items"`
}

// ItemResponse is a priced order line.
type ItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// QuoteResponse is a priced cart with its delivery fee.
type QuoteResponse struct {
	Items       []ItemResponse `json:"items"`
	Subtotal    float64        `json:"subtotal"`
	TaxRate     float64        `json:"taxRate"`
	TaxAmount   float64        `json:"taxAmount"`
	DeliveryFee float64        `json:"deliveryFee"`
	Total       float64        `json:"total"`
	DistanceKm  *float64       `json:"distanceKm,omitempty"`
	InZone      bool           `json:"inZone"`
}

// CustomerResponse identifies who placed an order.
type CustomerResponse struct {
	UserID  int64    `json:"userId"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address,omitempty"`
}

// OrderResponse is the full order document.
type OrderResponse struct {
	ID                      string           `json:"id"`
	RestaurantID            string           `json:"restaurantId"`
	Customer                CustomerResponse `json:"customer"`
	Items                   []ItemResponse   `json:"items"`
	Subtotal                float64          `json:"subtotal"`
	TaxRate                 float64          `json:"taxRate"`
	TaxAmount               float64          `json:"taxAmount"`
	DeliveryFee             float64          `json:"deliveryFee"`
	TotalAmount             float64          `json:"totalAmount"`
	OrderType               string           `json:"orderType"`
	Status                  string           `json:"status"`
	DeliveryStatus          *string          `json:"deliveryStatus"`
	PaymentMethod           string           `json:"paymentMethod"`
	PaymentStatus           string           `json:"paymentStatus"`
	AssignedDriverID        *int64           `json:"assignedDriverId"`
	DriverAssignmentStatus  *string          `json:"driverAssignmentStatus"`
	AssignedBy              *int64           `json:"assignedBy,omitempty"`
	PaymentReceivedByDriver bool             `json:"paymentReceivedByDriver"`
	Version                 int64            `json:"version"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
	AllowedActions          []string         `json:"allowedActions,omitempty"`
}

// TransitionRequest asks the server to apply a lifecycle action.
type TransitionRequest struct {
	Action   string `json:"action"`
	DriverID *int64 `json:"driverId,omitempty"`
	Version  int64  `json:"version"`
}
