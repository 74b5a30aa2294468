package dto

// AdminBoardResponse is the admin panel grouped by column.
type AdminBoardResponse struct {
	New       []OrderResponse `json:"new"`
	Preparing []OrderResponse `json:"preparing"`
	Ready     []OrderResponse `json:"ready"`
	InTransit []OrderResponse `json:"inTransit"`
	Closed    []OrderResponse `json:"closed"`
}

// DriverBoardResponse is what a driver sees.
type DriverBoardResponse struct {
	Available []OrderResponse `json:"available"`
	Mine      []OrderResponse `json:"mine"`
}

// CustomerOrderResponse is an order with its customer facing label.
type CustomerOrderResponse struct {
	OrderResponse
	Label string `json:"label"`
}

// CustomerHistoryResponse splits a customer's orders.
type CustomerHistoryResponse struct {
	Current  []CustomerOrderResponse `json:"current"`
	Previous []CustomerOrderResponse `json:"previous"`
}

// CountResponse compares a count between two periods.
type CountResponse struct {
	Current   int     `json:"current"`
	Previous  int     `json:"previous"`
	ChangePct float64 `json:"changePct"`
}

// MoneyResponse compares an amount between two periods.
type MoneyResponse struct {
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	ChangePct float64 `json:"changePct"`
}

// DashboardResponse is the admin metrics panel.
type DashboardResponse struct {
	Range             string        `json:"range"`
	Orders            CountResponse `json:"orders"`
	Revenue           MoneyResponse `json:"revenue"`
	AverageOrderValue MoneyResponse `json:"averageOrderValue"`
	ActiveCustomers   CountResponse `json:"activeCustomers"`
}

// PopularItemResponse is one ranked product.
type PopularItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}
