package handlers

import (
	"github.com/polkiloo/dispatch/internal/dispatch"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/projection"
	"github.com/polkiloo/dispatch/internal/server/http/dto"
	"github.com/polkiloo/dispatch/internal/usecase"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                  u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		Role:                string(u.Role),
		ManagedRestaurantID: u.ManagedRestaurantID,
	}
}

func toAddress(a *dto.Address) *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{
		Street:  a.Street,
		Line2:   a.Line2,
		City:    a.City,
		ZipCode: a.ZipCode,
		Country: a.Country,
		Lat:     a.Lat,
		Lng:     a.Lng,
		Notes:   a.Notes,
	}
}

func fromAddress(a *model.Address) *dto.Address {
	if a == nil {
		return nil
	}
	return &dto.Address{
		Street:  a.Street,
		Line2:   a.Line2,
		City:    a.City,
		ZipCode: a.ZipCode,
		Country: a.Country,
		Lat:     a.Lat,
		Lng:     a.Lng,
		Notes:   a.Notes,
	}
}

func toLines(lines []dto.LineRequest) []usecase.LineInput {
	out := make([]usecase.LineInput, len(lines))
	for i, l := range lines {
		out[i] = usecase.LineInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return out
}

func toItemResponses(items []model.OrderItem) []dto.ItemResponse {
	out := make([]dto.ItemResponse, len(items))
	for i, it := range items {
		out[i] = dto.ItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.Float(),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal().Float(),
		}
	}
	return out
}

func toQuoteResponse(q *usecase.Quote) dto.QuoteResponse {
	return dto.QuoteResponse{
		Items:       toItemResponses(q.Items),
		Subtotal:    q.Totals.Subtotal.Float(),
		TaxRate:     q.TaxRate,
		TaxAmount:   q.Totals.TaxAmount.Float(),
		DeliveryFee: q.Totals.DeliveryFee.Float(),
		Total:       q.Totals.Total.Float(),
		DistanceKm:  q.Fee.DistanceKm,
		InZone:      q.Fee.InZone,
	}
}

func optional[T ~string](v T) *string {
	if v == "" {
		return nil
	}
	s := string(v)
	return &s
}

func toOrderResponse(o model.Order, actions []dispatch.Action) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		Customer: dto.CustomerResponse{
			UserID:  o.Customer.UserID,
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Address: fromAddress(o.Customer.Address),
		},
		Items:                   toItemResponses(o.Items),
		Subtotal:                o.Subtotal.Float(),
		TaxRate:                 o.TaxRate,
		TaxAmount:               o.TaxAmount.Float(),
		DeliveryFee:             o.DeliveryFee.Float(),
		TotalAmount:             o.TotalAmount.Float(),
		OrderType:               string(o.Type),
		Status:                  string(o.Status),
		DeliveryStatus:          optional(o.DeliveryStatus()),
		PaymentMethod:           string(o.PaymentMethod),
		PaymentStatus:           string(o.PaymentStatus),
		AssignedDriverID:        o.AssignedDriverID,
		DriverAssignmentStatus:  optional(o.DriverAssignmentStatus),
		AssignedBy:              o.AssignedBy,
		PaymentReceivedByDriver: o.PaymentReceivedByDriver,
		Version:                 o.Version,
		CreatedAt:               o.CreatedAt,
		UpdatedAt:               o.UpdatedAt,
	}
	for _, a := range actions {
		resp.AllowedActions = append(resp.AllowedActions, string(a))
	}
	return resp
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o, nil)
	}
	return out
}

func toDetailsResponse(d *usecase.OrderDetails) dto.OrderResponse {
	return toOrderResponse(d.Order, d.Actions)
}

func toAdminBoardResponse(b projection.AdminBoard) dto.AdminBoardResponse {
	return dto.AdminBoardResponse{
		New:       toOrderResponses(b.New),
		Preparing: toOrderResponses(b.Preparing),
		Ready:     toOrderResponses(b.Ready),
		InTransit: toOrderResponses(b.InTransit),
		Closed:    toOrderResponses(b.Closed),
	}
}

func toDriverBoardResponse(b projection.DriverBoard) dto.DriverBoardResponse {
	return dto.DriverBoardResponse{
		Available: toOrderResponses(b.Available),
		Mine:      toOrderResponses(b.Mine),
	}
}

func toCustomerOrders(orders []projection.CustomerOrder) []dto.CustomerOrderResponse {
	out := make([]dto.CustomerOrderResponse, len(orders))
	for i, co := range orders {
		out[i] = dto.CustomerOrderResponse{OrderResponse: toOrderResponse(co.Order, nil), Label: string(co.Label)}
	}
	return out
}

func toCustomerHistoryResponse(h projection.CustomerHistory) dto.CustomerHistoryResponse {
	return dto.CustomerHistoryResponse{
		Current:  toCustomerOrders(h.Current),
		Previous: toCustomerOrders(h.Previous),
	}
}

func toCount(c projection.Count) dto.CountResponse {
	return dto.CountResponse{Current: c.Current, Previous: c.Previous, ChangePct: c.ChangePct}
}

func toMoney(m projection.Money) dto.MoneyResponse {
	return dto.MoneyResponse{Current: m.Current.Float(), Previous: m.Previous.Float(), ChangePct: m.ChangePct}
}

func toDashboardResponse(d projection.Dashboard) dto.DashboardResponse {
	return dto.DashboardResponse{
		Range:             string(d.Range),
		Orders:            toCount(d.Orders),
		Revenue:           toMoney(d.Revenue),
		AverageOrderValue: toMoney(d.AverageOrderValue),
		ActiveCustomers:   toCount(d.ActiveCustomers),
	}
}

func toPopularItems(items []projection.PopularItem) []dto.PopularItemResponse {
	out := make([]dto.PopularItemResponse, len(items))
	for i, it := range items {
		out[i] = dto.PopularItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Revenue:   it.Revenue.Float(),
		}
	}
	return out
}

func toInvoiceDTO(s model.InvoiceSettings) dto.InvoiceSettings {
	out := dto.InvoiceSettings{
		Name:               s.Name,
		Address:            s.Address,
		Phone:              s.Phone,
		Email:              s.Email,
		TaxID:              s.TaxID,
		TaxRate:            s.TaxRate,
		DefaultDeliveryFee: s.DefaultDeliveryFee.Float(),
	}
	if !s.UpdatedAt.IsZero() {
		at := s.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

func fromInvoiceDTO(restaurantID string, in dto.InvoiceSettings) model.InvoiceSettings {
	return model.InvoiceSettings{
		RestaurantID:       restaurantID,
		Name:               in.Name,
		Address:            in.Address,
		Phone:              in.Phone,
		Email:              in.Email,
		TaxID:              in.TaxID,
		TaxRate:            in.TaxRate,
		DefaultDeliveryFee: model.AmountFromFloat(in.DefaultDeliveryFee),
	}
}

func toDeliveryDTO(s model.DeliverySettings) dto.DeliverySettings {
	out := dto.DeliverySettings{
		DeliveryRadiusKm:       s.DeliveryRadiusKm,
		InZoneDeliveryEnabled:  s.InZoneDeliveryEnabled,
		OutZoneDeliveryEnabled: s.OutZoneDeliveryEnabled,
		OutZoneDeliveryFee:     s.OutZoneDeliveryFee.Float(),
		AllowOutOfRangeOrders:  s.AllowOutOfRangeOrders,
	}
	if s.Location != nil {
		out.Location = &dto.Location{Lat: s.Location.Lat, Lng: s.Location.Lng}
	}
	if !s.UpdatedAt.IsZero() {
		at := s.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

func fromDeliveryDTO(restaurantID string, in dto.DeliverySettings) model.DeliverySettings {
	out := model.DeliverySettings{
		RestaurantID:           restaurantID,
		DeliveryRadiusKm:       in.DeliveryRadiusKm,
		InZoneDeliveryEnabled:  in.InZoneDeliveryEnabled,
		OutZoneDeliveryEnabled: in.OutZoneDeliveryEnabled,
		OutZoneDeliveryFee:     model.AmountFromFloat(in.OutZoneDeliveryFee),
		AllowOutOfRangeOrders:  in.AllowOutOfRangeOrders,
	}
	if in.Location != nil {
		out.Location = &model.Location{Lat: in.Location.Lat, Lng: in.Location.Lng}
	}
	return out
}

func toProductDTO(p model.Product) dto.Product {
	return dto.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.Float(),
		Available:   p.Available,
	}
}

func fromProductDTO(restaurantID string, in dto.Product) model.Product {
	return model.Product{
		ID:           in.ID,
		RestaurantID: restaurantID,
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Price:        model.AmountFromFloat(in.Price),
		Available:    in.Available,
	}
}

func toCouponDTO(c model.Coupon) dto.Coupon {
	return dto.Coupon{
		Code:           c.Code,
		DiscountType:   string(c.DiscountType),
		DiscountValue:  c.DiscountValue,
		MinOrderAmount: c.MinOrderAmount.Float(),
		ValidFrom:      c.ValidFrom,
		ValidTo:        c.ValidTo,
		UsageLimit:     c.UsageLimit,
		UsedCount:      c.UsedCount,
		Active:         c.Active,
	}
}

func fromCouponDTO(restaurantID string, in dto.Coupon) model.Coupon {
	return model.Coupon{
		RestaurantID:   restaurantID,
		Code:           in.Code,
		DiscountType:   model.DiscountType(in.DiscountType),
		DiscountValue:  in.DiscountValue,
		MinOrderAmount: model.AmountFromFloat(in.MinOrderAmount),
		ValidFrom:      in.ValidFrom,
		ValidTo:        in.ValidTo,
		UsageLimit:     in.UsageLimit,
		Active:         in.Active,
	}
}
