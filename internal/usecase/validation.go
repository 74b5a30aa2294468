package usecase

import (
	"math"
	"net/mail"
	"strings"
	"unicode"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

const phoneDigits = 10

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidatePhone accepts exactly ten digits, ignoring spaces, dashes and
// parentheses.
func ValidatePhone(phone string) bool {
	var digits int
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits == phoneDigits
}

func validCoordinates(lat, lng float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lng) && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// validateCheckout applies the cart rules to a placement request.
func validateCheckout(in PlaceOrderInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.CustomerName) == "" {
		fields["customerName"] = "required"
	}
	if !ValidatePhone(in.Phone) {
		fields["phone"] = "must contain 10 digits"
	}
	switch in.Type {
	case model.OrderTypeDelivery:
		validateAddress(in.Address, fields)
	case model.OrderTypePickup:
	default:
		fields["orderType"] = "must be delivery or pickup"
	}
	switch in.PaymentMethod {
	case model.PaymentMethodCashOnDelivery:
		if in.Type != model.OrderTypeDelivery {
			fields["paymentMethod"] = "cash on delivery requires a delivery order"
		}
	case model.PaymentMethodCashAtCounter, model.PaymentMethodPrepaid:
	default:
		fields["paymentMethod"] = "unknown payment method"
	}
	validateLines(in.Items, fields)
	return domainErrors.NewValidationError(fields)
}

func validateAddress(a *model.Address, fields map[string]string) {
	if a == nil {
		fields["address"] = "required for delivery"
		return
	}
	if strings.TrimSpace(a.Street) == "" {
		fields["address.street"] = "required"
	}
	if strings.TrimSpace(a.City) == "" {
		fields["address.city"] = "required"
	}
	if strings.TrimSpace(a.ZipCode) == "" {
		fields["address.zipCode"] = "required"
	}
	if strings.TrimSpace(a.Country) == "" {
		fields["address.country"] = "required"
	}
	if a.HasCoordinates() && !validCoordinates(*a.Lat, *a.Lng) {
		fields["address.location"] = "out of range"
	}
}

func validateLines(items []LineInput, fields map[string]string) {
	if len(items) == 0 {
		fields["items"] = "cart is empty"
		return
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			fields["items"] = "product id required"
			return
		}
		if it.Quantity < 1 {
			fields["items"] = "quantity must be at least 1"
			return
		}
	}
}

func validateInvoice(s model.InvoiceSettings) error {
	fields := map[string]string{}
	if s.TaxRate < 0 || s.TaxRate > 1 || math.IsNaN(s.TaxRate) {
		fields["taxRate"] = "must be a fraction between 0 and 1"
	}
	if s.DefaultDeliveryFee < 0 {
		fields["defaultDeliveryFee"] = "must not be negative"
	}
	if s.Email != "" && !validEmail(normalizeEmail(s.Email)) {
		fields["email"] = "invalid email"
	}
	return domainErrors.NewValidationError(fields)
}

func validateDelivery(s model.DeliverySettings) error {
	fields := map[string]string{}
	if s.Location != nil && !validCoordinates(s.Location.Lat, s.Location.Lng) {
		fields["location"] = "out of range"
	}
	if s.DeliveryRadiusKm < 0 || math.IsNaN(s.DeliveryRadiusKm) {
		fields["deliveryRadiusKm"] = "must not be negative"
	}
	if s.OutZoneDeliveryFee < 0 {
		fields["outZoneDeliveryFee"] = "must not be negative"
	}
	return domainErrors.NewValidationError(fields)
}

func validateProduct(p model.Product) error {
	fields := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = "required"
	}
	if p.Price < 0 {
		fields["price"] = "must not be negative"
	}
	return domainErrors.NewValidationError(fields)
}

func validateCoupon(c model.Coupon) error {
	fields := map[string]string{}
	if c.Code == "" {
		fields["code"] = "required"
	}
	switch c.DiscountType {
	case model.DiscountFixed, model.DiscountPercentage:
	default:
		fields["discountType"] = "must be fixed or percentage"
	}
	if c.DiscountValue <= 0 {
		fields["discountValue"] = "must be positive"
	} else if c.DiscountType == model.DiscountPercentage && c.DiscountValue > 100 {
		fields["discountValue"] = "percentage cannot exceed 100"
	}
	if c.MinOrderAmount < 0 {
		fields["minOrderAmount"] = "must not be negative"
	}
	if c.UsageLimit < 0 {
		fields["usageLimit"] = "must not be negative"
	}
	if c.ValidFrom != nil && c.ValidTo != nil && c.ValidFrom.After(*c.ValidTo) {
		fields["validTo"] = "must not precede validFrom"
	}
	return domainErrors.NewValidationError(fields)
}
