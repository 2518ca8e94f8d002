package dto

type CartLine struct {
	Slug string `json:"slug"`
	Qty  int64  `json:"qty"`
}

type CheckoutRequest struct {
	Lines []CartLine `json:"lines"`

	Email string `json:"email"`
	Phone string `json:"phone"`

	ShippingName     string `json:"shippingName"`
	ShippingAddress1 string `json:"shippingAddress1"`
	ShippingAddress2 string `json:"shippingAddress2"`
	ShippingCity     string `json:"shippingCity"`
	ShippingState    string `json:"shippingState"`
	ShippingZip      string `json:"shippingZip"`
	ShippingCountry  string `json:"shippingCountry"`

	PaymentMethod string `json:"paymentMethod"`
}

type CheckoutResponse struct {
	OrderID string `json:"orderId"`
}

type StatusUpdateRequest struct {
	Status         string `json:"status"`
	PaymentMethod  string `json:"paymentMethod"`
	MailService    string `json:"mailService"`
	TrackingNumber string `json:"trackingNumber"`
}

type StatusUpdateResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

type OverrideRequest struct {
	PriceCents *int64 `json:"priceCents"`
	Inventory  *int64 `json:"inventory"`
}

type SendEmailResponse struct {
	Result string `json:"result"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
