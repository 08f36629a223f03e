package dto

// TradeEnquiryDTO is the raw, untrusted body of POST /enquiries/trade.
// Honeypot must stay empty for genuine submissions; bots that fill it get a
// fake success. Validation is config-driven, so no binding tags here.
type TradeEnquiryDTO struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	Role    string `json:"role"`

	ProductInterest []string `json:"productInterest"`
	Quantity        string   `json:"quantity"`
	Message         string   `json:"message"`

	Honeypot string `json:"honeypot"`
}

// FieldIssue is one actionable validation problem, returned so the form can
// render inline errors.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type UpdateTradeEnquiryStatusDTO struct {
	Status string `json:"status" binding:"required"`
}
