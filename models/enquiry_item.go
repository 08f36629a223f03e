package models

// EnquiryItem is one product line in a visitor's enquiry cart. ProductTitle is
// a denormalized display copy of the localized product name, resolved when the
// item is added.
type EnquiryItem struct {
	ID           string `json:"id" validate:"required"`
	ProductID    string `json:"productId" validate:"required"`
	ProductTitle string `json:"productTitle" validate:"required"`

	Grade      string `json:"grade,omitempty"`
	PackFormat string `json:"packFormat,omitempty"`
	Quantity   string `json:"quantity,omitempty"`
	MOQ        string `json:"moq,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// EnquiryList is the whole persisted cart state, in insertion order.
type EnquiryList []EnquiryItem

// HandoffItem is what the cart hands to the trade enquiry form across a
// navigation: just enough to pre-fill product interest and message fields.
type HandoffItem struct {
	ProductTitle string `json:"productTitle"`
	Quantity     string `json:"quantity,omitempty"`
}
