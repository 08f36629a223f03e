package dto

type AddEnquiryItemDTO struct {
	ProductID    string `json:"productId" binding:"required"`
	ProductTitle string `json:"productTitle" binding:"required"`

	Grade      string `json:"grade"`
	PackFormat string `json:"packFormat"`
	Quantity   string `json:"quantity"`
	MOQ        string `json:"moq"`
	Notes      string `json:"notes"`
}

// UpdateEnquiryItemDTO merges non-nil fields into an existing item.
type UpdateEnquiryItemDTO struct {
	Grade      *string `json:"grade"`
	PackFormat *string `json:"packFormat"`
	Quantity   *string `json:"quantity"`
	MOQ        *string `json:"moq"`
	Notes      *string `json:"notes"`
}
