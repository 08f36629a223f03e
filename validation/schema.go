// Package validation builds the trade-enquiry schema from config at request
// time. Thresholds and messages are CMS-editable, so nothing here is compiled
// once; a Schema is cheap to construct per submission.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nkoudou/veltrabackend/config"
	"github.com/nkoudou/veltrabackend/dto"
)

var validate = validator.New()

type Schema struct {
	cfg config.ValidationConfig
}

func NewSchema(cfg config.ValidationConfig) *Schema {
	return &Schema{cfg: cfg}
}

// Validate trims and checks every field. On success the cleaned DTO is
// returned; on failure, one issue per offending field so the form can render
// inline errors. The honeypot is not part of this result; see Honeypot.
func (s *Schema) Validate(in dto.TradeEnquiryDTO) (dto.TradeEnquiryDTO, []dto.FieldIssue) {
	out := in
	out.Name = strings.TrimSpace(in.Name)
	out.Company = strings.TrimSpace(in.Company)
	out.Email = strings.TrimSpace(in.Email)
	out.Phone = strings.TrimSpace(in.Phone)
	out.Country = strings.TrimSpace(in.Country)
	out.Role = strings.TrimSpace(in.Role)
	out.Quantity = strings.TrimSpace(in.Quantity)
	out.Message = strings.TrimSpace(in.Message)

	var issues []dto.FieldIssue
	check := func(field, value, tag, message string) {
		if err := validate.Var(value, tag); err != nil {
			issues = append(issues, dto.FieldIssue{Field: field, Message: message})
		}
	}

	check("name", out.Name, minTag(s.cfg.Name.Min), s.cfg.Name.Message)
	check("company", out.Company, minTag(s.cfg.Company.Min), s.cfg.Company.Message)
	check("email", out.Email, "required,email", s.cfg.Email.Message)
	check("phone", out.Phone, minTag(s.cfg.Phone.Min), s.cfg.Phone.Message)
	check("country", out.Country, minTag(s.cfg.Country.Min), s.cfg.Country.Message)
	check("message", out.Message, minTag(s.cfg.Message.Min), s.cfg.Message.Message)

	if len(issues) > 0 {
		return dto.TradeEnquiryDTO{}, issues
	}
	return out, nil
}

// Honeypot reports whether the hidden field was filled in. Maximum length
// zero: any non-empty value marks the submission as automated. Kept separate
// from Validate because a tripped honeypot must never show up as a field
// issue.
func (s *Schema) Honeypot(in dto.TradeEnquiryDTO) bool {
	return validate.Var(in.Honeypot, "max=0") != nil
}

func minTag(min int) string {
	return fmt.Sprintf("required,min=%d", min)
}
