package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Rule is one configurable validation rule: a minimum-length threshold and the
// message returned when the field fails it.
type Rule struct {
	Min     int    `json:"min"`
	Message string `json:"message"`
}

type ValidationConfig struct {
	Name    Rule `json:"name"`
	Company Rule `json:"company"`
	Email   Rule `json:"email"` // Min unused, format check only
	Phone   Rule `json:"phone"`
	Country Rule `json:"country"`
	Message Rule `json:"message"`
}

type Messages struct {
	Success     string `json:"success"`
	RateLimited string `json:"rateLimited"`
	Invalid     string `json:"invalid"`
	ServerError string `json:"serverError"`
}

type Notify struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
}

// Config is everything the enquiry pipeline reads at request time. Thresholds
// and copy are CMS-editable, so the pipeline never holds a compiled-in copy.
type Config struct {
	RateLimitMaxRequests int              `json:"rateLimitMaxRequests"`
	RateLimitWindowMs    int              `json:"rateLimitWindowMs"`
	Validation           ValidationConfig `json:"validation"`
	Messages             Messages         `json:"messages"`
	Notify               Notify           `json:"notify"`
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMs) * time.Millisecond
}

func Defaults() Config {
	return Config{
		RateLimitMaxRequests: 5,
		RateLimitWindowMs:    60000,
		Validation: ValidationConfig{
			Name:    Rule{Min: 2, Message: "Please enter your full name"},
			Company: Rule{Min: 2, Message: "Please enter your company name"},
			Email:   Rule{Message: "Please enter a valid email address"},
			Phone:   Rule{Min: 5, Message: "Please enter a valid phone number"},
			Country: Rule{Min: 2, Message: "Please enter your country"},
			Message: Rule{Min: 10, Message: "Please tell us a bit more about your enquiry"},
		},
		Messages: Messages{
			Success:     "Thank you for your enquiry. Our trade team will get back to you shortly.",
			RateLimited: "Too many requests. Please try again in a minute.",
			Invalid:     "Some fields need your attention.",
			ServerError: "Something went wrong on our side. Please try again later.",
		},
		Notify: Notify{
			Recipient: "trade@veltra.example",
			Subject:   "New trade enquiry from {{name}}",
		},
	}
}

// Overrides is the CMS-supplied configuration document. Only non-nil fields
// win over the base config, so editors can override a single message without
// restating the rest.
type Overrides struct {
	RateLimitMaxRequests *int `json:"rateLimitMaxRequests"`
	RateLimitWindowMs    *int `json:"rateLimitWindowMs"`

	Validation *struct {
		Name    *Rule `json:"name"`
		Company *Rule `json:"company"`
		Email   *Rule `json:"email"`
		Phone   *Rule `json:"phone"`
		Country *Rule `json:"country"`
		Message *Rule `json:"message"`
	} `json:"validation"`

	Messages *struct {
		Success     *string `json:"success"`
		RateLimited *string `json:"rateLimited"`
		Invalid     *string `json:"invalid"`
		ServerError *string `json:"serverError"`
	} `json:"messages"`

	Notify *struct {
		Recipient *string `json:"recipient"`
		Subject   *string `json:"subject"`
	} `json:"notify"`
}

// Resolve merges overrides over base. Pure function, no state.
func Resolve(base Config, ov *Overrides) Config {
	if ov == nil {
		return base
	}
	out := base

	if ov.RateLimitMaxRequests != nil && *ov.RateLimitMaxRequests > 0 {
		out.RateLimitMaxRequests = *ov.RateLimitMaxRequests
	}
	if ov.RateLimitWindowMs != nil && *ov.RateLimitWindowMs > 0 {
		out.RateLimitWindowMs = *ov.RateLimitWindowMs
	}

	if ov.Validation != nil {
		mergeRule(&out.Validation.Name, ov.Validation.Name)
		mergeRule(&out.Validation.Company, ov.Validation.Company)
		mergeRule(&out.Validation.Email, ov.Validation.Email)
		mergeRule(&out.Validation.Phone, ov.Validation.Phone)
		mergeRule(&out.Validation.Country, ov.Validation.Country)
		mergeRule(&out.Validation.Message, ov.Validation.Message)
	}

	if ov.Messages != nil {
		mergeString(&out.Messages.Success, ov.Messages.Success)
		mergeString(&out.Messages.RateLimited, ov.Messages.RateLimited)
		mergeString(&out.Messages.Invalid, ov.Messages.Invalid)
		mergeString(&out.Messages.ServerError, ov.Messages.ServerError)
	}

	if ov.Notify != nil {
		mergeString(&out.Notify.Recipient, ov.Notify.Recipient)
		mergeString(&out.Notify.Subject, ov.Notify.Subject)
	}

	return out
}

func mergeRule(dst *Rule, src *Rule) {
	if src == nil {
		return
	}
	if src.Min > 0 {
		dst.Min = src.Min
	}
	if src.Message != "" {
		dst.Message = src.Message
	}
}

func mergeString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

// FromEnv layers environment variables over the defaults. The CMS overrides
// document goes on top of the result via Resolve.
func FromEnv() Config {
	cfg := Defaults()
	cfg.RateLimitMaxRequests = envIntDefault("RATE_LIMIT_MAX_REQUESTS", cfg.RateLimitMaxRequests)
	cfg.RateLimitWindowMs = envIntDefault("RATE_LIMIT_WINDOW_MS", cfg.RateLimitWindowMs)
	if v := os.Getenv("ENQUIRY_NOTIFY_RECIPIENT"); v != "" {
		cfg.Notify.Recipient = v
	}
	if v := os.Getenv("ENQUIRY_NOTIFY_SUBJECT"); v != "" {
		cfg.Notify.Subject = v
	}
	return cfg
}

// ParseOverrides decodes the CMS configuration document.
func ParseOverrides(raw []byte) (*Overrides, error) {
	var ov Overrides
	if err := json.Unmarshal(raw, &ov); err != nil {
		return nil, fmt.Errorf("parse config overrides: %w", err)
	}
	return &ov, nil
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
