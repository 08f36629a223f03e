package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type TradeEnquiryStatus string

const (
	TradeEnquiryStatusNew        TradeEnquiryStatus = "NEW"
	TradeEnquiryStatusInProgress TradeEnquiryStatus = "IN_PROGRESS"
	TradeEnquiryStatusAnswered   TradeEnquiryStatus = "ANSWERED"
	TradeEnquiryStatusClosed     TradeEnquiryStatus = "CLOSED"
)

// TradeEnquiry is the durable record of a validated submission.
type TradeEnquiry struct {
	ID bson.ObjectID `bson:"_id,omitempty" json:"id"`

	Name    string `bson:"name" json:"name"`
	Company string `bson:"company" json:"company"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Country string `bson:"country" json:"country"`
	Role    string `bson:"role,omitempty" json:"role,omitempty"`

	ProductInterest []string `bson:"productInterest,omitempty" json:"productInterest,omitempty"`
	Quantity        string   `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Message         string   `bson:"message" json:"message"`

	Status TradeEnquiryStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
