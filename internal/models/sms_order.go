package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SMS order statuses. waiting orders have an active polling loop; every
// other status is terminal.
const (
	SMSOrderWaiting      = "waiting"
	SMSOrderCodeReceived = "code_received"
	SMSOrderExpired      = "expired"
	SMSOrderCancelled    = "cancelled"
)

// SMSOrder is one rented virtual number awaiting a verification code
type SMSOrder struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	OrderID     string             `bson:"orderId" json:"orderId"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	Country     string             `bson:"country" json:"country"`
	Service     string             `bson:"service" json:"service"`
	Status      string             `bson:"status" json:"status"`
	Code        string             `bson:"code,omitempty" json:"code,omitempty"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SMSOrderRequest is the user-facing order creation payload
type SMSOrderRequest struct {
	Country  string `json:"country" binding:"required"`
	Service  string `json:"service" binding:"required"`
	Mode     string `json:"mode"`
	Provider string `json:"provider"`
}
