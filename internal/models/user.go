package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a storefront customer. WalletBalance is server-authoritative:
// only the purchase and funding flows may move it, never the client.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password" json:"-"`
	FirstName     string             `bson:"firstName" json:"firstName"`
	LastName      string             `bson:"lastName" json:"lastName"`
	Phone         string             `bson:"phone" json:"phone"`
	WalletBalance float64            `bson:"walletBalance" json:"walletBalance"`
	Role          string             `bson:"role" json:"role"`
	LastActivity  time.Time          `bson:"lastActivity,omitempty" json:"lastActivity,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
