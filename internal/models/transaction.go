package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction statuses. A transaction is created as processing and makes
// exactly one terminal transition; it is never re-opened.
const (
	TransactionProcessing = "processing"
	TransactionCompleted  = "completed"
	TransactionFailed     = "failed"
)

// Transaction types
const (
	TransactionDebit  = "debit"
	TransactionCredit = "credit"
)

// Purchase saga states. The state makes the "provider succeeded but the
// ledger update was lost" gap representable instead of an implicit race.
const (
	PurchaseStateCreated             = "created"
	PurchaseStateProviderCalled      = "provider_called"
	PurchaseStateSettled             = "settled"
	PurchaseStateCompensationPending = "compensation_pending"
	PurchaseStateCompensated         = "compensated"
)

// Transaction represents one ledger entry for a user's wallet
type Transaction struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID     `bson:"userId" json:"userId"`
	Type          string                 `bson:"type" json:"type"`
	Amount        float64                `bson:"amount" json:"amount"`
	Description   string                 `bson:"description" json:"description"`
	Reference     string                 `bson:"reference" json:"reference"`
	Status        string                 `bson:"status" json:"status"`
	PurchaseState string                 `bson:"purchaseState,omitempty" json:"purchaseState,omitempty"`
	Metadata      map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt     time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// Purchase kinds accepted by the orchestrator
const (
	PurchaseKindAirtime     = "airtime"
	PurchaseKindData        = "data"
	PurchaseKindTV          = "tv"
	PurchaseKindElectricity = "electricity"
	PurchaseKindBetting     = "betting"
)

// PurchaseRequest carries one user-submitted purchase. Immutable once
// submitted; lives for the duration of a single orchestration.
type PurchaseRequest struct {
	Kind        string                 `json:"kind" binding:"required"`
	ServiceID   string                 `json:"service_id" binding:"required"`
	CustomerID  string                 `json:"customer_id"`
	VariationID string                 `json:"variation_id"`
	Amount      float64                `json:"amount"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// PurchaseReceipt is what a settled purchase hands back to the caller
type PurchaseReceipt struct {
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Token     string  `json:"token,omitempty"`
	Units     string  `json:"units,omitempty"`
	Message   string  `json:"message"`
}

// VerifyRequest asks the provider who owns a meter/card/phone number
type VerifyRequest struct {
	ServiceID   string `json:"service_id" binding:"required"`
	CustomerID  string `json:"customer_id" binding:"required"`
	VariationID string `json:"variation_id"`
}

// VerifyResult carries the advisory customer lookup outcome
type VerifyResult struct {
	CustomerName string `json:"customer_name"`
}
