package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Inbox message types. Receipt types match the purchase kind that produced
// them; general covers refund notices and announcements.
const (
	InboxTypeGeneral          = "general"
	InboxTypeAirtimeReceipt   = "airtime_receipt"
	InboxTypeDataReceipt      = "data_receipt"
	InboxTypeTVReceipt        = "tv_receipt"
	InboxTypeElectricityToken = "electricity_token"
	InboxTypeBettingReceipt   = "betting_receipt"
	InboxTypeSMSCode          = "sms_code"
	InboxTypeSupportReply     = "support_reply"
)

// InboxMessage is an append-only notification record. The orchestrator
// creates at most one per transaction terminal state; the only later
// mutation is a mark-read flip.
type InboxMessage struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID     `bson:"userId" json:"userId"`
	Type      string                 `bson:"type" json:"type"`
	Title     string                 `bson:"title" json:"title"`
	Message   string                 `bson:"message" json:"message"`
	Reference string                 `bson:"reference,omitempty" json:"reference,omitempty"`
	IsRead    bool                   `bson:"isRead" json:"isRead"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// InboxCounts are the counters the notification watcher compares between
// polls to detect activity
type InboxCounts struct {
	UnreadInbox    int64 `json:"unreadInbox"`
	UnreadSupport  int64 `json:"unreadSupport"`
	RecentDeposits int64 `json:"recentDeposits"`
}
