package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventProductsUpdated = "products.updated"
	EventOrderReceived   = "order.received"
)

// OutboxEvent is a pending side effect persisted in the same transaction as
// the order that caused it. The dispatcher in publisher/ delivers events
// at least once and marks them processed afterwards.
type OutboxEvent struct {
	gorm.Model
	AggregateId int            `json:"aggregateId"`
	EventType   string         `json:"eventType" gorm:"index"`
	Payload     datatypes.JSON `json:"payload"`
	Processed   bool           `json:"processed" gorm:"index"`
	ProcessedAt *time.Time     `json:"processedAt"`
}
