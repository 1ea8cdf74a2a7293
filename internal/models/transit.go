package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransitRecord is one logistics event for an import process. Zero, one or
// many rows may exist per business key. Once present, the latest record is
// the authoritative source for status and arrival dates.
type TransitRecord struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	BusinessKey int64  `gorm:"column:business_key;index;not null" json:"business_key"`

	Carrier       string `gorm:"index" json:"carrier"`
	Agent         string `json:"agent"`
	Container     string `gorm:"index" json:"container"`
	InvoiceNumber string `gorm:"column:invoice_number" json:"invoice_number"`

	StatusLabel      string     `gorm:"column:status_label;index" json:"status_label"`
	EstimatedArrival *time.Time `gorm:"column:estimated_arrival" json:"estimated_arrival,omitempty"`
	ArrivalDate      *time.Time `gorm:"column:arrival_date" json:"arrival_date,omitempty"`

	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName specifies the table name for TransitRecord
func (TransitRecord) TableName() string {
	return "transit_records"
}

// ReceivedRecord is one warehouse receiving row for an import process.
// Read-only from this layer; rendered as its own dashboard tab.
type ReceivedRecord struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	BusinessKey int64  `gorm:"column:business_key;index;not null" json:"business_key"`

	Container     string     `gorm:"index" json:"container"`
	InvoiceNumber string     `gorm:"column:invoice_number" json:"invoice_number"`
	Warehouse     string     `json:"warehouse"`
	Quantity      float64    `json:"quantity"`
	ReceivedDate  *time.Time `gorm:"column:received_date" json:"received_date,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName specifies the table name for ReceivedRecord
func (ReceivedRecord) TableName() string {
	return "received_records"
}
