package models

import (
	"time"

	"gorm.io/datatypes"
)

// ImportLineItem is one raw order row (pedido) belonging to an import
// process. The table is append-only: corrections arrive as new rows sharing
// the same business key, so there is no header row; the process header is
// derived by aggregation.
type ImportLineItem struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	BusinessKey int64  `gorm:"column:business_key;index;not null" json:"business_key"`

	// Header-like fields (last row per key wins)
	Supplier          string     `gorm:"index" json:"supplier"`
	ReferenceDocument string     `gorm:"column:reference_document" json:"reference_document"`
	StatusLabel       string     `gorm:"column:status_label;index" json:"status_label"`
	OrderDate         *time.Time `gorm:"column:order_date" json:"order_date,omitempty"`
	EstimatedArrival  *time.Time `gorm:"column:estimated_arrival" json:"estimated_arrival,omitempty"`

	// Per-line detail
	ProductCode string  `gorm:"column:product_code;index" json:"product_code"`
	Description string  `gorm:"type:text" json:"description"`
	Quantity    float64 `json:"quantity"`

	// Monetary amounts (per-line, summed during aggregation)
	UnitPriceForeign float64 `gorm:"column:unit_price_foreign" json:"unit_price_foreign"`
	UnitPriceLocal   float64 `gorm:"column:unit_price_local" json:"unit_price_local"`
	TotalForeign     float64 `gorm:"column:total_foreign" json:"total_foreign"`
	FreightForeign   float64 `gorm:"column:freight_foreign" json:"freight_foreign"`

	// Ingestion-side payload we do not model (customs refs, spreadsheet row)
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName specifies the table name for ImportLineItem
func (ImportLineItem) TableName() string {
	return "import_line_items"
}

// HeaderColumns is the subset of columns the update path may touch. The
// update always targets the most recent row for a key, never older rows.
var HeaderColumns = map[string]bool{
	"supplier":           true,
	"reference_document": true,
	"status_label":       true,
	"order_date":         true,
	"estimated_arrival":  true,
}
