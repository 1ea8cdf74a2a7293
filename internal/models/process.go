package models

import "time"

// SourceTag identifies which access path produced a derived entity
type SourceTag string

const (
	SourceDirect SourceTag = "direct"
	SourceREST   SourceTag = "rest"
)

// ImportProcess is the derived header for one import process: all line items
// sharing a business key merged into a single entity, with the latest transit
// record overlaid on status and arrival dates. It is recomputed on every read
// and never persisted.
type ImportProcess struct {
	BusinessKey int64 `json:"business_key"`

	Supplier          string `json:"supplier"`
	ReferenceDocument string `json:"reference_document"`
	StatusLabel       string `json:"status_label"`

	OrderDate        *time.Time `json:"order_date,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	ArrivalDate      *time.Time `json:"arrival_date,omitempty"`

	// Sums across every line item in the group
	TotalForeign   float64 `json:"total_foreign"`
	FreightForeign float64 `json:"freight_foreign"`

	LineItemCount int       `json:"line_item_count"`
	SourceTag     SourceTag `json:"source_tag"`
}

// ChildProduct is a line item reprojected as a detail row under its parent
// process. Owned by the parent, re-derived on every read.
type ChildProduct struct {
	LineItemID  uint64 `json:"line_item_id"`
	BusinessKey int64  `json:"business_key"`

	ProductCode string  `json:"product_code"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`

	UnitPriceForeign float64 `json:"unit_price_foreign"`
	UnitPriceLocal   float64 `json:"unit_price_local"`
	TotalForeign     float64 `json:"total_foreign"`

	OrderDate *time.Time `json:"order_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
