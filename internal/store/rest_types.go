package store

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/comexware/importdesk/internal/models"
)

// The resource API returns rows with looser typing than the SQL driver:
// timestamps come without a zone, numeric keys occasionally arrive as
// strings, and optional columns may be null or absent entirely. These wire
// types absorb that looseness so only clean typed models cross into the
// aggregation layer.

// restTime accepts the timestamp renditions PostgREST emits
type restTime struct {
	time.Time
}

var restTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *restTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	for _, layout := range restTimeFormats {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Unparseable timestamp degrades to zero rather than failing the row
	t.Time = time.Time{}
	return nil
}

func (t restTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	out := t.Time
	return &out
}

// restKey accepts a business key as number, numeric string, or null.
// Anything else parses to zero; aggregation drops zero keys with a log line
// instead of failing the request.
type restKey int64

func (k *restKey) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*k = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*k = 0
		return nil
	}
	*k = restKey(n)
	return nil
}

type restLineItem struct {
	ID                uint64          `json:"id"`
	BusinessKey       restKey         `json:"business_key"`
	Supplier          string          `json:"supplier"`
	ReferenceDocument string          `json:"reference_document"`
	StatusLabel       string          `json:"status_label"`
	OrderDate         restTime        `json:"order_date"`
	EstimatedArrival  restTime        `json:"estimated_arrival"`
	ProductCode       string          `json:"product_code"`
	Description       string          `json:"description"`
	Quantity          float64         `json:"quantity"`
	UnitPriceForeign  float64         `json:"unit_price_foreign"`
	UnitPriceLocal    float64         `json:"unit_price_local"`
	TotalForeign      float64         `json:"total_foreign"`
	FreightForeign    float64         `json:"freight_foreign"`
	Metadata          json.RawMessage `json:"metadata"`
	CreatedAt         restTime        `json:"created_at"`
}

func (w restLineItem) toModel() models.ImportLineItem {
	return models.ImportLineItem{
		ID:                w.ID,
		BusinessKey:       int64(w.BusinessKey),
		Supplier:          w.Supplier,
		ReferenceDocument: w.ReferenceDocument,
		StatusLabel:       w.StatusLabel,
		OrderDate:         w.OrderDate.ptr(),
		EstimatedArrival:  w.EstimatedArrival.ptr(),
		ProductCode:       w.ProductCode,
		Description:       w.Description,
		Quantity:          w.Quantity,
		UnitPriceForeign:  w.UnitPriceForeign,
		UnitPriceLocal:    w.UnitPriceLocal,
		TotalForeign:      w.TotalForeign,
		FreightForeign:    w.FreightForeign,
		Metadata:          datatypes.JSON(w.Metadata),
		CreatedAt:         w.CreatedAt.Time,
	}
}

type restTransitRecord struct {
	ID               uint64          `json:"id"`
	BusinessKey      restKey         `json:"business_key"`
	Carrier          string          `json:"carrier"`
	Agent            string          `json:"agent"`
	Container        string          `json:"container"`
	InvoiceNumber    string          `json:"invoice_number"`
	StatusLabel      string          `json:"status_label"`
	EstimatedArrival restTime        `json:"estimated_arrival"`
	ArrivalDate      restTime        `json:"arrival_date"`
	Metadata         json.RawMessage `json:"metadata"`
	CreatedAt        restTime        `json:"created_at"`
}

func (w restTransitRecord) toModel() models.TransitRecord {
	return models.TransitRecord{
		ID:               w.ID,
		BusinessKey:      int64(w.BusinessKey),
		Carrier:          w.Carrier,
		Agent:            w.Agent,
		Container:        w.Container,
		InvoiceNumber:    w.InvoiceNumber,
		StatusLabel:      w.StatusLabel,
		EstimatedArrival: w.EstimatedArrival.ptr(),
		ArrivalDate:      w.ArrivalDate.ptr(),
		Metadata:         datatypes.JSON(w.Metadata),
		CreatedAt:        w.CreatedAt.Time,
	}
}

type restReceivedRecord struct {
	ID            uint64   `json:"id"`
	BusinessKey   restKey  `json:"business_key"`
	Container     string   `json:"container"`
	InvoiceNumber string   `json:"invoice_number"`
	Warehouse     string   `json:"warehouse"`
	Quantity      float64  `json:"quantity"`
	ReceivedDate  restTime `json:"received_date"`
	Notes         string   `json:"notes"`
	CreatedAt     restTime `json:"created_at"`
}

func (w restReceivedRecord) toModel() models.ReceivedRecord {
	return models.ReceivedRecord{
		ID:            w.ID,
		BusinessKey:   int64(w.BusinessKey),
		Container:     w.Container,
		InvoiceNumber: w.InvoiceNumber,
		Warehouse:     w.Warehouse,
		Quantity:      w.Quantity,
		ReceivedDate:  w.ReceivedDate.ptr(),
		Notes:         w.Notes,
		CreatedAt:     w.CreatedAt.Time,
	}
}
