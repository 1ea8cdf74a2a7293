package store

import (
	"context"

	"github.com/comexware/importdesk/internal/models"
)

// RowFilter is the filter an executor may push down to its backend. Text
// search is deliberately absent: free-text predicates only make sense on the
// merged entity, so they are applied in memory after aggregation.
type RowFilter struct {
	// BusinessKey restricts rows to one import process when non-nil
	BusinessKey *int64
}

// KeyFilter builds a RowFilter scoped to one business key
func KeyFilter(key int64) RowFilter {
	return RowFilter{BusinessKey: &key}
}

// QueryExecutor is the uniform surface over one access path to the dataset.
// Implementations never retry internally and never treat an empty result as
// a failure; a nil error with zero rows is a valid response. All reads return
// rows ordered by created_at then id ascending, so "last row wins" semantics
// upstream do not depend on backend return order.
type QueryExecutor interface {
	ListLineItems(ctx context.Context, f RowFilter) ([]models.ImportLineItem, error)
	ListTransit(ctx context.Context, f RowFilter) ([]models.TransitRecord, error)
	ListReceived(ctx context.Context, f RowFilter) ([]models.ReceivedRecord, error)

	// UpdateLineItem patches the given row with an allowed-column subset.
	// Column filtering is the caller's responsibility; the executor applies
	// the map as-is.
	UpdateLineItem(ctx context.Context, id uint64, fields map[string]interface{}) error

	// Ping verifies the path is reachable without touching business tables
	Ping(ctx context.Context) error

	// Name identifies the path in logs and classified errors
	Name() string
}
