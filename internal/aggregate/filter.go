package aggregate

import (
	"strconv"
	"strings"

	"github.com/comexware/importdesk/internal/models"
)

// Criteria are the caller-supplied predicates for the process list. They are
// evaluated in memory after aggregation: the business key does not exist as
// a row in the primary table, so pre-aggregation filtering would miss it.
// Enabled predicates are ANDed.
type Criteria struct {
	// StatusEquals matches the merged status label exactly
	StatusEquals string
	// SearchText matches case-insensitively as a substring across supplier,
	// reference document, status and the business key
	SearchText string
}

// Empty reports whether no predicate is enabled
func (c Criteria) Empty() bool {
	return c.StatusEquals == "" && c.SearchText == ""
}

// ApplyFilter returns the entities matching every enabled predicate
func ApplyFilter(entities []models.ImportProcess, c Criteria) []models.ImportProcess {
	if c.Empty() {
		return entities
	}

	needle := strings.ToLower(c.SearchText)
	out := make([]models.ImportProcess, 0, len(entities))
	for _, e := range entities {
		if c.StatusEquals != "" && e.StatusLabel != c.StatusEquals {
			continue
		}
		if needle != "" && !matchesProcess(e, needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesProcess(e models.ImportProcess, needle string) bool {
	return containsFold(e.Supplier, needle) ||
		containsFold(e.ReferenceDocument, needle) ||
		containsFold(e.StatusLabel, needle) ||
		strings.Contains(strconv.FormatInt(e.BusinessKey, 10), needle)
}

// FilterTransit applies a free-text predicate to raw transit rows
func FilterTransit(records []models.TransitRecord, search string) []models.TransitRecord {
	if search == "" {
		return records
	}
	needle := strings.ToLower(search)
	out := make([]models.TransitRecord, 0, len(records))
	for _, r := range records {
		if containsFold(r.Carrier, needle) ||
			containsFold(r.Agent, needle) ||
			containsFold(r.Container, needle) ||
			containsFold(r.InvoiceNumber, needle) ||
			containsFold(r.StatusLabel, needle) ||
			strings.Contains(strconv.FormatInt(r.BusinessKey, 10), needle) {
			out = append(out, r)
		}
	}
	return out
}

// FilterReceived applies a free-text predicate to raw receiving rows
func FilterReceived(records []models.ReceivedRecord, search string) []models.ReceivedRecord {
	if search == "" {
		return records
	}
	needle := strings.ToLower(search)
	out := make([]models.ReceivedRecord, 0, len(records))
	for _, r := range records {
		if containsFold(r.Container, needle) ||
			containsFold(r.InvoiceNumber, needle) ||
			containsFold(r.Warehouse, needle) ||
			containsFold(r.Notes, needle) ||
			strings.Contains(strconv.FormatInt(r.BusinessKey, 10), needle) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
