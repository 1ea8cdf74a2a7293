package aggregate

import (
	"testing"

	"github.com/comexware/importdesk/internal/models"
)

func sampleEntities() []models.ImportProcess {
	return []models.ImportProcess{
		{BusinessKey: 300, Supplier: "Shenzhen Metals", ReferenceDocument: "INV-88", StatusLabel: "In Port"},
		{BusinessKey: 200, Supplier: "Hamburg Parts", ReferenceDocument: "PO-512", StatusLabel: "Ordered"},
		{BusinessKey: 100, Supplier: "Rotterdam Cargo", ReferenceDocument: "INV-17", StatusLabel: "Arrived"},
	}
}

func TestApplyFilter_EmptyCriteriaReturnsEverything(t *testing.T) {
	got := ApplyFilter(sampleEntities(), Criteria{})
	if len(got) != 3 {
		t.Fatalf("expected all 3 entities, got %d", len(got))
	}
}

func TestApplyFilter_StatusIsExactMatch(t *testing.T) {
	got := ApplyFilter(sampleEntities(), Criteria{StatusEquals: "Ordered"})
	if len(got) != 1 || got[0].BusinessKey != 200 {
		t.Fatalf("expected only key 200, got %+v", got)
	}

	// Substring of a status must not match
	got = ApplyFilter(sampleEntities(), Criteria{StatusEquals: "Order"})
	if len(got) != 0 {
		t.Fatalf("status must match exactly, got %+v", got)
	}
}

func TestApplyFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := ApplyFilter(sampleEntities(), Criteria{SearchText: "hamburg"})
	if len(got) != 1 || got[0].BusinessKey != 200 {
		t.Fatalf("expected supplier match for key 200, got %+v", got)
	}

	got = ApplyFilter(sampleEntities(), Criteria{SearchText: "inv-"})
	if len(got) != 2 {
		t.Fatalf("expected 2 reference matches, got %d", len(got))
	}
}

func TestApplyFilter_SearchMatchesBusinessKey(t *testing.T) {
	got := ApplyFilter(sampleEntities(), Criteria{SearchText: "30"})
	if len(got) != 1 || got[0].BusinessKey != 300 {
		t.Fatalf("expected key substring match, got %+v", got)
	}
}

func TestApplyFilter_PredicatesAreANDed(t *testing.T) {
	// Search matches key 300, status matches key 200; combined matches none
	got := ApplyFilter(sampleEntities(), Criteria{StatusEquals: "Ordered", SearchText: "shenzhen"})
	if len(got) != 0 {
		t.Fatalf("expected no entity to satisfy both predicates, got %+v", got)
	}

	got = ApplyFilter(sampleEntities(), Criteria{StatusEquals: "In Port", SearchText: "shenzhen"})
	if len(got) != 1 || got[0].BusinessKey != 300 {
		t.Fatalf("expected key 300 to satisfy both predicates, got %+v", got)
	}
}

func TestFilterTransit(t *testing.T) {
	records := []models.TransitRecord{
		{BusinessKey: 100, Carrier: "Maersk", Container: "MSKU123"},
		{BusinessKey: 200, Carrier: "Hapag", Container: "HLCU456"},
	}

	got := FilterTransit(records, "msku")
	if len(got) != 1 || got[0].BusinessKey != 100 {
		t.Fatalf("expected container match, got %+v", got)
	}

	if got := FilterTransit(records, ""); len(got) != 2 {
		t.Fatalf("empty search must pass everything, got %d", len(got))
	}
}

func TestFilterReceived(t *testing.T) {
	records := []models.ReceivedRecord{
		{BusinessKey: 100, Warehouse: "Santos", InvoiceNumber: "NF-1"},
		{BusinessKey: 200, Warehouse: "Itajai", InvoiceNumber: "NF-2"},
	}

	got := FilterReceived(records, "santos")
	if len(got) != 1 || got[0].BusinessKey != 100 {
		t.Fatalf("expected warehouse match, got %+v", got)
	}
}
