// Package service is the only surface the UI collaborator calls. It composes
// the access router, retry policy and executors with the pure aggregation
// layer, and returns either data (possibly empty) or a typed failure, never
// a raw transport error.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comexware/importdesk/internal/aggregate"
	"github.com/comexware/importdesk/internal/models"
	"github.com/comexware/importdesk/internal/store"
)

// ErrNoFields signals an update request that patches nothing
var ErrNoFields = errors.New("no updatable fields provided")

// ProcessService reads and updates import processes through whichever access
// path the router has resolved. Every method re-reads and re-aggregates; the
// only cross-call state is the router's access pin.
type ProcessService struct {
	router *store.AccessRouter
	logger *log.Logger
}

// NewProcessService wires the façade
func NewProcessService(router *store.AccessRouter, logger *log.Logger) *ProcessService {
	if logger == nil {
		logger = log.Default()
	}
	return &ProcessService{router: router, logger: logger}
}

func (s *ProcessService) sourceTag(ex store.QueryExecutor) models.SourceTag {
	if ex == s.router.Rest() {
		return models.SourceREST
	}
	return models.SourceDirect
}

// ListProcesses returns the aggregated process list matching the criteria.
// Zero matches is a valid, successful response.
func (s *ProcessService) ListProcesses(ctx context.Context, criteria aggregate.Criteria) ([]models.ImportProcess, error) {
	var (
		items   []models.ImportLineItem
		transit []models.TransitRecord
		source  models.SourceTag
	)
	err := s.router.Do(ctx, func(c context.Context, ex store.QueryExecutor) error {
		var err error
		if items, err = ex.ListLineItems(c, store.RowFilter{}); err != nil {
			return err
		}
		if transit, err = ex.ListTransit(c, store.RowFilter{}); err != nil {
			return err
		}
		source = s.sourceTag(ex)
		return nil
	})
	if err != nil {
		return nil, err
	}

	entities := aggregate.Merge(items, transit)
	for i := range entities {
		entities[i].SourceTag = source
	}
	return aggregate.ApplyFilter(entities, criteria), nil
}

// ListChildProducts returns the detail rows under one process. An unknown
// key yields an empty list, not an error.
func (s *ProcessService) ListChildProducts(ctx context.Context, key int64) ([]models.ChildProduct, error) {
	var items []models.ImportLineItem
	err := s.router.Do(ctx, func(c context.Context, ex store.QueryExecutor) error {
		var err error
		items, err = ex.ListLineItems(c, store.KeyFilter(key))
		return err
	})
	if err != nil {
		return nil, err
	}
	return aggregate.Children(items, key), nil
}

// ListTransitRecords returns raw transit rows, optionally scoped to one key
// and narrowed by free text
func (s *ProcessService) ListTransitRecords(ctx context.Context, key *int64, search string) ([]models.TransitRecord, error) {
	f := store.RowFilter{BusinessKey: key}
	var records []models.TransitRecord
	err := s.router.Do(ctx, func(c context.Context, ex store.QueryExecutor) error {
		var err error
		records, err = ex.ListTransit(c, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return aggregate.FilterTransit(records, search), nil
}

// ListReceivedRecords returns raw receiving rows, optionally scoped to one
// key and narrowed by free text
func (s *ProcessService) ListReceivedRecords(ctx context.Context, key *int64, search string) ([]models.ReceivedRecord, error) {
	f := store.RowFilter{BusinessKey: key}
	var records []models.ReceivedRecord
	err := s.router.Do(ctx, func(c context.Context, ex store.QueryExecutor) error {
		var err error
		records, err = ex.ListReceived(c, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return aggregate.FilterReceived(records, search), nil
}

// HeaderPatch is the narrow set of header-like fields the update path may
// change. Nil members are left untouched.
type HeaderPatch struct {
	Supplier          *string    `json:"supplier,omitempty"`
	ReferenceDocument *string    `json:"reference_document,omitempty"`
	StatusLabel       *string    `json:"status_label,omitempty"`
	OrderDate         *time.Time `json:"order_date,omitempty"`
	EstimatedArrival  *time.Time `json:"estimated_arrival,omitempty"`
}

// Columns renders the patch as an allowed-column map for the executors
func (p HeaderPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Supplier != nil {
		cols["supplier"] = *p.Supplier
	}
	if p.ReferenceDocument != nil {
		cols["reference_document"] = *p.ReferenceDocument
	}
	if p.StatusLabel != nil {
		cols["status_label"] = *p.StatusLabel
	}
	if p.OrderDate != nil {
		cols["order_date"] = *p.OrderDate
	}
	if p.EstimatedArrival != nil {
		cols["estimated_arrival"] = *p.EstimatedArrival
	}
	for name := range cols {
		if !models.HeaderColumns[name] {
			delete(cols, name)
		}
	}
	return cols
}

// UpdateProcessHeader patches header fields on the most recent line item for
// the key (older rows stay untouched so the append-only history survives)
// and returns the re-aggregated entity. Fails with store.ErrNotFound when the
// key has no line items. Transit records are never written.
func (s *ProcessService) UpdateProcessHeader(ctx context.Context, key int64, patch HeaderPatch) (models.ImportProcess, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return models.ImportProcess{}, ErrNoFields
	}

	var (
		items   []models.ImportLineItem
		transit []models.TransitRecord
		source  models.SourceTag
	)
	err := s.router.Do(ctx, func(c context.Context, ex store.QueryExecutor) error {
		current, err := ex.ListLineItems(c, store.KeyFilter(key))
		if err != nil {
			return err
		}
		target, ok := aggregate.Newest(current, key)
		if !ok {
			return store.ErrNotFound
		}
		if err := ex.UpdateLineItem(c, target.ID, cols); err != nil {
			return err
		}

		// Re-read so the caller sees the entity as the next list call would
		if items, err = ex.ListLineItems(c, store.KeyFilter(key)); err != nil {
			return err
		}
		if transit, err = ex.ListTransit(c, store.KeyFilter(key)); err != nil {
			return err
		}
		source = s.sourceTag(ex)
		return nil
	})
	if err != nil {
		return models.ImportProcess{}, err
	}

	for _, entity := range aggregate.Merge(items, transit) {
		if entity.BusinessKey == key {
			entity.SourceTag = source
			return entity, nil
		}
	}
	return models.ImportProcess{}, store.ErrNotFound
}

// PathStatus is the probe outcome for one access path
type PathStatus struct {
	Path    string `json:"path"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// DiagnosticReport is what the operator-facing "test database" button shows
type DiagnosticReport struct {
	OK      bool         `json:"ok"`
	Active  string       `json:"active_path"`
	Message string       `json:"message"`
	Paths   []PathStatus `json:"paths"`
}

// TestConnection probes both access paths regardless of the router's pin, so
// an operator can see that the direct path has recovered even while the
// process is still pinned to REST.
func (s *ProcessService) TestConnection(ctx context.Context) DiagnosticReport {
	report := DiagnosticReport{Active: s.router.State().String()}

	probe := func(ex store.QueryExecutor) PathStatus {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := ex.Ping(probeCtx); err != nil {
			ce := store.Classify(ex.Name(), err)
			return PathStatus{
				Path:    ex.Name(),
				OK:      false,
				Code:    string(ce.Kind),
				Message: ce.Err.Error(),
			}
		}
		return PathStatus{Path: ex.Name(), OK: true, Message: "reachable"}
	}

	report.Paths = append(report.Paths, probe(s.router.Direct()))
	if rest := s.router.Rest(); rest != nil {
		report.Paths = append(report.Paths, probe(rest))
	}

	reachable := make([]string, 0, len(report.Paths))
	for _, p := range report.Paths {
		if p.OK {
			report.OK = true
			reachable = append(reachable, p.Path)
		}
	}
	switch len(reachable) {
	case 0:
		report.Message = "no access path is reachable; check network and credentials"
	case 1:
		report.Message = fmt.Sprintf("%s path reachable; active path is %s", reachable[0], report.Active)
	default:
		report.Message = fmt.Sprintf("both paths reachable; active path is %s", report.Active)
	}
	return report
}
