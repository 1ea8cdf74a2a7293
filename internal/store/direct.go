package store

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/comexware/importdesk/internal/models"
)

// errDirectUnavailable stands in for a dead connection when the process
// started without a usable database handle. It classifies as connectivity so
// the router fails over exactly as it would for a refused dial.
var errDirectUnavailable = errors.New("direct path unavailable: no database connection")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DirectExecutor issues parameterized SQL against the database over its
// native protocol. Filtering and ordering are pushed server-side; this is
// the cheaper, lower-latency path when the database port is reachable.
type DirectExecutor struct {
	db     *gorm.DB
	schema string
}

// NewDirectExecutor wraps a gorm handle. db may be nil when the startup
// connection failed; every call then reports a connectivity failure.
func NewDirectExecutor(db *gorm.DB, schema string) *DirectExecutor {
	return &DirectExecutor{db: db, schema: schema}
}

// Name identifies the path in logs and classified errors
func (e *DirectExecutor) Name() string { return "direct" }

func (e *DirectExecutor) table(name string) string {
	if e.schema == "" || e.schema == "public" {
		return name
	}
	return e.schema + "." + name
}

func (e *DirectExecutor) selectAll(table string, f RowFilter) (string, []interface{}, error) {
	qb := psql.Select("*").
		From(e.table(table)).
		OrderBy("created_at ASC", "id ASC")
	if f.BusinessKey != nil {
		qb = qb.Where(sq.Eq{"business_key": *f.BusinessKey})
	}
	return qb.ToSql()
}

// ListLineItems returns raw order rows, ordered created_at then id
func (e *DirectExecutor) ListLineItems(ctx context.Context, f RowFilter) ([]models.ImportLineItem, error) {
	var rows []models.ImportLineItem
	if err := e.scanAll(ctx, models.ImportLineItem{}.TableName(), f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTransit returns raw logistics rows, ordered created_at then id
func (e *DirectExecutor) ListTransit(ctx context.Context, f RowFilter) ([]models.TransitRecord, error) {
	var rows []models.TransitRecord
	if err := e.scanAll(ctx, models.TransitRecord{}.TableName(), f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListReceived returns raw receiving rows, ordered created_at then id
func (e *DirectExecutor) ListReceived(ctx context.Context, f RowFilter) ([]models.ReceivedRecord, error) {
	var rows []models.ReceivedRecord
	if err := e.scanAll(ctx, models.ReceivedRecord{}.TableName(), f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *DirectExecutor) scanAll(ctx context.Context, table string, f RowFilter, dest interface{}) error {
	if e.db == nil {
		return &ClassifiedError{Kind: ClassConnectivity, Path: e.Name(), Err: errDirectUnavailable}
	}
	query, args, err := e.selectAll(table, f)
	if err != nil {
		return &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}
	if err := e.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error; err != nil {
		return Classify(e.Name(), err)
	}
	return nil
}

// UpdateLineItem patches one row by primary key
func (e *DirectExecutor) UpdateLineItem(ctx context.Context, id uint64, fields map[string]interface{}) error {
	if e.db == nil {
		return &ClassifiedError{Kind: ClassConnectivity, Path: e.Name(), Err: errDirectUnavailable}
	}
	query, args, err := psql.Update(e.table(models.ImportLineItem{}.TableName())).
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}

	tx := e.db.WithContext(ctx).Exec(query, args...)
	if tx.Error != nil {
		return Classify(e.Name(), tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping verifies the native protocol path without touching business tables
func (e *DirectExecutor) Ping(ctx context.Context) error {
	if e.db == nil {
		return &ClassifiedError{Kind: ClassConnectivity, Path: e.Name(), Err: errDirectUnavailable}
	}
	if err := e.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return Classify(e.Name(), err)
	}
	return nil
}
