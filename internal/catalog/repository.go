package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/sqlite"
)

var (
	// ErrInvalidField means a field name outside the allow-list was requested.
	ErrInvalidField = errors.NewSentinel("invalid catalog field")
	// ErrCatalogUnavailable means the downstream catalog query failed.
	ErrCatalogUnavailable = errors.NewSentinel("catalog unavailable")
)

const selectColumns = "id, manufacturer, model, style, battery_type, power_level, bluetooth, price_category"

type Repository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewRepository(dbs *sqlite.Database, logger *slog.Logger) *Repository {
	return &Repository{
		dbs:    dbs,
		logger: logger.With("source", "catalog.Repository"),
	}
}

// QueryByFilters returns the devices matching the compiled filter predicate.
// An empty filter list returns the whole catalog.
func (r *Repository) QueryByFilters(ctx context.Context, filters []models.FilterSpec) ([]models.HearingAid, error) {
	predicate, args := CompileFilters(filters)
	stmt := fmt.Sprintf("SELECT %s FROM hearing_aids", selectColumns)
	if predicate != "" {
		stmt += " WHERE " + predicate
	}
	stmt += " ORDER BY manufacturer, model"

	var aids []models.HearingAid
	if err := r.dbs.ReadOnly.SelectContext(ctx, &aids, stmt, args...); err != nil {
		return nil, errors.Wrap(errors.Join(ErrCatalogUnavailable, err), "query devices",
			slog.String("predicate", predicate))
	}
	return aids, nil
}

// CountAll returns the total number of catalog rows.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.dbs.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM hearing_aids"); err != nil {
		return 0, errors.Wrap(errors.Join(ErrCatalogUnavailable, err), "count devices")
	}
	return count, nil
}

// DistinctValues enumerates the distinct non-empty values of an allow-listed
// column. Any other field name fails with ErrInvalidField.
func (r *Repository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	if !FieldAllowed(field) {
		return nil, errors.Wrap(ErrInvalidField, "distinct values", slog.String("field", field))
	}

	// The field passed the allow-list, so rendering it into the statement is safe.
	stmt := fmt.Sprintf(
		"SELECT DISTINCT %s FROM hearing_aids WHERE %s IS NOT NULL AND %s != '' ORDER BY %s",
		field, field, field, field)

	var values []string
	if err := r.dbs.ReadOnly.SelectContext(ctx, &values, stmt); err != nil {
		return nil, errors.Wrap(errors.Join(ErrCatalogUnavailable, err), "distinct values",
			slog.String("field", field))
	}
	return values, nil
}

// Insert adds a device to the catalog. Used by the CLI seeder.
func (r *Repository) Insert(ctx context.Context, aid models.HearingAid) (int64, error) {
	stmt := `INSERT INTO hearing_aids (manufacturer, model, style, battery_type, power_level, bluetooth, price_category)
VALUES (:manufacturer, :model, :style, :battery_type, :power_level, :bluetooth, :price_category)`
	result, err := r.dbs.ReadWrite.NamedExecContext(ctx, stmt, aid)
	if err != nil {
		return 0, errors.Wrap(err, "insert device",
			slog.String("manufacturer", aid.Manufacturer), slog.String("model", aid.Model))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "device insert id")
	}
	return id, nil
}
