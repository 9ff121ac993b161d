package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"github.com/yigit/campus/internal/db"
	"github.com/yigit/campus/internal/metrics"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/dberrors"
	"github.com/yigit/campus/internal/pkg/logger"
)

// Table names
const (
	TableAdmin    = "admin"
	TableStudents = "students"
)

// Record store operation names, used in errors, logs and metrics
const (
	OpFetchAll   = "fetch_all"
	OpFetchWhere = "fetch_where"
	OpInsert     = "insert"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpInitialize = "initialize"
)

// Row is one record keyed by column name
type Row map[string]any

// Schema is the per-table column allow-list. Column order is the select order.
type Schema map[string][]string

// DefaultSchema returns the allow-list for the admin and students tables
func DefaultSchema() Schema {
	return Schema{
		TableAdmin:    {"id", "email", "password", "created_at"},
		TableStudents: {"idno", "lastname", "firstname", "course", "level", "image"},
	}
}

// RecordStore is a table-agnostic CRUD layer. Every table and column name is
// checked against the schema before SQL is built; values are always bound.
type RecordStore struct {
	db      *sql.DB
	dialect db.Dialect
	schema  Schema
	sb      squirrel.StatementBuilderType
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewRecordStore creates a store over an open database handle. m may be nil.
func NewRecordStore(handle *sql.DB, dialect db.Dialect, schema Schema, m *metrics.Metrics) *RecordStore {
	return &RecordStore{
		db:      handle,
		dialect: dialect,
		schema:  schema,
		sb:      squirrel.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		metrics: m,
		log:     logger.WithComponent("record_store"),
	}
}

// Initialize creates both tables when absent. Safe to call on every start.
func (s *RecordStore) Initialize(ctx context.Context) error {
	if err := s.EnsureAdminTable(ctx); err != nil {
		return err
	}
	return s.exec(ctx, OpInitialize, TableStudents, studentsDDL())
}

// EnsureAdminTable creates the admin table when absent
func (s *RecordStore) EnsureAdminTable(ctx context.Context) error {
	return s.exec(ctx, OpInitialize, TableAdmin, adminDDL(s.dialect))
}

func adminDDL(d db.Dialect) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id %s,
	email TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, TableAdmin, d.AutoIncrementPK)
}

func studentsDDL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	idno TEXT PRIMARY KEY,
	lastname TEXT NOT NULL,
	firstname TEXT NOT NULL,
	course TEXT NOT NULL,
	level TEXT NOT NULL,
	image TEXT
)`, TableStudents)
}

func (s *RecordStore) exec(ctx context.Context, op, table, ddl string) error {
	started := time.Now()
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return s.fail(op, table, started, dberrors.Classify(err), err)
	}
	s.metrics.ObserveStore(op, table, metrics.OutcomeOK, started)
	return nil
}

// FetchAll returns every row of table in storage order
func (s *RecordStore) FetchAll(ctx context.Context, table string) ([]Row, error) {
	started := time.Now()
	columns, err := s.columns(table)
	if err != nil {
		return nil, s.fail(OpFetchAll, table, started, err, nil)
	}

	query, args, err := s.sb.Select(columns...).From(table).ToSql()
	if err != nil {
		return nil, s.fail(OpFetchAll, table, started, apperrors.ErrStoreUnavailable, err)
	}
	return s.query(ctx, OpFetchAll, table, started, query, args)
}

// FetchWhere returns the rows matching every filter (equality, AND-ed). A nil
// value matches NULL; list values are rejected with apperrors.ErrNonScalar.
// No match yields an empty slice and a nil error.
func (s *RecordStore) FetchWhere(ctx context.Context, table string, filters map[string]any) ([]Row, error) {
	started := time.Now()
	columns, err := s.columns(table)
	if err != nil {
		return nil, s.fail(OpFetchWhere, table, started, err, nil)
	}
	if err := s.checkFilter(table, filters); err != nil {
		return nil, s.fail(OpFetchWhere, table, started, err, nil)
	}

	query, args, err := s.sb.Select(columns...).From(table).Where(squirrel.Eq(filters)).ToSql()
	if err != nil {
		return nil, s.fail(OpFetchWhere, table, started, apperrors.ErrStoreUnavailable, err)
	}
	return s.query(ctx, OpFetchWhere, table, started, query, args)
}

// Insert adds one row with exactly the supplied columns
func (s *RecordStore) Insert(ctx context.Context, table string, values map[string]any) error {
	started := time.Now()
	if err := s.checkColumns(table, values, apperrors.ErrNoChanges); err != nil {
		return s.fail(OpInsert, table, started, err, nil)
	}

	names := sortedKeys(values)
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = values[name]
	}

	query, bound, err := s.sb.Insert(table).Columns(names...).Values(args...).ToSql()
	if err != nil {
		return s.fail(OpInsert, table, started, apperrors.ErrStoreUnavailable, err)
	}

	affected, err := s.write(ctx, query, bound)
	if err != nil {
		return s.fail(OpInsert, table, started, dberrors.Classify(err), err)
	}
	if affected == 0 {
		return s.fail(OpInsert, table, started, apperrors.ErrConstraintViolation, nil)
	}

	s.metrics.ObserveStore(OpInsert, table, metrics.OutcomeOK, started)
	return nil
}

// Update sets changes on the rows matched by key and returns how many matched.
// Zero matches is ErrNotFound.
func (s *RecordStore) Update(ctx context.Context, table string, key, changes map[string]any) (int64, error) {
	started := time.Now()
	if err := s.checkFilter(table, key); err != nil {
		return 0, s.fail(OpUpdate, table, started, err, nil)
	}
	if err := s.checkColumns(table, changes, apperrors.ErrNoChanges); err != nil {
		return 0, s.fail(OpUpdate, table, started, err, nil)
	}

	query, args, err := s.sb.Update(table).SetMap(changes).Where(squirrel.Eq(key)).ToSql()
	if err != nil {
		return 0, s.fail(OpUpdate, table, started, apperrors.ErrStoreUnavailable, err)
	}

	affected, err := s.write(ctx, query, args)
	if err != nil {
		return 0, s.fail(OpUpdate, table, started, dberrors.Classify(err), err)
	}
	if affected == 0 {
		return 0, s.fail(OpUpdate, table, started, apperrors.ErrNotFound, nil)
	}

	s.metrics.ObserveStore(OpUpdate, table, metrics.OutcomeOK, started)
	return affected, nil
}

// Delete removes the rows matching every filter and returns how many were
// removed. Nothing matching is (0, nil).
func (s *RecordStore) Delete(ctx context.Context, table string, filters map[string]any) (int64, error) {
	started := time.Now()
	if err := s.checkFilter(table, filters); err != nil {
		return 0, s.fail(OpDelete, table, started, err, nil)
	}

	query, args, err := s.sb.Delete(table).Where(squirrel.Eq(filters)).ToSql()
	if err != nil {
		return 0, s.fail(OpDelete, table, started, apperrors.ErrStoreUnavailable, err)
	}

	affected, err := s.write(ctx, query, args)
	if err != nil {
		return 0, s.fail(OpDelete, table, started, dberrors.Classify(err), err)
	}

	s.metrics.ObserveStore(OpDelete, table, metrics.OutcomeOK, started)
	return affected, nil
}

// Ping reports whether the underlying store answers
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewStoreError("ping", "", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RecordStore) write(ctx context.Context, query string, args []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *RecordStore) query(ctx context.Context, op, table string, started time.Time, query string, args []any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail(op, table, started, dberrors.Classify(err), err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, s.fail(op, table, started, apperrors.ErrStoreUnavailable, err)
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(names))
		dest := make([]any, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, s.fail(op, table, started, apperrors.ErrStoreUnavailable, err)
		}

		row := make(Row, len(names))
		for i, name := range names {
			// text columns may come back as raw bytes depending on the driver
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, table, started, dberrors.Classify(err), err)
	}

	s.metrics.ObserveStore(op, table, metrics.OutcomeOK, started)
	return result, nil
}

func (s *RecordStore) columns(table string) ([]string, error) {
	columns, ok := s.schema[table]
	if !ok {
		return nil, apperrors.ErrUnknownTable
	}
	return columns, nil
}

// checkColumns validates every key of fields against the table's allow-list.
// An empty map yields emptyErr.
func (s *RecordStore) checkColumns(table string, fields map[string]any, emptyErr error) error {
	columns, err := s.columns(table)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return emptyErr
	}

	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	for name := range fields {
		if _, ok := allowed[name]; !ok {
			return fmt.Errorf("%w: %s.%s", apperrors.ErrUnknownColumn, table, name)
		}
	}
	return nil
}

// checkFilter validates an equality filter. squirrel.Eq expands slices and
// arrays (including []byte) into IN lists, so only single values are accepted.
func (s *RecordStore) checkFilter(table string, filters map[string]any) error {
	if err := s.checkColumns(table, filters, apperrors.ErrEmptyFilter); err != nil {
		return err
	}
	for name, value := range filters {
		if value == nil {
			continue
		}
		if kind := reflect.TypeOf(value).Kind(); kind == reflect.Slice || kind == reflect.Array {
			return fmt.Errorf("%w: %s.%s", apperrors.ErrNonScalar, table, name)
		}
	}
	return nil
}

// fail records the outcome, logs it and returns the typed error
func (s *RecordStore) fail(op, table string, started time.Time, kind, cause error) error {
	outcome := outcomeOf(kind)
	s.metrics.ObserveStore(op, table, outcome, started)

	storeErr := apperrors.NewStoreError(op, table, kind, cause)
	event := s.log.Warn()
	if outcome == metrics.OutcomeUnavailable {
		event = s.log.Error()
	}
	event.Err(storeErr).Str("op", op).Str("table", table).Str("outcome", outcome).Msg("Record store operation failed")
	return storeErr
}

func outcomeOf(kind error) string {
	switch {
	case errors.Is(kind, apperrors.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(kind, apperrors.ErrConstraintViolation):
		return metrics.OutcomeConstraint
	case errors.Is(kind, apperrors.ErrStoreUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeRejected
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
