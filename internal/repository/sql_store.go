package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

const tableComparisons = "comparisons"

// sqlStore keeps each comparison as one row: indexed columns for listing plus
// the full record as a JSON payload.
type sqlStore struct {
	drv     *entsql.Driver
	locks   *keyedMutex
	onClose func()
	logger  *slog.Logger
}

// NewSQLStore creates the table when missing. onClose runs after the driver
// closes (the pgx pool, for postgres).
func NewSQLStore(ctx context.Context, drv *entsql.Driver, onClose func(), logger *slog.Logger) (ComparisonStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &sqlStore{drv: drv, locks: newKeyedMutex(), onClose: onClose, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

// The DDL is plain SQL that postgres and sqlite both accept; the dialect
// builder only covers queries.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + tableComparisons + ` (
	id varchar(36) NOT NULL PRIMARY KEY,
	created_at bigint NOT NULL,
	status varchar(16) NOT NULL,
	payload text NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS comparisons_created_at_idx ON ` + tableComparisons + ` (created_at)`,
}

func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return common.NewAppError(common.CodeInternal, "create comparisons table", errors.Join(common.ErrDatabase, err))
		}
	}
	return nil
}

func (s *sqlStore) Put(ctx context.Context, c entity.Comparison) error {
	if c.ID == "" {
		return common.InvalidInputf("comparison id is required")
	}
	unlock := s.locks.Lock(c.ID)
	defer unlock()

	if _, err := s.load(ctx, c.ID); err == nil {
		return common.NewAppError(common.CodeInvalidInput, "comparison "+c.ID+" already exists", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode comparison: %w", err)
	}
	q, args := s.builder().Insert(tableComparisons).
		Columns("id", "created_at", "status", "payload").
		Values(c.ID, c.CreatedAt.UnixMicro(), string(c.Status), string(payload)).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		s.logger.Error("repository.put.failed", "comparison_id", c.ID, "error", err)
		return errors.Join(common.ErrDatabase, err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (entity.Comparison, error) {
	return s.load(ctx, id)
}

func (s *sqlStore) load(ctx context.Context, id string) (entity.Comparison, error) {
	q, args := s.builder().Select("payload").
		From(entsql.Table(tableComparisons)).
		Where(entsql.EQ("id", id)).
		Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return entity.Comparison{}, errors.Join(common.ErrDatabase, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return entity.Comparison{}, errors.Join(common.ErrDatabase, err)
		}
		return entity.Comparison{}, common.NotFoundf("comparison %s not found", id)
	}
	var payload string
	if err := rows.Scan(&payload); err != nil {
		return entity.Comparison{}, errors.Join(common.ErrDatabase, err)
	}
	return decodeComparison(payload)
}

func (s *sqlStore) Update(ctx context.Context, id string, fn func(*entity.Comparison) error) (entity.Comparison, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.load(ctx, id)
	if err != nil {
		return entity.Comparison{}, err
	}
	if err := fn(&c); err != nil {
		return entity.Comparison{}, err
	}
	c.ID = id

	payload, err := json.Marshal(c)
	if err != nil {
		return entity.Comparison{}, fmt.Errorf("encode comparison: %w", err)
	}
	q, args := s.builder().Update(tableComparisons).
		Set("status", string(c.Status)).
		Set("payload", string(payload)).
		Where(entsql.EQ("id", id)).
		Query()
	var res sql.Result
	if err := s.drv.Exec(ctx, q, args, &res); err != nil {
		s.logger.Error("repository.update.failed", "comparison_id", id, "error", err)
		return entity.Comparison{}, errors.Join(common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.Comparison{}, common.NotFoundf("comparison %s not found", id)
	}
	return c, nil
}

func (s *sqlStore) List(ctx context.Context) ([]entity.Comparison, error) {
	q, args := s.builder().Select("payload").
		From(entsql.Table(tableComparisons)).
		OrderBy(entsql.Desc("created_at"), entsql.Asc("id")).
		Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.Comparison
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Join(common.ErrDatabase, err)
		}
		c, err := decodeComparison(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	if err := s.drv.DB().PingContext(ctx); err != nil {
		return errors.Join(common.ErrDatabase, err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	err := s.drv.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

func decodeComparison(payload string) (entity.Comparison, error) {
	var c entity.Comparison
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return entity.Comparison{}, fmt.Errorf("decode comparison: %w", err)
	}
	return c, nil
}
