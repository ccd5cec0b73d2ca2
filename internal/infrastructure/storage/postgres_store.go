package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"NewsCapsule/internal/domain"
	"NewsCapsule/internal/ports"
	"NewsCapsule/internal/report"
)

// PostgresStore persists capsule reports keyed by date and capsule type.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ReportStore = (*PostgresStore)(nil)

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport upserts the structured report snapshot. Re-running a capsule
// for the same date and type overwrites the previous snapshot.
func (s *PostgresStore) SaveReport(ctx context.Context, capsuleType string, r domain.Report) error {
	if s.db == nil {
		return nil
	}

	payload, err := json.Marshal(report.BuildPayload(r))
	if err != nil {
		return fmt.Errorf("marshal report payload: %w", err)
	}

	query, args, err := s.builder.
		Insert("news_capsules").
		Columns("capsule_date", "capsule_type", "payload").
		Values(r.Date, capsuleType, payload).
		Suffix(`ON CONFLICT (capsule_date, capsule_type) DO UPDATE
                SET payload = EXCLUDED.payload,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert capsule: %w", err)
	}
	return nil
}

// LoadReport fetches the stored payload for a date and capsule type.
func (s *PostgresStore) LoadReport(ctx context.Context, date, capsuleType string) (report.Payload, error) {
	var payload report.Payload
	if s.db == nil {
		return payload, sql.ErrConnDone
	}

	query, args, err := s.builder.
		Select("payload").
		From("news_capsules").
		Where(sq.Eq{"capsule_date": date, "capsule_type": capsuleType}).
		ToSql()
	if err != nil {
		return payload, fmt.Errorf("build select: %w", err)
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return payload, fmt.Errorf("query capsule: %w", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("decode capsule payload: %w", err)
	}
	return payload, nil
}
