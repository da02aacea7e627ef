package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/migrations"
	"github.com/khoahotran/cvnova/pkg/logger"
)

const kvTable = "kv_store"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RunMigrations applies the embedded schema to the database behind dsn.
func RunMigrations(dsn string, log logger.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database schema is up to date.")
	return nil
}

type postgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) service.KeyValueStore {
	return &postgresStore{db: db}
}

func (s *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := psql.Select("value").From(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var value []byte
	if err := s.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrKeyNotFound
		}
		return nil, fmt.Errorf("error when query key %q: %w", key, err)
	}
	return value, nil
}

func (s *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := psql.Insert(kvTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set query: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error when upsert key %q: %w", key, err)
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	query, args, err := psql.Delete(kvTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error when delete key %q: %w", key, err)
	}
	return nil
}

func (s *postgresStore) GetByPrefix(ctx context.Context, prefix string) ([]service.Entry, error) {
	query, args, err := psql.Select("key", "value").
		From(kvTable).
		Where(sq.Like{"key": escapeLike(prefix) + "%"}).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build prefix query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error when query prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var out []service.Entry
	for rows.Next() {
		var e service.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan kv row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *postgresStore) Incr(ctx context.Context, key string) (int64, error) {
	query, args, err := psql.Insert(kvTable).
		Columns("key", "value").
		Values(key, sq.Expr("'1'::jsonb")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = to_jsonb((" + kvTable + ".value #>> '{}')::bigint + 1), updated_at = NOW()").
		Suffix("RETURNING (value #>> '{}')::bigint").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build incr query: %w", err)
	}

	var n int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error when increment key %q: %w", key, err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
