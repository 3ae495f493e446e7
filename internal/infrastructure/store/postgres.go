package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	version    BIGINT      NOT NULL,
	data       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// PostgresStore keeps documents as JSONB rows in a single documents table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// EnsureSchema creates the documents table if needed.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, postgresSchema)
	return err
}

func (ps *PostgresStore) Insert(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := ps.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, version, data)
		 VALUES ($1, $2, 0, $3)
		 ON CONFLICT (collection, id) DO NOTHING`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateID
	}
	return nil
}

func (ps *PostgresStore) Get(ctx context.Context, collection, id string, out any) error {
	var data []byte
	err := ps.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return json.Unmarshal(data, out)
}

func (ps *PostgresStore) Replace(ctx context.Context, collection, id string, version int64, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := ps.db.ExecContext(ctx,
		`UPDATE documents
		 SET data = $4, version = version + 1, updated_at = now()
		 WHERE collection = $1 AND id = $2 AND version = $3`,
		collection, id, version, data,
	)
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := ps.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
		collection, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (ps *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := ps.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (ps *PostgresStore) Find(ctx context.Context, collection string, q Query, out any) error {
	query, args := buildPostgresSelect("data", collection, q, true)
	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return decodeAll(docs, out)
}

func (ps *PostgresStore) Count(ctx context.Context, collection string, q Query) (int64, error) {
	query, args := buildPostgresSelect("COUNT(*)", collection, q, false)
	var n int64
	if err := ps.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (ps *PostgresStore) Close(ctx context.Context) error {
	return ps.db.Close()
}

// buildPostgresSelect renders q as a parameterized statement. Field names
// are passed as parameters to the ->> operator, never spliced into SQL.
func buildPostgresSelect(projection, collection string, q Query, page bool) (string, []any) {
	var sb strings.Builder
	args := []any{collection}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString("SELECT ")
	sb.WriteString(projection)
	sb.WriteString(" FROM documents WHERE collection = $1")

	for _, field := range sortedKeys(q.Equals) {
		fmt.Fprintf(&sb, " AND data->>%s = %s", arg(field), arg(q.Equals[field]))
	}
	if q.Search.active() {
		fmt.Fprintf(&sb, " AND data->>%s ILIKE %s", arg(q.Search.Field), arg("%"+escapeLike(q.Search.Term)+"%"))
	}

	if !page {
		return sb.String(), args
	}

	if q.SortBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY data->%s %s, created_at ASC", arg(q.SortBy), dir)
	} else {
		sb.WriteString(" ORDER BY created_at ASC")
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %s", arg(q.Limit))
	}
	if q.Skip > 0 {
		fmt.Fprintf(&sb, " OFFSET %s", arg(q.Skip))
	}
	return sb.String(), args
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
