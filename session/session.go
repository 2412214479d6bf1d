// Package session manages the Postgres connection pool and hands out
// request-scoped sessions that execute built statements.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patisson/gqlpg/stmt"
)

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the keyword/value connection string pgxpool parses.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL renders the connection URL used by the migration driver.
func (c Config) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// DefaultConfig returns a default database configuration
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "app",
		SSLMode:  "disable",
	}
}

// Provider wraps the database connection pool and is the factory for
// request-scoped sessions.
type Provider struct {
	Pool *pgxpool.Pool
}

// New creates a connection pool and verifies it with a ping.
func New(ctx context.Context, config Config) (*Provider, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Conservative pool settings to avoid connection churn.
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Minute * 30
	poolConfig.MaxConnIdleTime = time.Minute * 5
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Provider{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Provider) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// WithSession acquires a pooled connection, runs fn with a session
// bound to it, and releases the connection on every exit path,
// including a panic in fn.
func (p *Provider) WithSession(ctx context.Context, fn func(*Session) error) error {
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire session: %w", err)
	}
	defer conn.Release()
	return fn(&Session{conn: conn})
}

// WithTx executes a function within a database transaction
func (p *Provider) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			if err := tx.Rollback(ctx); err != nil {
				log.Printf("[DB] Failed to rollback transaction: %v", err)
			}
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Session is a request-scoped handle on a pooled connection. It is only
// valid inside the WithSession callback that produced it.
type Session struct {
	conn *pgxpool.Conn
}

// Select executes a built statement and returns the rows.
func (s *Session) Select(ctx context.Context, st stmt.Statement) (pgx.Rows, error) {
	rows, err := s.conn.Query(ctx, st.SQL(), st.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return rows, nil
}

// SelectMaps executes a built statement and scans every row into a map
// keyed by column name.
func (s *Session) SelectMaps(ctx context.Context, st stmt.Statement) ([]map[string]any, error) {
	rows, err := s.Select(ctx, st)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// Exec runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.conn.Exec(ctx, sql, args...)
}
