package verify

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/go-sql-driver/mysql"

	"cutover/dbsync"
)

var ErrInvalidTable = errors.New("invalid table name")

var tableName = regexp.MustCompile(`^[A-Za-z0-9_$]+$`)

// Counter returns the number of rows in a table.
type Counter interface {
	Count(ctx context.Context, table string) (int64, error)
}

func countQuery(table string) (string, error) {
	if !tableName.MatchString(table) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return "SELECT COUNT(*) FROM `" + table + "`", nil
}

// ClientCounter counts rows with the mysql client of a container.
type ClientCounter struct {
	Container *dbsync.Container
	// Conn holds the client connection arguments.
	Conn []string
}

// NewLocalCounter counts rows of the database inside the container.
func NewLocalCounter(c *dbsync.Container, local dbsync.LocalDB) *ClientCounter {
	return &ClientCounter{Container: c, Conn: dbsync.LocalClientArgs(local)}
}

// NewRemoteCounter counts rows of t using the container's client.
func NewRemoteCounter(c *dbsync.Container, t *dbsync.Target) *ClientCounter {
	return &ClientCounter{Container: c, Conn: dbsync.ClientArgs(t)}
}

// Count implements Counter.
func (c *ClientCounter) Count(ctx context.Context, table string) (int64, error) {
	query, err := countQuery(table)
	if err != nil {
		return 0, err
	}

	args := append([]string{"mysql"}, c.Conn...)
	args = append(args, "-N", "-e", query)

	var out bytes.Buffer
	if err := c.Container.Exec(ctx, nil, &out, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(out.String()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("count %s: unexpected output %q", table, out.String())
	}
	return n, nil
}

// SQLCounter counts rows over a direct database connection.
type SQLCounter struct {
	DB *sql.DB
}

// RetryConfig bounds the connection attempts of OpenSQL.
type RetryConfig struct {
	Attempts uint
	Timeout  time.Duration
}

// OpenSQL connects to t and waits until the server answers.
func OpenSQL(ctx context.Context, t *dbsync.Target, retry RetryConfig) (*SQLCounter, error) {
	db, err := sql.Open("mysql", t.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t, err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	},
		backoff.WithMaxTries(retry.Attempts),
		backoff.WithMaxElapsedTime(retry.Timeout),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s after retries: %w", t, err)
	}
	return &SQLCounter{DB: db}, nil
}

// Count implements Counter.
func (c *SQLCounter) Count(ctx context.Context, table string) (int64, error) {
	query, err := countQuery(table)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := c.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Close closes the underlying connection pool.
func (c *SQLCounter) Close() error {
	return c.DB.Close()
}
