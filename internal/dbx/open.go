package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// ConnectBackoff controls how OpenWithRetry waits between ping attempts.
type ConnectBackoff struct {
	Base       time.Duration
	MaxRetries uint64
}

// DefaultConnectBackoff gives the database roughly ten seconds to come up.
var DefaultConnectBackoff = ConnectBackoff{Base: 200 * time.Millisecond, MaxRetries: 6}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// OpenWithRetry opens a pool and pings it with exponential backoff until the
// server answers or the retries are exhausted.
func OpenWithRetry(ctx context.Context, driver, dsn string, b ConnectBackoff) (*sql.DB, error) {
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	backoff := retry.WithMaxRetries(b.MaxRetries, retry.NewExponential(b.Base))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}
