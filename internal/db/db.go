// internal/db/db.go
package db

import (
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
)

// Open connects to Postgres and waits for it to answer pings, retrying with
// exponential backoff so the service survives a database that is still
// starting up.
func Open(databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(conn.Ping, b); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
