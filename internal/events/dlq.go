package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLDLQ persists undeliverable events in the events_failed table so they
// can be inspected and replayed out of band.
type SQLDLQ struct {
	DB          *sql.DB
	Driver      string
	TablePrefix string
}

// Store appends one failed event. A nil receiver or database makes it a
// no-op so the dispatcher can be wired without a DLQ.
func (q *SQLDLQ) Store(ctx context.Context, e Event, attempts int, lastErr string) error {
	if q == nil || q.DB == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ph := "(?, ?, ?, ?)"
	if q.Driver == "postgres" {
		ph = "($1, $2, $3, $4)"
	}
	stmt := fmt.Sprintf("INSERT INTO %sevents_failed(name, payload, attempts, last_error) VALUES %s", q.TablePrefix, ph)
	_, err = q.DB.ExecContext(ctx, stmt, e.Name, payload, attempts, lastErr)
	return err
}
