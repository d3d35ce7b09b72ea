package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
)

type outboxStore struct {
	q querier
	d dialect
}

func (s outboxStore) Append(ctx context.Context, e domoutbox.Event) error {
	rec, err := domoutbox.NewRecord(e)
	if err != nil {
		return err
	}
	if _, err := insertReturningID(ctx, s.q, s.d,
		"INSERT INTO outbox (event_id, name, event_key, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.EventID, rec.Name, rec.Key, rec.Payload, rec.CreatedAt); err != nil {
		return fmt.Errorf("append outbox: %w", err)
	}
	return nil
}

func (s outboxStore) FetchPending(ctx context.Context, limit int) ([]domoutbox.Record, error) {
	rows, err := s.q.QueryContext(ctx, s.d.rebind(
		`SELECT id, event_id, name, event_key, payload, created_at FROM outbox
		WHERE sent_at IS NULL ORDER BY id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var out []domoutbox.Record
	for rows.Next() {
		var rec domoutbox.Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Name, &rec.Key, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		rec.CreatedAt = utc(rec.CreatedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s outboxStore) MarkSent(ctx context.Context, id int64, at time.Time) error {
	_, err := s.q.ExecContext(ctx, s.d.rebind("UPDATE outbox SET sent_at = ? WHERE id = ? AND sent_at IS NULL"),
		sql.NullTime{Time: at.UTC(), Valid: true}, id)
	if err != nil {
		return fmt.Errorf("mark outbox sent: %w", err)
	}
	return nil
}
