package memory

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
)

type outboxStore struct{ t *tx }

func (s outboxStore) Append(_ context.Context, e domoutbox.Event) error {
	rec, err := domoutbox.NewRecord(e)
	if err != nil {
		return err
	}
	st := s.t.write()
	st.seq.outbox++
	rec.ID = st.seq.outbox
	st.outbox[rec.ID] = rec
	return nil
}

func (s outboxStore) FetchPending(_ context.Context, limit int) ([]domoutbox.Record, error) {
	var out []domoutbox.Record
	for _, id := range sortedIDs(s.t.read().outbox) {
		rec := s.t.read().outbox[id]
		if rec.SentAt != nil {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s outboxStore) MarkSent(_ context.Context, id int64, at time.Time) error {
	rec, ok := s.t.read().outbox[id]
	if !ok {
		return nil
	}
	at = at.UTC()
	rec.SentAt = &at
	s.t.write().outbox[id] = rec
	return nil
}
