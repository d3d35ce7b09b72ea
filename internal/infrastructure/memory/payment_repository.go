package memory

import (
	"context"

	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
)

type paymentRepository struct{ t *tx }

func (r paymentRepository) Insert(_ context.Context, p *dompayment.Payment) error {
	if _, ok := r.t.read().orders[p.OrderID]; !ok {
		return domorder.ErrNotFound
	}
	st := r.t.write()
	st.seq.payments++
	p.ID = st.seq.payments
	st.payments[p.ID] = p.Clone()
	return nil
}

func (r paymentRepository) ListByOrder(_ context.Context, orderID int64) ([]*dompayment.Payment, error) {
	var out []*dompayment.Payment
	for _, id := range sortedIDs(r.t.read().payments) {
		if p := r.t.read().payments[id]; p.OrderID == orderID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r paymentRepository) ListByUser(_ context.Context, userID int64) ([]*dompayment.Payment, error) {
	var out []*dompayment.Payment
	for _, id := range sortedIDs(r.t.read().payments) {
		p := r.t.read().payments[id]
		if o, ok := r.t.read().orders[p.OrderID]; ok && o.UserID == userID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}
