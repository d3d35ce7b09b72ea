package httppresentation

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	appPayment "github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
)

type orderItemRequest struct {
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (r orderItemRequest) input() orderitem.Input {
	return orderitem.Input{
		ProductID:  r.ProductID,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		TotalPrice: r.TotalPrice,
	}
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

func itemInputs(reqs []orderItemRequest) []orderitem.Input {
	out := make([]orderitem.Input, 0, len(reqs))
	for _, it := range reqs {
		out = append(out, it.input())
	}
	return out
}

type paymentRequest struct {
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	PaymentDate   *time.Time       `json:"payment_date,omitempty"`
	PaymentMethod string           `json:"payment_method"`
}

func (r paymentRequest) input() appPayment.Input {
	in := appPayment.Input{Method: r.PaymentMethod}
	if r.Amount != nil {
		in.Amount = *r.Amount
	}
	if r.PaymentDate != nil {
		in.PaymentDate = *r.PaymentDate
	}
	return in
}

type processOrderRequest struct {
	Items   []orderItemRequest `json:"items"`
	Payment paymentRequest     `json:"payment"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out, err := h.deps.Orders.CreateOrder(r.Context(), userID, itemInputs(req.Items))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleProcessOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req processOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out, err := h.deps.Checkout.Execute(r.Context(), checkout.ProcessOrderInput{
		UserID:  userID,
		Items:   itemInputs(req.Items),
		Payment: req.Payment.input(),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Orders.GetUserOrders(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	ok, err := h.deps.Orders.CancelOrder(r.Context(), userID, orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	status, err := queryRequired(r, "status")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	actorID, err := queryInt64(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Orders.UpdateOrderStatus(r.Context(), orderID, status, actorID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Payments.CreatePayment(r.Context(), orderID, req.input())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleGetUserPayments(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Payments.GetUserPayments(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreateOrderItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req orderItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.OrderItems.CreateOrderItem(r.Context(), orderID, req.input())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleGetOrderItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.OrderItems.GetOrderItemsByOrderID(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCancelOrderItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	productID, err := pathID(r, "productId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	ok, err := h.deps.OrderItems.CancelOrderItem(r.Context(), orderID, productID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h *Handler) handleGetUserOrderItems(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.OrderItems.GetUserOrderItems(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleMonthlyStatistics(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	month, err := queryInt64(r, "month")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	year, err := queryInt64(r, "year")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.OrderItems.GetUserOrdersByMonth(r.Context(), userID, int(month), int(year))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handlePeriodStatistics(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	start, err := queryTime(r, "start", false)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	end, err := queryTime(r, "end", true)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.OrderItems.GetUserOrderStatisticsByPeriod(r.Context(), userID, start, end)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleProductOrderCount(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	n, err := h.deps.OrderItems.GetProductOrderCount(r.Context(), productID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// queryTime accepts RFC 3339 timestamps or plain dates. A plain date used as
// the end of a period covers the whole day.
func queryTime(r *http.Request, name string, endOfDay bool) (time.Time, error) {
	raw, err := queryRequired(r, name)
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, apperror.Validation("query parameter %s must be a date (YYYY-MM-DD) or RFC 3339 time, got %q", name, raw)
	}
	if endOfDay {
		return d.Add(24*time.Hour - time.Nanosecond), nil
	}
	return d, nil
}
