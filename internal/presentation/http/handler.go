// Package httppresentation exposes the order service over REST.
package httppresentation

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/account"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/checkout"
	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	appPayment "github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	tracerName           = "minishop.http"
)

// Deps carries the services the router dispatches to. Limiter and Metrics
// are optional.
type Deps struct {
	Orders     *appOrder.Service
	OrderItems *orderitem.Service
	Payments   *appPayment.Service
	Checkout   *checkout.ProcessOrderUseCase
	Accounts   *account.Service
	Catalog    *catalog.Service
	Health     application.Pinger
	Limiter    *RateLimiter
	Metrics    http.Handler
}

type Handler struct {
	deps Deps
	log  observability.Logger
	tel  observability.Observability

	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewHandler(deps Deps, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		deps:         deps,
		log:          tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:          tel,
		reqCounter:   tel.Metrics().Counter(observability.MHTTPRequests),
		durHistogram: tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.muxHandle(mux, "POST /api/orders", h.handleCreateOrder)
	h.muxHandle(mux, "POST /api/orders/full", h.handleProcessOrder)
	h.muxHandle(mux, "GET /api/orders/{userId}", h.handleGetUserOrders)
	h.muxHandle(mux, "PUT /api/orders/{userId}/cancel/{orderId}", h.handleCancelOrder)
	h.muxHandle(mux, "PUT /api/orders/{orderId}/status", h.handleUpdateOrderStatus)

	h.muxHandle(mux, "POST /api/payments/{orderId}", h.handleCreatePayment)
	h.muxHandle(mux, "GET /api/payments/{userId}", h.handleGetUserPayments)

	h.muxHandle(mux, "POST /api/order-items/{orderId}", h.handleCreateOrderItem)
	h.muxHandle(mux, "GET /api/order-items/{orderId}", h.handleGetOrderItems)
	h.muxHandle(mux, "DELETE /api/order-items/{orderId}/{productId}", h.handleCancelOrderItem)
	h.muxHandle(mux, "GET /api/order-items/users/{userId}", h.handleGetUserOrderItems)
	h.muxHandle(mux, "GET /api/order-items/users/{userId}/monthly", h.handleMonthlyStatistics)
	h.muxHandle(mux, "GET /api/order-items/users/{userId}/period", h.handlePeriodStatistics)

	h.muxHandle(mux, "POST /api/users", h.handleCreateUser)
	h.muxHandle(mux, "GET /api/users", h.handleListUsers)
	h.muxHandle(mux, "GET /api/users/page", h.handlePageUsers)
	h.muxHandle(mux, "GET /api/users/{id}", h.handleGetUser)
	h.muxHandle(mux, "PUT /api/users/{id}", h.handleUpdateUser)
	h.muxHandle(mux, "DELETE /api/users/{id}", h.handleDeleteUser)

	h.muxHandle(mux, "POST /api/categories", h.handleCreateCategory)
	h.muxHandle(mux, "GET /api/categories", h.handleListCategories)
	h.muxHandle(mux, "GET /api/categories/page", h.handlePageCategories)
	h.muxHandle(mux, "GET /api/categories/{id}", h.handleGetCategory)
	h.muxHandle(mux, "PUT /api/categories/{id}", h.handleUpdateCategory)
	h.muxHandle(mux, "DELETE /api/categories/{id}", h.handleDeleteCategory)

	h.muxHandle(mux, "POST /api/products", h.handleCreateProduct)
	h.muxHandle(mux, "GET /api/products", h.handleListProducts)
	h.muxHandle(mux, "GET /api/products/page", h.handlePageProducts)
	h.muxHandle(mux, "GET /api/products/{id}", h.handleGetProduct)
	h.muxHandle(mux, "GET /api/products/{id}/order-count", h.handleProductOrderCount)
	h.muxHandle(mux, "PUT /api/products/{id}", h.handleUpdateProduct)
	h.muxHandle(mux, "DELETE /api/products/{id}", h.handleDeleteProduct)

	h.muxHandle(mux, "GET /health", h.handleHealth)
	if h.deps.Metrics != nil {
		mux.Handle("GET /metrics", h.deps.Metrics)
	}

	return mux
}

// muxHandle registers pattern and wraps it with:
// Trace → request logger → rate limit → access log → HTTP metrics → handler.
func (h *Handler) muxHandle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	var next http.Handler = h.withAccessLog(h.withHTTPMetrics(handler))
	if h.deps.Limiter != nil {
		next = h.deps.Limiter.Middleware(next)
	}
	wrapped := h.withTrace(RequestLogger(h.log)(next))

	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stable route template for low-cardinality labels.
		r = r.WithContext(contextWithRoute(r.Context(), pattern))
		wrapped.ServeHTTP(w, r)
	}))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health.Ping(r.Context()); err != nil {
			logctx.FromOr(r.Context(), h.log).Warn("health_check_failed", observability.F("error", err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger injected by RequestLogger.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer(tracerName)
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		ctxWithSpan, span := tracer.Start(parentCtx,
			route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routeTemplate(route)),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

// withHTTPMetrics records RED metrics on the instruments resolved at construction.
func (h *Handler) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		route := routeTemplate(routeFromContext(r.Context()))
		h.reqCounter.Add(1,
			observability.L("method", r.Method),
			observability.L("route", route),
			observability.L("status", strconv.Itoa(lrw.status)),
		)
		h.durHistogram.Observe(time.Since(start).Seconds(),
			observability.L("method", r.Method),
			observability.L("route", route),
		)
	})
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}

// routeTemplate strips the method from a "METHOD /path" pattern.
func routeTemplate(route string) string {
	for i := 0; i < len(route); i++ {
		if route[i] == ' ' {
			return route[i+1:]
		}
	}
	return route
}
