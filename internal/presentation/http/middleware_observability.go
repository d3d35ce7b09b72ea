package httppresentation

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

// RequestLogger scopes a logger to each request. The request id is taken from
// X-Request-ID or generated, and is echoed on the response. The user the
// request acts for is added when the route names one.
func RequestLogger(base observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)

			fields := []observability.Field{observability.F("request_id", rid)}
			if uid := actingUser(r); uid != "" {
				fields = append(fields, observability.F("user_id", uid))
			}
			ctx := logctx.Scope(r.Context(), base, fields...)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actingUser(r *http.Request) string {
	if v := r.PathValue("userId"); v != "" {
		return v
	}
	return r.URL.Query().Get("userId")
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
