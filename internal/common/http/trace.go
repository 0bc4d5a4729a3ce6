package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/avoronkov/webauth/internal/common/logger"
)

const traceIDHeader = "X-Trace-ID"

// TraceIDMiddleware accepts an inbound trace id or mints one, echoes it
// in the response header and binds it to the request context so log
// lines written downstream carry it.
func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = generateTraceID()
		}

		w.Header().Set(traceIDHeader, traceID)

		ctx := logger.ContextWithTraceID(r.Context(), traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
