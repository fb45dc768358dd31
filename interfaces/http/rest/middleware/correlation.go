package middleware

import (
	"net/http"
	"regexp"

	"cvwizard-backend/pkg/common"

	"github.com/google/uuid"
)

// CorrelationHeader carries the request-tracing id across services.
const CorrelationHeader = "X-Correlation-ID"

// uuidPattern matches the textual form of UUID versions 1-5.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// EnsureCorrelationID returns the given value when it is a valid UUID,
// otherwise a freshly minted one.
func EnsureCorrelationID(value string) string {
	if uuidPattern.MatchString(value) {
		return value
	}
	return uuid.New().String()
}

// Correlation tags every request/response pair with a correlation id so
// downstream calls and log lines can be tied together.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := EnsureCorrelationID(r.Header.Get(CorrelationHeader))

		w.Header().Set(CorrelationHeader, correlationID)
		ctx := common.WithCorrelationID(r.Context(), correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
