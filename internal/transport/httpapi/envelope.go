package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"flashflow/internal/bootstrap/logging"
)

// Error codes shared with the admin UI. The taxonomy is part of the client
// contract and must not drift.
const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeRateLimited          = "RATE_LIMITED"
	CodeConflict             = "CONFLICT"
	CodeGenerationInProgress = "GENERATION_IN_PROGRESS"
	CodeAIError              = "AI_ERROR"
	CodeInternal             = "INTERNAL"
	CodeDBError              = "DB_ERROR"
	CodeBadRequest           = "BAD_REQUEST"

	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeLockedByOther        = "LOCKED_BY_OTHER"
	CodeAlreadyClaimed       = "ALREADY_CLAIMED"
	CodeClaimedByOther       = "CLAIMED_BY_OTHER"
	CodeNotClaimed           = "NOT_CLAIMED"
)

const (
	headerCorrelationID = "X-Correlation-Id"
	headerActor         = "X-Actor"
)

type okEnvelope struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

type errEnvelope struct {
	OK            bool           `json:"ok"`
	ErrorCode     string         `json:"error_code"`
	Message       string         `json:"message"`
	CorrelationID string         `json:"correlation_id"`
	Details       map[string]any `json:"details,omitempty"`
}

type ctxCorrelationKey struct{}

// withCorrelationID accepts the client's correlation token or mints one, and
// makes it available to handlers, logs, and the audit trail.
func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := strings.TrimSpace(r.Header.Get(headerCorrelationID))
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), ctxCorrelationKey{}, correlationID)
		ctx = logging.WithCorrelationID(ctx, correlationID)

		w.Header().Set(headerCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func correlationID(ctx context.Context) string {
	if value, ok := ctx.Value(ctxCorrelationKey{}).(string); ok {
		return value
	}
	return ""
}

func writeOK(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(okEnvelope{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	ctx := r.Context()
	if status >= http.StatusInternalServerError {
		logging.Error(ctx, "request failed",
			slog.String("error_code", code),
			slog.String("path", r.URL.Path))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errEnvelope{
		ErrorCode:     code,
		Message:       message,
		CorrelationID: correlationID(ctx),
		Details:       details,
	})
}
