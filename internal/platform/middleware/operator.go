package middleware

import (
	"log/slog"
	"net/http"

	"qrpass/internal/platform/config"
	dErrors "qrpass/pkg/domain-errors"
	"qrpass/pkg/platform/httputil"
	"qrpass/pkg/requestcontext"
)

// OperatorRealm is advertised in the Basic auth challenge.
const OperatorRealm = "qrpass-operator"

// RequireOperator authenticates issuing operators with HTTP Basic credentials
// against the provisioned table and stores the username in the context.
func RequireOperator(operators config.Operators, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			username, password, ok := r.BasicAuth()
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing operator credentials",
					"request_id", GetRequestID(ctx),
				)
				challenge(w)
				return
			}

			if _, ok := operators.Authenticate(username, password); !ok {
				logger.WarnContext(ctx, "unauthorized access - operator credentials rejected",
					"request_id", GetRequestID(ctx),
					"operator", username,
				)
				challenge(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithOperator(ctx, username)))
		})
	}
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+OperatorRealm+`", charset="UTF-8"`)
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "operator credentials required"))
}
