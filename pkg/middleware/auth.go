package middleware

import (
	"net/http"

	"quickshow/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity extracts the authenticated holder from the X-Holder-Id header.
// Authentication itself happens at the identity provider in front of this
// service; the header carries the already-verified identity.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			holderHeader := r.Header.Get("X-Holder-Id")
			if holderHeader == "" {
				utils.ResponseUnauthorized(w, "Missing identity")
				return
			}

			holderID, err := uuid.Parse(holderHeader)
			if err != nil {
				logger.Warn("Malformed holder identity", zap.String("holder", holderHeader))
				utils.ResponseUnauthorized(w, "Invalid identity")
				return
			}

			ctx := utils.SetHolderContext(r.Context(), holderID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKey gates admin routes behind the configured API key capability.
func AdminKey(apiKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				logger.Error("Admin API key not configured; rejecting admin request",
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access not configured")
				return
			}

			if r.Header.Get("X-Admin-Key") != apiKey {
				logger.Warn("Admin key mismatch", zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
