package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
)

// RequireReviewer requires manager or admin role
func RequireReviewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !id.IsReviewer() {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := identity.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if id.IsSuperuser {
				next.ServeHTTP(w, r)
				return
			}

			if !user.HasPermission(id.Role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, id.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
