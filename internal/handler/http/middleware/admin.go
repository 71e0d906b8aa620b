package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !id.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
