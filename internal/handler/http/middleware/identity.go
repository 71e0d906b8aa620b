package middleware

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// ResolveIdentity turns the verified token claims into an identity.Identity
// and stores it on the request context. Must run after AuthRequired.
func ResolveIdentity(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			p := identity.Principal{
				UserID:     claimString(claims, "user_id"),
				Email:      claimString(claims, "email"),
				EmployeeID: claimString(claims, "employee_id"),
				BadgeID:    claimString(claims, "badge_id"),
				Role:       user.Role(claimString(claims, "role")),
			}
			if p.UserID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			id, err := resolver.Resolve(r.Context(), p)
			if err != nil {
				// A token for a deleted employee is no longer a valid session.
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					response.HandleError(w, auth.ErrInvalidToken)
					return
				}
				response.HandleError(w, err)
				return
			}
			if id.Employee != nil && !id.Employee.IsActive() {
				response.HandleError(w, auth.ErrAccountInactive)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}
