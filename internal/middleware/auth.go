// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"net/http"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/identity"
)

const IdentityKey contextKey = "identity"

// SessionResolver turns request credentials into the caller. It returns nil
// for anonymous or unverifiable requests and may refresh cookies on w.
type SessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) *identity.Identity
}

// Authenticator resolves the caller once per request and stores it in the
// context. It never rejects; use RequireUser or RequireAdmin for that.
func Authenticator(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetIdentity(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			if id := resolver.Resolve(w, r); id != nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()) == nil {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole admits callers holding one of roles. Anonymous callers are
// refused with 403 like any other caller lacking the role.
func RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	roleSet := make(map[identity.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())

			if id == nil {
				core.JSONError(w, core.ForbiddenError("Forbidden"))
				return
			}

			if _, ok := roleSet[id.Role]; !ok {
				core.JSONError(w, core.ForbiddenError("Forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(identity.RoleAdmin)(next)
}

func WithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

func GetIdentity(ctx context.Context) *identity.Identity {
	if id, ok := ctx.Value(IdentityKey).(*identity.Identity); ok {
		return id
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.ID
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	return GetIdentity(ctx).IsAdmin()
}
