package middleware

import (
	"net/http"
	"slices"
)

// RequireRole checks if the caller's token carries the required role
func RequireRole(roleName string) func(http.Handler) http.Handler {
	return RequireAnyRole(roleName)
}

// RequireAnyRole checks if the caller's token carries any of the required roles
func RequireAnyRole(roleNames ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			if !slices.ContainsFunc(roleNames, principal.HasRole) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
