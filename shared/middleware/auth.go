package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/itchan-dev/agenda/shared/domain"
	jwt_internal "github.com/itchan-dev/agenda/shared/jwt"
	"github.com/itchan-dev/agenda/shared/logger"
	"github.com/itchan-dev/agenda/shared/utils"
)

// Key to store the caller in the request context
type key int

const PrincipalKey key = 0

const AccessTokenCookie = "accessToken"

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that requires a valid access token
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// SupervisorOnly returns middleware that requires a supervisor access token
func (a *Auth) SupervisorOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

// extractPrincipal reads the token from the accessToken cookie (browsers) or
// the Authorization header (API clients).
func (a *Auth) extractPrincipal(r *http.Request) (*domain.Principal, error) {
	var tokenString string
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		tokenString = cookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	principal, ok := jwt_internal.PrincipalFromToken(token)
	if !ok {
		return nil, errInvalidClaims
	}
	return principal, nil
}

var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
)

type errorString string

func (e errorString) Error() string { return string(e) }

func (a *Auth) auth(supervisorOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := a.extractPrincipal(r)
			if err != nil {
				switch err {
				case errNoToken:
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
				case errInvalidClaims:
					logger.Log.Error("invalid jwt claims")
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				default:
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}

			if supervisorOnly && !principal.Role.IsSupervisor() {
				http.Error(w, "Access denied. Only for supervisors", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipalFromContext returns nil outside authenticated routes
func GetPrincipalFromContext(r *http.Request) *domain.Principal {
	p, ok := r.Context().Value(PrincipalKey).(*domain.Principal)
	if !ok {
		return nil
	}
	return p
}
