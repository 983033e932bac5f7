package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts verified, unrevoked access tokens and stores the caller as a user.Principal.
// It must run after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			userID, _ := claims["user_id"].(string)
			role, _ := claims["role"].(string)
			department, _ := claims["department"].(string)
			if userID == "" || !user.Role(role).IsValid() {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			ctx := user.WithPrincipal(r.Context(), user.Principal{
				UserID:     userID,
				Role:       user.Role(role),
				Department: department,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
