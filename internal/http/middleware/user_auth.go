package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/LionGab/lyla-erl/internal/identity"
)

// userClaims is the token payload issued at login. Email doubles as the
// storage namespace, so a token without it is rejected.
type userClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserAuth validates an HMAC-signed bearer token and puts the user's email
// into the request context. When allowAnonymous is set, requests without a
// token pass through under the anonymous namespace instead of failing.
func UserAuth(secret string, allowAnonymous bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				if allowAnonymous {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := userClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Email == "" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := identity.WithUserEmail(r.Context(), claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
