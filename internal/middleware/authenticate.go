// Package middleware holds the HTTP middleware shared by every route:
// request logging, metrics, authentication and rate limiting.
package middleware

import (
	"context"
	"net/http"

	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// IdentityResolver turns an access token into the user it was issued to.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (models.User, error)
}

// ErrorResponder writes err to the client in the API's response format.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate requires a valid access token, read from the accessToken
// cookie or a Bearer header, and stores the resolved user in the request
// context.
func Authenticate(resolver IdentityResolver, fail ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user, err := resolver.ResolveIdentity(ctx, auth.AccessTokenFromRequest(r))
			if err != nil {
				fail(w, r, err)
				return
			}

			ctx = auth.WithUser(ctx, user)
			ctx = logging.WithUser(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
