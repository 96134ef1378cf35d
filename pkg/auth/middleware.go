package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"focus-hub/pkg/rest"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

// Owner returns the email of the authenticated caller.
func Owner(ctx context.Context) (string, error) {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return "", rest.Unauthenticated("no identity on request")
	}

	return identity.Email, nil
}

// Authenticate requires a valid bearer token and stores the identity on the
// request context.
func Authenticate(verifier Verifier) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := gctx.Request.Context()

		header := gctx.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			rest.Abort(gctx, "unauthorized access", rest.Unauthenticated("missing bearer token"))
			return
		}

		identity, err := verifier.Verify(ctx, token)
		if err != nil {
			rest.Abort(gctx, "unauthorized access", err)
			return
		}

		logger := log.Ctx(ctx).With().Str("owner", identity.Email).Logger()
		ctx = logger.WithContext(WithIdentity(ctx, identity))
		gctx.Request = gctx.Request.WithContext(ctx)

		gctx.Next()
	}
}

// VerifyEmail rejects requests whose email query parameter names someone
// other than the caller. An absent parameter means the caller.
func VerifyEmail() gin.HandlerFunc {
	return func(gctx *gin.Context) {
		owner, err := Owner(gctx.Request.Context())
		if err != nil {
			rest.Abort(gctx, "unauthorized access", err)
			return
		}

		email := gctx.Query("email")
		if email != "" && email != owner {
			rest.Abort(gctx, "forbidden access", rest.Forbidden("email does not match the authenticated user"))
			return
		}

		gctx.Next()
	}
}
