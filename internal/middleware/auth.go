package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clinicbook/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PractitionerIDKey is the context key for the authenticated practitioner ID.
const PractitionerIDKey contextKey = "practitioner_id"

// GetPractitionerID extracts the practitioner ID from the context.
// Returns empty string if not found.
func GetPractitionerID(ctx context.Context) string {
	id, _ := ctx.Value(PractitionerIDKey).(string)
	return id
}

// RequireAuth returns an interceptor that validates the Bearer token of every
// call and adds the practitioner ID to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, PractitionerIDKey, claims.PractitionerID)
			return next(ctx, req)
		}
	}
}
