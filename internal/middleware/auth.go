package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "katalyst-be/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// ActorContextKey is the key for the authenticated actor in context
	ActorContextKey ContextKey = "actor"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Actor is the authenticated identity carried through a request. Tokens are
// minted by the identity provider; this service only verifies them.
type Actor struct {
	ID   string
	Role string
}

type actorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth verifies the Bearer token and puts the actor on the context
func Auth(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Token is required"), logger)
				return
			}

			actor, err := verifyToken(token, secret)
			if err != nil {
				logger.Debug("token verification failed", zap.Error(err))
				writeErrorResponse(w, apperrors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route to actors with the admin role. Must run after Auth.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Authentication required"), logger)
				return
			}
			if actor.Role != "admin" {
				writeErrorResponse(w, apperrors.NewAuthorizationError("Admin access required"), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFrom extracts the authenticated actor from the context
func ActorFrom(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(*Actor)
	return actor, ok
}

// ActorID returns the authenticated actor's ID, empty when unauthenticated
func ActorID(ctx context.Context) string {
	if actor, ok := ActorFrom(ctx); ok {
		return actor.ID
	}
	return ""
}

func verifyToken(tokenString, secret string) (*Actor, error) {
	claims := &actorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &Actor{ID: claims.Subject, Role: claims.Role}, nil
}

// RequestID adds a unique request ID to each request and response
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *apperrors.AppError, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": appErr.Message,
	}); err != nil {
		logger.Error("failed to encode error response", zap.Error(err))
	}
}
