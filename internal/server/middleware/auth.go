package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/wastetrack/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки JWT access token.
// user_id и username из токена кладутся в контекст запроса.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := handlers.BearerToken(r)
			if !ok {
				logger.WarnContext(r.Context(), "missing or malformed Authorization header", slog.String("path", r.URL.Path))
				handlers.SendError(logger, w, "missing token", http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", slog.Any("error", err))
				handlers.SendError(logger, w, "invalid token", http.StatusUnauthorized)
				return
			}

			logger.DebugContext(r.Context(), "user authenticated",
				slog.String("user_id", claims.UserID()),
				slog.String("username", claims.Username))

			ctx := handlers.WithUser(r.Context(), claims.UserID(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
