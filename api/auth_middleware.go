package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/utils"
)

type contextKey string

const subjectKey contextKey = "subject"

// AuthMiddleware requires a valid bearer token signed with JWTSecret.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			utils.RespondError(s.Log, w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		subject, err := utils.ValidateToken(s.JWTSecret, strings.TrimSpace(token))
		if errors.Is(err, utils.ErrNoSecret) {
			utils.RespondError(s.Log, w, "Authentication is not configured", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			s.Log.Debug("rejected token", zap.Error(err))
			utils.RespondError(s.Log, w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubjectFromContext returns the token subject stored by AuthMiddleware.
func SubjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(subjectKey).(string)
	if !ok {
		return "", errors.New("subject not found in context")
	}
	return subject, nil
}
