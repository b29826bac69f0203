package utils

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/senyabanana/freelance-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// ParseToken проверяет подпись JWT и извлекает идентификатор и роль актора.
// Выпуск токенов - задача внешнего сервиса аутентификации.
func ParseToken(tokenString, secret string) (string, models.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token claims")
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", "", fmt.Errorf("token missing user identifier")
	}
	role, _ := claims["role"].(string)
	return userID, models.Role(role), nil
}

// Authenticate - middleware: принимает bearer-токен из заголовка Authorization
// либо из query-параметра token (websocket не умеет ставить заголовки из
// браузера) и кладёт идентификатор и роль актора в контекст запроса.
func Authenticate(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
		if tokenString == "" {
			tokenString = r.URL.Query().Get("token")
		}
		if tokenString == "" {
			SendErrorResponse(w, http.StatusUnauthorized, "authorization token is required")
			return
		}

		userID, role, err := ParseToken(tokenString, secret)
		if err != nil {
			SendErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, roleKey, role)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole проверяет роль актора один раз на границе операции; внутри
// сервисов роль заново не выводится, проверяется только владение сущностью.
func RequireRole(role models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != role {
			SendErrorResponse(w, http.StatusForbidden, fmt.Sprintf("operation requires the %s role", role))
			return
		}
		next(w, r)
	}
}

// UserIDFromContext возвращает идентификатор аутентифицированного актора.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// RoleFromContext возвращает роль аутентифицированного актора.
func RoleFromContext(ctx context.Context) models.Role {
	role, _ := ctx.Value(roleKey).(models.Role)
	return role
}
