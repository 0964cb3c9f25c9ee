package middleware

import (
	"net/http"
	"strings"

	"cinely/internal/shared/config"
	"cinely/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Token issuance lives in an external identity service; this middleware only
// verifies bearer tokens it is handed and extracts the caller's identity.

// JWTAuth creates a JWT authentication middleware that rejects requests
// without a valid access token
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseBearer(c, cfg)
		if err != "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, err, nil, nil)
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// OptionalJWTAuth extracts the caller's identity when a token is present and
// lets guests through otherwise. Booking intake uses this: guests may book
// with contact details only.
func OptionalJWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		userID, errMsg := parseBearer(c, cfg)
		if errMsg != "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, errMsg, nil, nil)
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func parseBearer(c *gin.Context, cfg *config.Config) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization header is required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "authorization header format must be Bearer {token}"
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", "invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "invalid token claims"
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return "", "invalid token type"
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", "token missing user_id"
	}
	return userID, ""
}

// UserIDFromContext returns the authenticated user's id, if any. A nil
// result means the caller is a guest.
func UserIDFromContext(c *gin.Context) *uuid.UUID {
	raw, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
