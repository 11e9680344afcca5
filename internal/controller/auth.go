package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/coursehub/coursehub/internal/model"
)

// identityKey is the Locals slot the auth middleware fills.
const identityKey = "identity"

// tokenTTL bounds how long an issued access token stays valid.
const tokenTTL = 24 * time.Hour

// GenerateToken issues an HS256 access token carrying the identity claims.
func GenerateToken(secret string, identity model.Identity) (string, error) {
	roles := make([]string, len(identity.Roles))
	for i, r := range identity.Roles {
		roles[i] = string(r)
	}

	claims := jwt.MapClaims{
		"userId": identity.UserID,
		"name":   identity.FullName,
		"email":  identity.Email,
		"roles":  roles,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AuthMiddleware validates the Bearer token and stores the caller's identity
// in the request locals.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}
		tokenString := authHeader[len("Bearer "):]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["userId"] == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
		}

		c.Locals(identityKey, identityFromClaims(claims))
		return c.Next()
	}
}

// identityFromClaims rebuilds the identity from the decoded token. JWT
// numbers arrive as float64.
func identityFromClaims(claims jwt.MapClaims) model.Identity {
	identity := model.Identity{}
	if id, ok := claims["userId"].(float64); ok {
		identity.UserID = int64(id)
	}
	if name, ok := claims["name"].(string); ok {
		identity.FullName = name
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if role, ok := r.(string); ok {
				identity.Roles = append(identity.Roles, model.Role(role))
			}
		}
	}
	return identity
}

// CurrentIdentity returns the identity stored by AuthMiddleware. The zero
// identity means the route was reached without authentication.
func CurrentIdentity(c *fiber.Ctx) model.Identity {
	if identity, ok := c.Locals(identityKey).(model.Identity); ok {
		return identity
	}
	return model.Identity{}
}

// RequireRole rejects callers that carry none of the given roles.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := CurrentIdentity(c)
		for _, role := range roles {
			if identity.HasRole(role) {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "Insufficient role", nil)
	}
}
