package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bighome_hub/platform/config"
	"bighome_hub/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ContextUserIDKey holds the authenticated user ID (uuid.UUID).
	ContextUserIDKey = "userID"
	// ContextRolesKey holds the role claims ([]string).
	ContextRolesKey = "roles"
	// ContextTenantIDKey holds the organization ID (uuid.UUID) when the token carries one.
	ContextTenantIDKey = "tenantID"

	errMissingToken = "missing token"
	errInvalidToken = "invalid token"

	accessTokenType = "access"
)

var errTokenRejected = errors.New(errInvalidToken)

// accessClaims is the payload of access tokens minted by the directory service.
type accessClaims struct {
	jwt.RegisteredClaims
	Type     string   `json:"type"`
	TenantID string   `json:"tenant_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// AuthRequired verifies the bearer access token and stores the caller's
// identity on the gin and request contexts. Tokens are never issued here.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}

		claims, err := verifyAccessToken(raw, []byte(cfg.GetJWTAccessSecret()))
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		roles := claims.Roles
		if roles == nil {
			roles = []string{}
		}
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRolesKey, roles)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID.String())

		if tenant := strings.TrimSpace(claims.TenantID); tenant != "" {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				abortUnauthorized(c, errInvalidToken)
				return
			}
			c.Set(ContextTenantIDKey, tenantID)
			ctx = context.WithValue(ctx, logger.TenantIDKey, tenantID.String())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func verifyAccessToken(raw string, secret []byte) (*accessClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errTokenRejected
	}
	if claims.Type != accessTokenType {
		return nil, errTokenRejected
	}
	return claims, nil
}

func bearerToken(header string) (string, bool) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}
