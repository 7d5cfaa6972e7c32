package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// OAuth2Auth middleware that handles OAuth2 JWT access tokens
// This middleware validates JWT tokens and extracts user information from claims
// following RFC 6749 (OAuth2) and RFC 7519 (JWT) specifications
func OAuth2Auth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// RFC 6750: Extract Bearer token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}

		if code, err := authenticate(c, authHeader, jwtSecret); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, code, err.Error())
			return
		}

		c.Next()
	}
}

// OptionalAuth resolves the caller when a bearer token is sent and lets
// anonymous requests through. A token that is sent but invalid is still rejected.
func OptionalAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if code, err := authenticate(c, authHeader, jwtSecret); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, code, err.Error())
			return
		}

		c.Next()
	}
}

// authenticate validates the Authorization header and stores the claims in the context.
// On failure it returns the RFC 6750 error code to report.
func authenticate(c *gin.Context, authHeader string, jwtSecret []byte) (string, error) {
	// Validate Bearer scheme format
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "invalid_request", fmt.Errorf("Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return "invalid_token", fmt.Errorf("Bearer token is empty")
	}

	claims, err := parseAndValidateJWT(tokenString, jwtSecret)
	if err != nil {
		return "invalid_token", err
	}

	if err := extractAndSetClaims(c, claims); err != nil {
		return "invalid_token", err
	}
	return "", nil
}

// respondWithOAuth2Error writes the RFC 6750 error body and stops the chain
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":             errorCode,
		"error_description": description,
	})
}

// allowedRoles are the only role claims a token may carry
var allowedRoles = map[string]struct{}{
	models.RoleAdmin: {},
	models.RoleUser:  {},
}

// parseAndValidateJWT verifies the HMAC signature and the time claims.
// exp is mandatory; iat and nbf are checked when present.
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}); err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	return claims, nil
}

// extractAndSetClaims stores the caller in the gin context:
// userID (uint), userRole, and clientID/scopes for machine client tokens
func extractAndSetClaims(c *gin.Context, claims jwt.MapClaims) error {
	userID, err := extractUserID(claims)
	if err != nil {
		return err
	}
	role, err := extractRole(claims)
	if err != nil {
		return err
	}

	c.Set("userID", userID)
	c.Set("userRole", role)

	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 && aud[0] != "" {
		c.Set("clientID", aud[0])
		c.Set("auth_type", "oauth2")
	} else {
		c.Set("auth_type", "jwt")
	}
	if scope, ok := claims["scope"].(string); ok && scope != "" {
		c.Set("scopes", scope)
	}
	return nil
}

// extractUserID reads the uid claim, a decimal string or a JSON number
func extractUserID(claims jwt.MapClaims) (uint, error) {
	var id uint64
	switch uid := claims["uid"].(type) {
	case string:
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %q", uid)
		}
		id = parsed
	case float64:
		if uid < 1 || uid != float64(uint32(uid)) {
			return 0, fmt.Errorf("invalid uid claim: must be a positive integer, got: %v", uid)
		}
		id = uint64(uid)
	default:
		return 0, fmt.Errorf("token missing required 'uid' claim")
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid user identifier: cannot be zero")
	}
	return uint(id), nil
}

// extractRole requires an explicit, known role claim; there is no default
func extractRole(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", fmt.Errorf("token missing required 'role' claim")
	}
	if _, ok := allowedRoles[role]; !ok {
		return "", fmt.Errorf("invalid role %q", role)
	}
	return role, nil
}
