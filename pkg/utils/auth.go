package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/pkg/types"
)

const ClaimsKey = "claims"

var ErrNoClaims = errors.New("user claims not found in context")

var GetClaimsFromContext = func(c *gin.Context) (*types.Claims, error) {
	claimsVal, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, ErrNoClaims
	}

	claims, ok := claimsVal.(*types.Claims)
	if !ok {
		return nil, errors.New("invalid user claims type")
	}

	return claims, nil
}

// GetCallerFromContext returns the authenticated caller set by the JWT middleware.
var GetCallerFromContext = func(c *gin.Context) (office.Caller, error) {
	claims, err := GetClaimsFromContext(c)
	if err != nil {
		return office.Caller{}, err
	}
	return claims.Caller(), nil
}

// GenerateToken signs an HS256 token for caller.
func GenerateToken(secret []byte, issuer string, caller office.Caller, username string, ttl time.Duration) (string, error) {
	if !caller.Type.CallerType() {
		return "", fmt.Errorf("user type %q cannot authenticate", caller.Type)
	}
	now := time.Now()
	claims := &types.Claims{
		UserID:     caller.UserID,
		Username:   username,
		UserType:   caller.Type,
		OfficeCode: caller.OfficeCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates the signature and expiry of tokenStr.
func ParseToken(secret []byte, tokenStr string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.UserType.CallerType() || claims.OfficeCode == "" {
		return nil, errors.New("token does not carry a user type and office")
	}
	return claims, nil
}
