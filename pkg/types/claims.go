package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/linskybing/survey-platform/internal/domain/office"
)

// Claims carries the caller identity issued by the auth layer.
type Claims struct {
	UserID     uint            `json:"user_id"`
	Username   string          `json:"username"`
	UserType   office.UserType `json:"user_type"`
	OfficeCode string          `json:"office_code"`
	jwt.RegisteredClaims
}

func (c *Claims) Caller() office.Caller {
	return office.Caller{UserID: c.UserID, Type: c.UserType, OfficeCode: c.OfficeCode}
}
