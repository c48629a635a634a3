package webserver

import (
	"errors"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const customerTokenKey = "customer_token"

// CustomerTokenTTL is how long a storefront login stays valid.
const CustomerTokenTTL = 7 * 24 * time.Hour

// CustomerClaims is the customer identity carried in the storefront JWT.
type CustomerClaims struct {
	UserID   int64  `json:"uid,string"`
	Email    string `json:"email"`
	FullName string `json:"name"`
	jwt.RegisteredClaims
}

// ErrNoCustomer reports a route that requires a customer token but has
// none bound.
var ErrNoCustomer = errors.New("no authenticated customer")

func customerJwtMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: customerTokenKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(CustomerClaims)
		},
	})
}

// IssueCustomerToken signs a storefront JWT for the customer.
func IssueCustomerToken(secret string, customer *domain.Customer) (string, error) {
	now := time.Now()
	claims := &CustomerClaims{
		UserID:   customer.ID,
		Email:    customer.Email,
		FullName: customer.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customer.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(CustomerTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CurrentCustomer returns the customer identity bound to the request.
func CurrentCustomer(c echo.Context) (*CustomerClaims, error) {
	token, ok := c.Get(customerTokenKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoCustomer
	}
	claims, ok := token.Claims.(*CustomerClaims)
	if !ok {
		return nil, ErrNoCustomer
	}
	return claims, nil
}
