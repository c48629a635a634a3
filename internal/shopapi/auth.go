package shopapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func registerAuthRoutes() {
	webserver.PubPOST("/auth/register", registerCustomer)
	webserver.PubPOST("/auth/login", loginCustomer)
	webserver.ApiGET("/profile", getProfile)
}

type registerPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func registerCustomer(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to process password", nil)
	}

	customer := domain.Customer{
		ID:        common.UUIDint64(),
		Email:     strings.ToLower(strings.TrimSpace(payload.Email)),
		Password:  string(hashed),
		FullName:  strings.TrimSpace(payload.FullName),
		Phone:     strings.TrimSpace(payload.Phone),
		Status:    common.ENABLED,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account", err.Error())
	}

	token, err := webserver.IssueCustomerToken(webserver.GetAppContext(c).Config().Web.JwtSecret, &customer)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	return ok(c, map[string]interface{}{"token": token, "customer": customer})
}

func loginCustomer(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	var customer domain.Customer
	err := GetDB(c).Where("email = ?", strings.ToLower(strings.TrimSpace(payload.Email))).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid email or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query account", err.Error())
	}
	if customer.Status != common.ENABLED {
		return fail(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled", nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid email or password", nil)
	}

	GetDB(c).Model(&domain.Customer{}).Where("id = ?", customer.ID).Update("last_login", time.Now())

	token, err := webserver.IssueCustomerToken(webserver.GetAppContext(c).Config().Web.JwtSecret, &customer)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	return ok(c, map[string]interface{}{"token": token, "customer": customer})
}

func getProfile(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	var customer domain.Customer
	if err := GetDB(c).First(&customer, claims.UserID).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Account not found", nil)
	}
	return ok(c, customer)
}
