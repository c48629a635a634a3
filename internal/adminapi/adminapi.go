// Package adminapi carries the operator-facing REST handlers: order
// management, catalog CRUD with CSV import/export, design request
// triage and the dashboard.
package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// InitRouter registers every admin route.
func InitRouter() {
	webserver.AdminPOST("/login", loginOperator)
	webserver.AdminPOST("/logout", logoutOperator)

	registerOrderRoutes()
	registerProductRoutes()
	registerDesignRoutes()
	registerCustomerRoutes()
	registerDashboardRoutes()
}

func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetDB(c)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": "OK",
		"data": data,
	})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":   code,
		"msg":    msg,
		"detail": detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      "OK",
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// writeOprLog records an admin action in the audit table.
func writeOprLog(c echo.Context, action, desc string) {
	op, err := webserver.CurrentOperator(c)
	if err != nil {
		return
	}
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   op.Username,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}

type loginPayload struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func loginOperator(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	var operator domain.SysOpr
	err := GetDB(c).Where("username = ?", payload.Username).First(&operator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid username or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}
	if operator.Status != common.ENABLED {
		return fail(c, http.StatusForbidden, "OPERATOR_DISABLED", "Operator is disabled", nil)
	}

	hashed := common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	if hashed != operator.Password {
		return fail(c, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid username or password", nil)
	}

	if err := webserver.SaveOperatorSession(c, webserver.Operator{
		ID:       operator.ID,
		Username: operator.Username,
		Level:    operator.Level,
	}); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to start session", err.Error())
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Update("last_login", time.Now())
	writeOprLog(c, "login", "operator login")
	return ok(c, operator)
}

func logoutOperator(c echo.Context) error {
	_ = webserver.ClearOperatorSession(c)
	return ok(c, nil)
}
