package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/labstack/echo/v4"
)

func registerCustomerRoutes() {
	webserver.AdminGET("/api/customers", listCustomers)
	webserver.AdminGET("/api/customers/:id", getCustomer)
	webserver.AdminPUT("/api/customers/:id/status", updateCustomerStatus)
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Customer{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("email ILIKE ? OR full_name ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			like := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}

	var rows []domain.Customer
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}

	var customer domain.Customer
	if err := GetDB(c).Where("id = ?", id).First(&customer).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}

	var orderCount int64
	GetDB(c).Model(&domain.Order{}).Where("user_id = ?", id).Count(&orderCount)

	return ok(c, map[string]interface{}{
		"customer":    customer,
		"order_count": orderCount,
	})
}

// updateCustomerStatus enables or disables a shopper account. Disabled
// accounts keep their data but cannot log in.
func updateCustomerStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	status := strings.TrimSpace(payload.Status)
	if status != common.ENABLED && status != common.DISABLED {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be 'enabled' or 'disabled'", nil)
	}

	res := GetDB(c).Model(&domain.Customer{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update customer", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
	}

	writeOprLog(c, "customer_status", fmt.Sprintf("customer %d -> %s", id, status))
	return ok(c, nil)
}
