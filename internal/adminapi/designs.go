package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/labstack/echo/v4"
)

var designStatuses = map[string]bool{
	domain.DesignStatusPending:    true,
	domain.DesignStatusInProgress: true,
	domain.DesignStatusCompleted:  true,
	domain.DesignStatusRejected:   true,
}

func registerDesignRoutes() {
	webserver.AdminGET("/api/design-requests", listDesignRequests)
	webserver.AdminGET("/api/design-requests/:id", getDesignRequest)
	webserver.AdminPUT("/api/design-requests/:id/status", updateDesignStatus)
}

func listDesignRequests(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.DesignRequest{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query design requests", err.Error())
	}

	var rows []domain.DesignRequest
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query design requests", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getDesignRequest(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid design request ID", nil)
	}

	var req domain.DesignRequest
	if err := GetDB(c).Where("id = ?", id).First(&req).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Design request not found", nil)
	}

	var customer domain.Customer
	_ = GetDB(c).Where("id = ?", req.UserID).First(&customer).Error

	return ok(c, map[string]interface{}{
		"request":  req,
		"customer": customer,
	})
}

func updateDesignStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid design request ID", nil)
	}

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	status := strings.TrimSpace(payload.Status)
	if !designStatuses[status] {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown design request status", nil)
	}

	res := GetDB(c).Model(&domain.DesignRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update design request", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Design request not found", nil)
	}

	writeOprLog(c, "design_status", fmt.Sprintf("design request %d -> %s", id, status))
	return ok(c, nil)
}
