package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
)

func registerOrderRoutes() {
	webserver.AdminGET("/api/orders", listOrders)
	webserver.AdminGET("/api/orders/:id", getOrder)
	webserver.AdminPUT("/api/orders/:id/status", updateOrderStatus)
	webserver.AdminGET("/api/orders/export", exportOrders)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Order{})

	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	// Date range filters accept most human formats, e.g. 2026-08-01
	// or "Aug 1, 2026".
	if from := strings.TrimSpace(c.QueryParam("from")); from != "" {
		if t, err := dateparse.ParseAny(from); err == nil {
			db = db.Where("created_at >= ?", t)
		}
	}
	if to := strings.TrimSpace(c.QueryParam("to")); to != "" {
		if t, err := dateparse.ParseAny(to); err == nil {
			db = db.Where("created_at < ?", t.Add(24*time.Hour))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var orders []domain.Order
	if err := db.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var order domain.Order
	if err := GetDB(c).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}

	var address domain.Address
	_ = GetDB(c).Where("id = ?", order.AddressID).First(&address).Error

	var customer domain.Customer
	_ = GetDB(c).Where("id = ?", order.UserID).First(&customer).Error

	return ok(c, map[string]interface{}{
		"order":    order,
		"address":  address,
		"customer": customer,
	})
}

type statusPayload struct {
	Status string `json:"status" validate:"required"`
}

// updateOrderStatus writes any status string the operator supplies.
// Statuses are deliberately unconstrained; the storefront only ever
// displays them.
func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	res := GetDB(c).Model(&domain.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     strings.TrimSpace(payload.Status),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}

	writeOprLog(c, "order_status", fmt.Sprintf("order %d -> %s", id, payload.Status))
	return ok(c, nil)
}

// exportOrders streams all orders (optionally filtered by status) as
// an XLSX workbook.
func exportOrders(c echo.Context) error {
	db := GetDB(c).Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	var orders []domain.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	xlsx := excelize.NewFile()
	headers := []string{"Order ID", "Customer ID", "Checkout Ref", "Total Amount", "Status", "Created At"}
	for i, h := range headers {
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, o := range orders {
		row := i + 2
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), fmt.Sprintf("%d", o.ID))
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("B%d", row), fmt.Sprintf("%d", o.UserID))
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("C%d", row), o.CheckoutRef)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("D%d", row), o.TotalAmount)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("E%d", row), o.Status)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("F%d", row), o.CreatedAt.Format(time.RFC3339))
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	writeOprLog(c, "order_export", fmt.Sprintf("exported %d orders", len(orders)))
	return xlsx.Write(c.Response())
}
