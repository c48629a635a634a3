package shopapi

import (
	"net/http"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listMyOrders)
	webserver.ApiGET("/orders/:id", getMyOrder)
}

func listMyOrders(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Order{}).Where("user_id = ?", claims.UserID)

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

func getMyOrder(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var order domain.Order
	if err := GetDB(c).Preload("Items").
		Where("id = ? AND user_id = ?", id, claims.UserID).
		First(&order).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}

	var address domain.Address
	if err := GetDB(c).Where("id = ? AND user_id = ?", order.AddressID, claims.UserID).
		First(&address).Error; err == nil {
		return ok(c, map[string]interface{}{"order": order, "address": address})
	}
	return ok(c, map[string]interface{}{"order": order})
}
