// Package shopapi carries the customer-facing REST handlers: catalog,
// cart, checkout, order history, reviews, design requests and the
// suggestion passthrough.
package shopapi

import (
	"net/http"
	"strconv"

	"github.com/ablewear/ablewear/internal/suggest"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var suggestClient suggest.Client

// InitRouter registers every storefront route. The suggestion client
// is injected so tests and disabled deployments can mock it.
func InitRouter(sc suggest.Client) {
	suggestClient = sc

	registerAuthRoutes()
	registerProductRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
	registerOrderRoutes()
	registerReviewRoutes()
	registerDesignRoutes()
	registerSuggestRoutes()
}

func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetDB(c)
}

func currentUser(c echo.Context) (*webserver.CustomerClaims, error) {
	return webserver.CurrentCustomer(c)
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
