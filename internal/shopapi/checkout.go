package shopapi

import (
	"errors"
	"net/http"

	"github.com/ablewear/ablewear/internal/cart"
	"github.com/ablewear/ablewear/internal/checkout"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerCheckoutRoutes() {
	webserver.ApiPOST("/checkout", placeOrder)
}

func placeOrder(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}

	var input checkout.PlaceOrderInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout form", nil)
	}
	input.CustomerEmail = claims.Email
	input.CustomerName = claims.FullName

	db := GetDB(c)
	saga := checkout.NewSaga(
		checkout.NewGormStore(db, cart.NewGormRepository(db)),
		webserver.GetAppContext(c).Bus(),
	)

	result, err := saga.PlaceOrder(c.Request().Context(), claims.UserID, input)
	if err != nil {
		var perr *checkout.PlacementError
		switch {
		case errors.Is(err, checkout.ErrValidation):
			return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
		case errors.Is(err, checkout.ErrEmptyCart):
			return fail(c, http.StatusBadRequest, "EMPTY_CART", "Your cart is empty", nil)
		case errors.Is(err, checkout.ErrFetch):
			return fail(c, http.StatusServiceUnavailable, "FETCH_ERROR", "Failed to load cart", err.Error())
		case errors.As(err, &perr):
			return fail(c, http.StatusInternalServerError, "ORDER_PLACEMENT_FAILED",
				"Order placement failed, please retry", map[string]string{"stage": perr.Stage})
		default:
			return fail(c, http.StatusInternalServerError, "ORDER_PLACEMENT_FAILED",
				"Order placement failed, please retry", err.Error())
		}
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, map[string]interface{}{
		"code": "OK",
		"data": map[string]interface{}{
			"order":        result.Order,
			"items":        result.Items,
			"replayed":     result.Replayed,
			"cart_cleared": result.CartCleared,
		},
	})
}
