package shopapi

import (
	"errors"
	"net/http"

	"github.com/ablewear/ablewear/internal/cart"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/labstack/echo/v4"
)

func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart)
	webserver.ApiPOST("/cart/items", addCartItem)
	webserver.ApiPUT("/cart/items/:id", updateCartItem)
	webserver.ApiDELETE("/cart/items/:id", removeCartItem)
}

type addCartPayload struct {
	ProductID int64  `json:"product_id,string" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Color     string `json:"color" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

type updateCartPayload struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func getCart(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}

	repo := cart.NewGormRepository(GetDB(c))
	lines, err := repo.ListDetailed(c.Request().Context(), claims.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "FETCH_ERROR", "Failed to load cart", err.Error())
	}
	return ok(c, map[string]interface{}{
		"items":    lines,
		"subtotal": cart.Subtotal(lines),
	})
}

func addCartItem(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}

	var payload addCartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	repo := cart.NewGormRepository(GetDB(c))
	item, err := repo.Add(c.Request().Context(), claims.UserID, payload.ProductID, payload.Quantity, payload.Color, payload.Size)
	if err != nil {
		if errors.Is(err, cart.ErrBadQuantity) {
			return fail(c, http.StatusBadRequest, "BAD_QUANTITY", err.Error(), nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add cart item", err.Error())
	}
	return ok(c, item)
}

func updateCartItem(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart item ID", nil)
	}

	var payload updateCartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	repo := cart.NewGormRepository(GetDB(c))
	err = repo.UpdateQuantity(c.Request().Context(), claims.UserID, id, payload.Quantity)
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart item not found", nil)
	case errors.Is(err, cart.ErrBadQuantity):
		return fail(c, http.StatusBadRequest, "BAD_QUANTITY", err.Error(), nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update cart item", err.Error())
	}
	return ok(c, nil)
}

func removeCartItem(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart item ID", nil)
	}

	repo := cart.NewGormRepository(GetDB(c))
	err = repo.Remove(c.Request().Context(), claims.UserID, id)
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Cart item not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove cart item", err.Error())
	}
	return ok(c, nil)
}
