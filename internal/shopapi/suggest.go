package shopapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ablewear/ablewear/internal/suggest"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/metrics"
	"github.com/labstack/echo/v4"
)

func registerSuggestRoutes() {
	webserver.ApiPOST("/suggestions", getSuggestions)
}

type suggestPayload struct {
	Preferences string `json:"preferences" validate:"required"`
}

func getSuggestions(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	if suggestClient == nil {
		return fail(c, http.StatusServiceUnavailable, "SUGGEST_DISABLED", "Suggestions are not enabled", nil)
	}

	var payload suggestPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse preferences", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	metrics.Counter(metrics.MetricSuggestRequest)

	resp, err := suggestClient.Suggest(c.Request().Context(), strings.TrimSpace(payload.Preferences))
	if err != nil {
		if errors.Is(err, suggest.ErrServiceUnavailable) {
			return fail(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Suggestion service unavailable", nil)
		}
		return fail(c, http.StatusInternalServerError, "SUGGEST_ERROR", "Failed to get suggestions", err.Error())
	}
	return ok(c, resp)
}
