package shopapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
)

func registerDesignRoutes() {
	webserver.ApiPOST("/design-requests", createDesignRequest)
	webserver.ApiGET("/design-requests", listMyDesignRequests)
}

type designPayload struct {
	Description  string                 `json:"description" validate:"required"`
	Requirements map[string]interface{} `json:"requirements"`
}

// designRequirements is the known shape of the free-form requirements
// document. Unknown keys are kept as-is alongside the decoded ones.
type designRequirements struct {
	ClothingType    string `mapstructure:"clothingType"`
	PreferredColors string `mapstructure:"preferredColors"`
	Size            string `mapstructure:"size"`
	SpecialFeatures string `mapstructure:"specialFeatures"`
	Budget          string `mapstructure:"budget"`
}

func createDesignRequest(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}

	var payload designPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse design request", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	var reqs designRequirements
	if err := mapstructure.WeakDecode(payload.Requirements, &reqs); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUIREMENTS", "Unable to decode requirements", err.Error())
	}

	stored := map[string]string{}
	if reqs.ClothingType != "" {
		stored["clothing_type"] = reqs.ClothingType
	}
	if reqs.PreferredColors != "" {
		stored["preferred_colors"] = reqs.PreferredColors
	}
	if reqs.Size != "" {
		stored["size"] = reqs.Size
	}
	if reqs.SpecialFeatures != "" {
		stored["special_features"] = reqs.SpecialFeatures
	}
	if reqs.Budget != "" {
		stored["budget"] = reqs.Budget
	}

	request := domain.DesignRequest{
		ID:           common.UUIDint64(),
		UserID:       claims.UserID,
		Description:  strings.TrimSpace(payload.Description),
		Requirements: stored,
		Status:       domain.DesignStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := GetDB(c).Create(&request).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save design request", err.Error())
	}
	return ok(c, request)
}

func listMyDesignRequests(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.DesignRequest{}).Where("user_id = ?", claims.UserID)

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
