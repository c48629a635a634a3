package shopapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func registerReviewRoutes() {
	webserver.PubGET("/products/:id/reviews", listReviews)
	webserver.ApiPOST("/products/:id/reviews", upsertReview)
}

type reviewPayload struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"review_text"`
}

func listReviews(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}

	var avg struct {
		Average float64
	}
	GetDB(c).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average").
		Where("product_id = ?", productID).
		Scan(&avg)

	var rows []domain.Review
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reviews", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      "OK",
		"data":      rows,
		"total":     total,
		"average":   avg.Average,
		"page":      page,
		"page_size": pageSize,
	})
}

// upsertReview creates the caller's review of a product, or updates it
// when one already exists. One review per customer per product.
func upsertReview(c echo.Context) error {
	claims, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", nil)
	}
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	var product domain.Product
	if err := GetDB(c).First(&product, productID).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var existing domain.Review
	err = GetDB(c).Where("user_id = ? AND product_id = ?", claims.UserID, productID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		review := domain.Review{
			ID:         common.UUIDint64(),
			UserID:     claims.UserID,
			ProductID:  productID,
			Rating:     payload.Rating,
			ReviewText: payload.ReviewText,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := GetDB(c).Create(&review).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save review", err.Error())
		}
		return ok(c, review)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query review", err.Error())
	default:
		if err := GetDB(c).Model(&domain.Review{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"rating":      payload.Rating,
			"review_text": payload.ReviewText,
			"updated_at":  time.Now(),
		}).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update review", err.Error())
		}
		existing.Rating = payload.Rating
		existing.ReviewText = payload.ReviewText
		return ok(c, existing)
	}
}
