package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type productPayload struct {
	Name        string   `json:"name" form:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description" form:"description"`
	Price       float64  `json:"price" form:"price" validate:"gte=0"`
	ImageURL    string   `json:"image_url" form:"image_url"`
	Category    string   `json:"category" form:"category"`
	Colors      []string `json:"colors" form:"colors"`
	Sizes       []string `json:"sizes" form:"sizes"`
	Features    []string `json:"features" form:"features"`
	Stock       int      `json:"stock" form:"stock" validate:"gte=0"`
	IsFeatured  bool     `json:"is_featured" form:"is_featured"`
}

// productCsv flattens variant lists into pipe-separated cells so the
// catalog round-trips through a spreadsheet.
type productCsv struct {
	ID          int64   `csv:"id"`
	Name        string  `csv:"name"`
	Description string  `csv:"description"`
	Price       float64 `csv:"price"`
	ImageURL    string  `csv:"image_url"`
	Category    string  `csv:"category"`
	Colors      string  `csv:"colors"`
	Sizes       string  `csv:"sizes"`
	Features    string  `csv:"features"`
	Stock       int     `csv:"stock"`
	IsFeatured  bool    `csv:"is_featured"`
}

func registerProductRoutes() {
	webserver.AdminGET("/api/products", adminListProducts)
	webserver.AdminGET("/api/products/:id", adminGetProduct)
	webserver.AdminPOST("/api/products", createProduct)
	webserver.AdminPUT("/api/products/:id", updateProduct)
	webserver.AdminDELETE("/api/products/:id", deleteProduct)
	webserver.AdminGET("/api/products/export", exportProducts)
	webserver.AdminPOST("/api/products/import", importProducts)
}

func adminListProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	category := strings.TrimSpace(c.QueryParam("category"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, found := allowed[sortField]
	if !found || sortCol == "" {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("name ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func adminGetProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	now := time.Now()
	p := domain.Product{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Price:       payload.Price,
		ImageURL:    strings.TrimSpace(payload.ImageURL),
		Category:    strings.TrimSpace(payload.Category),
		Colors:      payload.Colors,
		Sizes:       payload.Sizes,
		Features:    payload.Features,
		Stock:       payload.Stock,
		IsFeatured:  payload.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	writeOprLog(c, "product_create", fmt.Sprintf("product %d %s", p.ID, p.Name))
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	}

	p.Name = strings.TrimSpace(payload.Name)
	p.Description = payload.Description
	p.Price = payload.Price
	p.ImageURL = strings.TrimSpace(payload.ImageURL)
	p.Category = strings.TrimSpace(payload.Category)
	p.Colors = payload.Colors
	p.Sizes = payload.Sizes
	p.Features = payload.Features
	p.Stock = payload.Stock
	p.IsFeatured = payload.IsFeatured
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	writeOprLog(c, "product_update", fmt.Sprintf("product %d %s", p.ID, p.Name))
	return ok(c, p)
}

// deleteProduct soft-deletes nothing; cart rows referencing the
// product drop out of cart listings through the join.
func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	writeOprLog(c, "product_delete", fmt.Sprintf("product %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

func exportProducts(c echo.Context) error {
	var rows []domain.Product
	if err := GetDB(c).Order("id").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	out := make([]productCsv, 0, len(rows))
	for _, p := range rows {
		out = append(out, productCsv{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Category:    p.Category,
			Colors:      strings.Join(p.Colors, "|"),
			Sizes:       strings.Join(p.Sizes, "|"),
			Features:    strings.Join(p.Features, "|"),
			Stock:       p.Stock,
			IsFeatured:  p.IsFeatured,
		})
	}

	data, err := gocsv.MarshalString(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build CSV", err.Error())
	}

	filename := fmt.Sprintf("products-%s.csv", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	writeOprLog(c, "product_export", fmt.Sprintf("exported %d products", len(out)))
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}

// importProducts upserts catalog rows from an uploaded CSV. Rows with
// an existing id update in place, rows without one create.
func importProducts(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing upload file", nil)
	}
	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open upload", err.Error())
	}
	defer src.Close()

	var rows []productCsv
	if err := gocsv.Unmarshal(src, &rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CSV", "Unable to parse CSV", err.Error())
	}

	splitList := func(s string) []string {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		parts := strings.Split(s, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}

	var created, updated int
	db := GetDB(c)
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		now := time.Now()
		p := domain.Product{
			ID:          row.ID,
			Name:        strings.TrimSpace(row.Name),
			Description: row.Description,
			Price:       row.Price,
			ImageURL:    row.ImageURL,
			Category:    row.Category,
			Colors:      splitList(row.Colors),
			Sizes:       splitList(row.Sizes),
			Features:    splitList(row.Features),
			Stock:       row.Stock,
			IsFeatured:  row.IsFeatured,
			UpdatedAt:   now,
		}
		if p.ID != 0 {
			var existing domain.Product
			if err := db.Where("id = ?", p.ID).First(&existing).Error; err == nil {
				p.CreatedAt = existing.CreatedAt
				if err := db.Save(&p).Error; err != nil {
					return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
				}
				updated++
				continue
			}
		}
		p.ID = common.UUIDint64()
		p.CreatedAt = now
		if err := db.Create(&p).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
		}
		created++
	}

	zap.S().Infof("product csv import finished: %d created, %d updated", created, updated)
	writeOprLog(c, "product_import", fmt.Sprintf("created %d updated %d", created, updated))
	return ok(c, map[string]interface{}{"created": created, "updated": updated})
}
