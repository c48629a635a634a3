// Package cart reads a shopper's cart joined with the live catalog and
// computes subtotals. It is read-mostly; the only writes are the cart
// mutations themselves.
package cart

import (
	"context"
	"errors"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/pkg/common"
	"gorm.io/gorm"
)

// Line is one cart row enriched with the current product name, image
// and price. UnitPrice is the live catalog price, not a captured one;
// capture happens at order placement.
type Line struct {
	ItemID       int64   `json:"item_id,string"`
	ProductID    int64   `json:"product_id,string"`
	Quantity     int     `json:"quantity"`
	Color        string  `json:"color"`
	Size         string  `json:"size"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	UnitPrice    float64 `json:"unit_price"`
}

// Total returns the line total at the live price.
func (l Line) Total() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Subtotal sums live price times quantity over all lines. Empty input
// yields zero.
func Subtotal(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Total()
	}
	return sum
}

// Repository handles cart data access. Every call takes the owning
// user id explicitly, there is no ambient session.
type Repository interface {
	// ListDetailed returns the user's cart lines joined with the
	// catalog. Lines whose product no longer exists are omitted.
	ListDetailed(ctx context.Context, userID int64) ([]Line, error)

	// Add puts a (product, color, size) selection into the cart. An
	// existing row for the same variant gets its quantity incremented.
	Add(ctx context.Context, userID, productID int64, quantity int, color, size string) (*domain.CartItem, error)

	// UpdateQuantity sets the quantity of one cart row owned by the user.
	UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) error

	// Remove deletes one cart row owned by the user.
	Remove(ctx context.Context, userID, itemID int64) error

	// Clear deletes all cart rows for the user.
	Clear(ctx context.Context, userID int64) error
}

var (
	ErrBadQuantity  = errors.New("quantity must be at least 1")
	ErrItemNotFound = errors.New("cart item not found")
)

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListDetailed(ctx context.Context, userID int64) ([]Line, error) {
	var lines []Line
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.id AS item_id, cart_items.product_id, cart_items.quantity, cart_items.color, cart_items.size, " +
			"products.name AS product_name, products.image_url AS product_image, products.price AS unit_price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepository) Add(ctx context.Context, userID, productID int64, quantity int, color, size string) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, ErrBadQuantity
	}

	db := r.db.WithContext(ctx)

	var existing domain.CartItem
	err := db.Where("user_id = ? AND product_id = ? AND color = ? AND size = ?",
		userID, productID, color, size).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Model(&domain.CartItem{}).
			Where("id = ?", existing.ID).
			Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
			return nil, err
		}
		existing.Quantity += quantity
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := domain.CartItem{
			ID:        common.UUIDint64(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			Color:     color,
			Size:      size,
		}
		if err := db.Create(&item).Error; err != nil {
			// A concurrent Add for the same variant can win the race to
			// the unique index; fold into an increment instead.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return r.Add(ctx, userID, productID, quantity, color, size)
			}
			return nil, err
		}
		return &item, nil
	default:
		return nil, err
	}
}

func (r *GormRepository) UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrBadQuantity
	}
	res := r.db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *GormRepository) Remove(ctx context.Context, userID, itemID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *GormRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.CartItem{}).Error
}
