package checkout

import (
	"context"
	"errors"

	"github.com/ablewear/ablewear/internal/cart"
	"github.com/ablewear/ablewear/internal/domain"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// Store is the persistence surface the saga drives. The order header
// and its lines go through one call so the implementation can make
// them atomic; everything else is a single-row or single-batch write.
type Store interface {
	// CartSnapshot reads the shopper's cart joined with live prices.
	CartSnapshot(ctx context.Context, userID int64) ([]cart.Line, error)

	// OrderByCheckoutRef finds a previously placed order carrying the
	// same idempotency key. Returns (nil, nil) when none exists.
	OrderByCheckoutRef(ctx context.Context, userID int64, ref string) (*domain.Order, error)

	// CreateAddress inserts the shipping address row.
	CreateAddress(ctx context.Context, addr *domain.Address) error

	// CreateOrder inserts the order header and all its lines in one
	// transaction. Failures are wrapped with ErrOrderWrite or
	// ErrLineWrite depending on which insert failed.
	CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error

	// DeleteAddress removes an address row, used to compensate a
	// failed order transaction.
	DeleteAddress(ctx context.Context, addressID int64) error

	// ClearCart deletes all cart lines for the user.
	ClearCart(ctx context.Context, userID int64) error
}

// GormStore is the GORM implementation of Store.
type GormStore struct {
	db    *gorm.DB
	carts cart.Repository
}

func NewGormStore(db *gorm.DB, carts cart.Repository) *GormStore {
	return &GormStore{db: db, carts: carts}
}

func (s *GormStore) CartSnapshot(ctx context.Context, userID int64) ([]cart.Line, error) {
	return s.carts.ListDetailed(ctx, userID)
}

func (s *GormStore) OrderByCheckoutRef(ctx context.Context, userID int64, ref string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND checkout_ref = ?", userID, ref).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query order by checkout ref")
	}
	return &order, nil
}

func (s *GormStore) CreateAddress(ctx context.Context, addr *domain.Address) error {
	if err := s.db.WithContext(ctx).Create(addr).Error; err != nil {
		return pkgerrors.Wrap(err, "create address")
	}
	return nil
}

func (s *GormStore) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// surfaced unwrapped so the saga can replay by ref
				return err
			}
			return pkgerrors.Wrap(ErrOrderWrite, err.Error())
		}
		if err := tx.Create(&items).Error; err != nil {
			return pkgerrors.Wrap(ErrLineWrite, err.Error())
		}
		return nil
	})
}

func (s *GormStore) DeleteAddress(ctx context.Context, addressID int64) error {
	return s.db.WithContext(ctx).Delete(&domain.Address{}, addressID).Error
}

func (s *GormStore) ClearCart(ctx context.Context, userID int64) error {
	return s.carts.Clear(ctx, userID)
}
