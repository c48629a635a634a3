package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/pkg/common"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}, &domain.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) int64 {
	t.Helper()
	p := domain.Product{
		ID:    common.UUIDint64(),
		Name:  name,
		Price: price,
		Stock: 100,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p.ID
}

func TestAddIncrementsExistingVariant(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	shirtID := seedProduct(t, db, "Magnetic Closure Shirt", 1500)

	if _, err := repo.Add(ctx, 1, shirtID, 1, "blue", "M"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := repo.Add(ctx, 1, shirtID, 1, "blue", "M"); err != nil {
		t.Fatalf("second add: %v", err)
	}

	var rows []domain.CartItem
	if err := db.Where("user_id = ?", 1).Find(&rows).Error; err != nil {
		t.Fatalf("query cart: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 cart row, got %d", len(rows))
	}
	if rows[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", rows[0].Quantity)
	}
}

func TestAddDifferentVariantCreatesNewRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	shirtID := seedProduct(t, db, "Magnetic Closure Shirt", 1500)

	if _, err := repo.Add(ctx, 1, shirtID, 1, "blue", "M"); err != nil {
		t.Fatalf("add blue/M: %v", err)
	}
	if _, err := repo.Add(ctx, 1, shirtID, 1, "blue", "L"); err != nil {
		t.Fatalf("add blue/L: %v", err)
	}

	var count int64
	db.Model(&domain.CartItem{}).Where("user_id = ?", 1).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 cart rows, got %d", count)
	}
}

func TestAddRejectsBadQuantity(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)

	if _, err := repo.Add(context.Background(), 1, 42, 0, "", ""); err != ErrBadQuantity {
		t.Fatalf("expected ErrBadQuantity, got %v", err)
	}
}

func TestSubtotalSumsLivePrices(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	shirtID := seedProduct(t, db, "Magnetic Closure Shirt", 1500)
	pulloverID := seedProduct(t, db, "Easy-Wear Pullover", 800)

	if _, err := repo.Add(ctx, 7, shirtID, 2, "blue", "M"); err != nil {
		t.Fatalf("add shirt: %v", err)
	}
	if _, err := repo.Add(ctx, 7, pulloverID, 1, "grey", "L"); err != nil {
		t.Fatalf("add pullover: %v", err)
	}

	lines, err := repo.ListDetailed(ctx, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if got := Subtotal(lines); got != 3800 {
		t.Fatalf("expected subtotal 3800, got %v", got)
	}
}

func TestSubtotalEmptyCartIsZero(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)

	lines, err := repo.ListDetailed(context.Background(), 99)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}
	if got := Subtotal(lines); got != 0 {
		t.Fatalf("expected subtotal 0, got %v", got)
	}
}

func TestListOmitsDeletedProducts(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	shirtID := seedProduct(t, db, "Magnetic Closure Shirt", 1500)
	goneID := seedProduct(t, db, "Discontinued Jacket", 2500)

	if _, err := repo.Add(ctx, 3, shirtID, 1, "blue", "M"); err != nil {
		t.Fatalf("add shirt: %v", err)
	}
	if _, err := repo.Add(ctx, 3, goneID, 1, "red", "S"); err != nil {
		t.Fatalf("add jacket: %v", err)
	}

	if err := db.Delete(&domain.Product{}, goneID).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	lines, err := repo.ListDetailed(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line after product deletion, got %d", len(lines))
	}
	if lines[0].ProductID != shirtID {
		t.Fatalf("expected surviving line for product %d, got %d", shirtID, lines[0].ProductID)
	}
}

func TestUpdateQuantity(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	shirtID := seedProduct(t, db, "Magnetic Closure Shirt", 1500)
	item, err := repo.Add(ctx, 5, shirtID, 1, "blue", "M")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := repo.UpdateQuantity(ctx, 5, item.ID, 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	var row domain.CartItem
	db.First(&row, item.ID)
	if row.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", row.Quantity)
	}

	if err := repo.UpdateQuantity(ctx, 5, item.ID, 0); err != ErrBadQuantity {
		t.Fatalf("expected ErrBadQuantity, got %v", err)
	}
	// wrong owner
	if err := repo.UpdateQuantity(ctx, 6, item.ID, 2); err != ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound for other user, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	shirtID := seedProduct(t, db, "Magnetic Closure Shirt", 1500)
	pulloverID := seedProduct(t, db, "Easy-Wear Pullover", 800)

	item, err := repo.Add(ctx, 8, shirtID, 1, "blue", "M")
	if err != nil {
		t.Fatalf("add shirt: %v", err)
	}
	if _, err := repo.Add(ctx, 8, pulloverID, 1, "grey", "L"); err != nil {
		t.Fatalf("add pullover: %v", err)
	}

	if err := repo.Remove(ctx, 9, item.ID); err != ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound for other user, got %v", err)
	}
	if err := repo.Remove(ctx, 8, item.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if err := repo.Clear(ctx, 8); err != nil {
		t.Fatalf("clear: %v", err)
	}
	var count int64
	db.Model(&domain.CartItem{}).Where("user_id = ?", 8).Count(&count)
	if count != 0 {
		t.Fatalf("expected empty cart, got %d rows", count)
	}
}
