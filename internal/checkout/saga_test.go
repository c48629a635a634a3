package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ablewear/ablewear/internal/cart"
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
	err = db.AutoMigrate(
		&domain.Product{},
		&domain.CartItem{},
		&domain.Address{},
		&domain.Order{},
		&domain.OrderItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestSaga(t *testing.T, db *gorm.DB) (*Saga, *recordingBus) {
	t.Helper()
	bus := &recordingBus{}
	store := NewGormStore(db, cart.NewGormRepository(db))
	return NewSaga(store, bus), bus
}

type recordingBus struct {
	events []OrderPlacedEvent
}

func (b *recordingBus) Publish(topic string, args ...interface{}) {
	if topic != TopicOrderPlaced || len(args) != 1 {
		return
	}
	if evt, ok := args[0].(OrderPlacedEvent); ok {
		b.events = append(b.events, evt)
	}
}

func seedCatalogAndCart(t *testing.T, db *gorm.DB, userID int64) (shirtID, pulloverID int64) {
	t.Helper()
	shirt := domain.Product{ID: common.UUIDint64(), Name: "Magnetic Closure Shirt", Price: 1500}
	pullover := domain.Product{ID: common.UUIDint64(), Name: "Easy-Wear Pullover", Price: 800}
	if err := db.Create(&shirt).Error; err != nil {
		t.Fatalf("seed shirt: %v", err)
	}
	if err := db.Create(&pullover).Error; err != nil {
		t.Fatalf("seed pullover: %v", err)
	}

	repo := cart.NewGormRepository(db)
	if _, err := repo.Add(context.Background(), userID, shirt.ID, 2, "blue", "M"); err != nil {
		t.Fatalf("add shirt to cart: %v", err)
	}
	if _, err := repo.Add(context.Background(), userID, pullover.ID, 1, "grey", "L"); err != nil {
		t.Fatalf("add pullover to cart: %v", err)
	}
	return shirt.ID, pullover.ID
}

func validInput(ref string) PlaceOrderInput {
	return PlaceOrderInput{
		CheckoutRef:  ref,
		FullName:     "Asha Verma",
		Phone:        "+91 98765 43210",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	db := openTestDB(t)
	saga, bus := newTestSaga(t, db)
	ctx := context.Background()

	shirtID, pulloverID := seedCatalogAndCart(t, db, 1)

	res, err := saga.PlaceOrder(ctx, 1, validInput("ref-success-1"))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Replayed {
		t.Fatal("fresh placement reported as replayed")
	}
	if !res.CartCleared {
		t.Fatal("cart should be cleared")
	}
	if res.Order.TotalAmount != 3800 {
		t.Fatalf("expected total 3800, got %v", res.Order.TotalAmount)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(res.Items))
	}

	prices := map[int64]float64{}
	for _, item := range res.Items {
		prices[item.ProductID] = item.Price
	}
	if prices[shirtID] != 1500 || prices[pulloverID] != 800 {
		t.Fatalf("captured prices wrong: %v", prices)
	}

	var cartRows int64
	db.Model(&domain.CartItem{}).Where("user_id = ?", 1).Count(&cartRows)
	if cartRows != 0 {
		t.Fatalf("expected empty cart, got %d rows", cartRows)
	}

	var addr domain.Address
	if err := db.First(&addr, res.Order.AddressID).Error; err != nil {
		t.Fatalf("address row missing: %v", err)
	}
	if addr.City != "Bengaluru" {
		t.Fatalf("address city mismatch: %s", addr.City)
	}

	if len(bus.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(bus.events))
	}
	if bus.events[0].Order.ID != res.Order.ID {
		t.Fatal("published event carries wrong order")
	}
}

func TestPlacedOrderKeepsCapturedPrices(t *testing.T) {
	db := openTestDB(t)
	saga, _ := newTestSaga(t, db)
	ctx := context.Background()

	shirtID, _ := seedCatalogAndCart(t, db, 2)

	res, err := saga.PlaceOrder(ctx, 2, validInput("ref-capture-1"))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// Raise the catalog price after placement.
	if err := db.Model(&domain.Product{}).Where("id = ?", shirtID).Update("price", 9999).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	var order domain.Order
	if err := db.Preload("Items").First(&order, res.Order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.TotalAmount != 3800 {
		t.Fatalf("order total changed after price update: %v", order.TotalAmount)
	}
	for _, item := range order.Items {
		if item.ProductID == shirtID && item.Price != 1500 {
			t.Fatalf("line price changed after price update: %v", item.Price)
		}
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := openTestDB(t)
	saga, _ := newTestSaga(t, db)

	_, err := saga.PlaceOrder(context.Background(), 3, validInput("ref-empty-1"))
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	var addresses int64
	db.Model(&domain.Address{}).Count(&addresses)
	if addresses != 0 {
		t.Fatalf("empty cart checkout wrote %d address rows", addresses)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	db := openTestDB(t)
	saga, _ := newTestSaga(t, db)

	in := validInput("ref-validate-1")
	in.PostalCode = "  "
	_, err := saga.PlaceOrder(context.Background(), 4, in)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var addresses, orders int64
	db.Model(&domain.Address{}).Count(&addresses)
	db.Model(&domain.Order{}).Count(&orders)
	if addresses != 0 || orders != 0 {
		t.Fatalf("rejected form still wrote rows: %d addresses, %d orders", addresses, orders)
	}
}

func TestLineFailureLeavesNoOrderAndCompensatesAddress(t *testing.T) {
	db := openTestDB(t)
	saga, bus := newTestSaga(t, db)
	ctx := context.Background()

	seedCatalogAndCart(t, db, 5)

	// Breaking the lines table makes the second insert of the order
	// transaction fail, which must roll back the header too.
	if err := db.Migrator().DropTable(&domain.OrderItem{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := saga.PlaceOrder(ctx, 5, validInput("ref-atomic-1"))
	if err == nil {
		t.Fatal("expected placement to fail")
	}
	var pe *PlacementError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PlacementError, got %T: %v", err, err)
	}
	if pe.Stage != StageLines {
		t.Fatalf("expected stage %q, got %q", StageLines, pe.Stage)
	}

	var orders int64
	db.Model(&domain.Order{}).Count(&orders)
	if orders != 0 {
		t.Fatalf("expected no order rows after rollback, got %d", orders)
	}
	var addresses int64
	db.Model(&domain.Address{}).Count(&addresses)
	if addresses != 0 {
		t.Fatalf("expected address compensated, got %d rows", addresses)
	}
	if len(bus.events) != 0 {
		t.Fatal("failed placement must not publish an event")
	}

	// Cart stays intact so the shopper can retry.
	var cartRows int64
	db.Model(&domain.CartItem{}).Where("user_id = ?", 5).Count(&cartRows)
	if cartRows != 2 {
		t.Fatalf("expected cart untouched, got %d rows", cartRows)
	}
}

func TestSameCheckoutRefPlacesOneOrder(t *testing.T) {
	db := openTestDB(t)
	saga, bus := newTestSaga(t, db)
	ctx := context.Background()

	seedCatalogAndCart(t, db, 6)

	first, err := saga.PlaceOrder(ctx, 6, validInput("ref-idem-1"))
	if err != nil {
		t.Fatalf("first placement: %v", err)
	}
	second, err := saga.PlaceOrder(ctx, 6, validInput("ref-idem-1"))
	if err != nil {
		t.Fatalf("second placement: %v", err)
	}

	if !second.Replayed {
		t.Fatal("second submit with same ref should replay")
	}
	if second.Order.ID != first.Order.ID {
		t.Fatalf("replay returned different order: %d vs %d", second.Order.ID, first.Order.ID)
	}

	var orders int64
	db.Model(&domain.Order{}).Where("checkout_ref = ?", "ref-idem-1").Count(&orders)
	if orders != 1 {
		t.Fatalf("expected exactly one order, got %d", orders)
	}
	if len(bus.events) != 1 {
		t.Fatalf("replay must not publish again, got %d events", len(bus.events))
	}
}

// clearFailStore makes the final cart delete fail while everything
// else goes through GORM.
type clearFailStore struct {
	Store
}

func (s *clearFailStore) ClearCart(ctx context.Context, userID int64) error {
	return errors.New("simulated cart clear failure")
}

func TestCartClearFailureDoesNotFailPlacement(t *testing.T) {
	db := openTestDB(t)
	bus := &recordingBus{}
	store := &clearFailStore{Store: NewGormStore(db, cart.NewGormRepository(db))}
	saga := NewSaga(store, bus)
	ctx := context.Background()

	seedCatalogAndCart(t, db, 7)

	res, err := saga.PlaceOrder(ctx, 7, validInput("ref-clear-1"))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.CartCleared {
		t.Fatal("expected CartCleared=false after failed clear")
	}
	if res.Order.TotalAmount != 3800 {
		t.Fatalf("expected total 3800, got %v", res.Order.TotalAmount)
	}

	var orders int64
	db.Model(&domain.Order{}).Count(&orders)
	if orders != 1 {
		t.Fatalf("expected the order to stand, got %d rows", orders)
	}
	if len(bus.events) != 1 {
		t.Fatalf("expected event despite failed clear, got %d", len(bus.events))
	}
}

func TestGeneratedRefWhenMissing(t *testing.T) {
	db := openTestDB(t)
	saga, _ := newTestSaga(t, db)
	ctx := context.Background()

	seedCatalogAndCart(t, db, 8)

	res, err := saga.PlaceOrder(ctx, 8, validInput(""))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Order.CheckoutRef == "" {
		t.Fatal("expected a generated checkout ref")
	}
}
