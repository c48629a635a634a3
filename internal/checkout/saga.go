// Package checkout runs the order placement workflow: validate the
// address form, snapshot the cart, create the shipping address, create
// the order header with its lines, then clear the cart. The header and
// the lines share one transaction so an order can never exist without
// lines; the address gets a compensating delete when that transaction
// fails. A client supplied checkout_ref makes retries collapse onto a
// single order.
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ablewear/ablewear/internal/cart"
	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/ablewear/ablewear/pkg/metrics"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
)

// TopicOrderPlaced is published on the application event bus after a
// successful placement. Payload is OrderPlacedEvent.
const TopicOrderPlaced = "order.placed"

// Publisher is the slice of the event bus the saga needs.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// OrderPlacedEvent is the bus payload for TopicOrderPlaced.
type OrderPlacedEvent struct {
	Order         domain.Order
	Items         []domain.OrderItem
	Address       domain.Address
	CustomerEmail string
	CustomerName  string
}

// PlaceOrderInput is the checkout form plus the shopper identity taken
// from the session token. CheckoutRef is optional; a missing ref gets
// generated, which keeps the unique index meaningful but gives the
// client no retry protection.
type PlaceOrderInput struct {
	CheckoutRef   string `json:"checkout_ref"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	CustomerEmail string `json:"-"`
	CustomerName  string `json:"-"`
}

func (in *PlaceOrderInput) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"full_name", in.FullName},
		{"phone", in.Phone},
		{"address_line1", in.AddressLine1},
		{"city", in.City},
		{"state", in.State},
		{"postal_code", in.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fieldErr(f.name)
		}
	}
	return nil
}

// Result is the outcome of a successful placement. Replayed reports
// that the checkout_ref matched an already placed order and nothing was
// written. CartCleared is false when the final delete failed; the
// order is still valid in that case.
type Result struct {
	Order       *domain.Order
	Items       []domain.OrderItem
	Address     *domain.Address
	Subtotal    float64
	Replayed    bool
	CartCleared bool
}

// Saga orchestrates one order placement.
type Saga struct {
	store   Store
	bus     Publisher
	nowFunc func() time.Time
}

func NewSaga(store Store, bus Publisher) *Saga {
	return &Saga{
		store:   store,
		bus:     bus,
		nowFunc: time.Now,
	}
}

// PlaceOrder runs the full workflow for one shopper. Writes happen in
// this order: address, order header + lines (one transaction), cart
// clear. A failed order transaction compensates the address; a failed
// cart clear is logged and does not fail the placement.
func (s *Saga) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ref := strings.TrimSpace(in.CheckoutRef)
	if ref == "" {
		ref = random.String(24)
	}

	if existing, err := s.store.OrderByCheckoutRef(ctx, userID, ref); err != nil {
		return nil, errors.Join(ErrFetch, err)
	} else if existing != nil {
		zap.L().Info("checkout replayed by ref",
			zap.Int64("user_id", userID),
			zap.String("checkout_ref", ref),
			zap.Int64("order_id", existing.ID))
		return &Result{Order: existing, Items: existing.Items, Replayed: true, CartCleared: true}, nil
	}

	lines, err := s.store.CartSnapshot(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	subtotal := cart.Subtotal(lines)

	now := s.nowFunc()
	address := &domain.Address{
		ID:           common.UUIDint64(),
		UserID:       userID,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		AddressLine2: strings.TrimSpace(in.AddressLine2),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		IsDefault:    true,
		CreatedAt:    now,
	}
	if err := s.store.CreateAddress(ctx, address); err != nil {
		metrics.Counter(metrics.MetricOrderFailed)
		return nil, placementErr(StageAddress, err)
	}

	order := &domain.Order{
		ID:          common.UUIDint64(),
		UserID:      userID,
		AddressID:   address.ID,
		CheckoutRef: ref,
		TotalAmount: subtotal,
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ID:        common.UUIDint64(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			Color:     line.Color,
			Size:      line.Size,
			CreatedAt: now,
		})
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		s.compensateAddress(ctx, address.ID)

		// A concurrent submit with the same ref can slip past the
		// pre-check; the unique index catches it, replay from storage.
		if existing, qerr := s.store.OrderByCheckoutRef(ctx, userID, ref); qerr == nil && existing != nil {
			return &Result{Order: existing, Items: existing.Items, Replayed: true, CartCleared: true}, nil
		}

		metrics.Counter(metrics.MetricOrderFailed)
		stage := StageOrder
		if errors.Is(err, ErrLineWrite) {
			stage = StageLines
		}
		return nil, placementErr(stage, err)
	}

	result := &Result{
		Order:       order,
		Items:       items,
		Address:     address,
		Subtotal:    subtotal,
		CartCleared: true,
	}
	if err := s.store.ClearCart(ctx, userID); err != nil {
		// The order stands; a stale cart is the lesser harm.
		result.CartCleared = false
		zap.L().Warn("cart clear failed after order placement",
			zap.Int64("user_id", userID),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	metrics.Counter(metrics.MetricOrderPlaced)
	if s.bus != nil {
		s.bus.Publish(TopicOrderPlaced, OrderPlacedEvent{
			Order:         *order,
			Items:         items,
			Address:       *address,
			CustomerEmail: in.CustomerEmail,
			CustomerName:  in.CustomerName,
		})
	}
	return result, nil
}

func (s *Saga) compensateAddress(ctx context.Context, addressID int64) {
	if err := s.store.DeleteAddress(ctx, addressID); err != nil {
		zap.L().Warn("address compensation failed, orphan row left behind",
			zap.Int64("address_id", addressID),
			zap.Error(err))
	}
}
