package checkout

import (
	"errors"
	"fmt"
)

// Saga stages as they surface in placement errors.
const (
	StageAddress   = "address"
	StageOrder     = "order"
	StageLines     = "lines"
	StageClearCart = "clear_cart"
)

var (
	// ErrEmptyCart rejects checkout before any write when the cart has
	// no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrValidation marks a rejected address form. No write happens.
	ErrValidation = errors.New("invalid checkout form")

	// ErrFetch marks a failed cart snapshot read. No write happens.
	ErrFetch = errors.New("cart fetch failed")

	// ErrOrderWrite and ErrLineWrite mark which insert inside the
	// order transaction failed. The store wraps them so the saga can
	// report its stage.
	ErrOrderWrite = errors.New("order header write failed")
	ErrLineWrite  = errors.New("order line write failed")
)

// PlacementError reports the saga stage that failed after writes began.
type PlacementError struct {
	Stage string
	Err   error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("order placement failed at %s: %s", e.Stage, e.Err.Error())
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

func placementErr(stage string, err error) *PlacementError {
	return &PlacementError{Stage: stage, Err: err}
}

func fieldErr(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}
