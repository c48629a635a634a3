// Package mailer sends order confirmation emails off the event bus.
// Sends are best effort; a mail failure never touches order state.
package mailer

import (
	"fmt"
	"strings"

	"github.com/ablewear/ablewear/config"
	"github.com/ablewear/ablewear/internal/checkout"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const sendPoolSize = 4

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service listens for order.placed events and mails confirmations.
type Service struct {
	cfg    config.SmtpConfig
	dialer dialer
	pool   *ants.Pool
}

func New(cfg config.SmtpConfig) (*Service, error) {
	pool, err := ants.NewPool(sendPoolSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		pool:   pool,
	}, nil
}

// Attach subscribes the service to the application event bus.
func (s *Service) Attach(bus EventBus.Bus) error {
	return bus.SubscribeAsync(checkout.TopicOrderPlaced, s.onOrderPlaced, false)
}

func (s *Service) Release() {
	s.pool.Release()
}

func (s *Service) onOrderPlaced(evt checkout.OrderPlacedEvent) {
	if !s.cfg.Enabled || evt.CustomerEmail == "" {
		return
	}
	err := s.pool.Submit(func() {
		if err := s.sendConfirmation(evt); err != nil {
			zap.L().Warn("order confirmation mail failed",
				zap.Int64("order_id", evt.Order.ID),
				zap.String("to", evt.CustomerEmail),
				zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Warn("mail pool submit failed", zap.Error(err))
	}
}

func (s *Service) sendConfirmation(evt checkout.OrderPlacedEvent) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", evt.CustomerEmail)
	m.SetHeader("Subject", fmt.Sprintf("AbleWear order %d confirmed", evt.Order.ID))
	m.SetBody("text/plain", renderConfirmation(evt))
	return s.dialer.DialAndSend(m)
}

func renderConfirmation(evt checkout.OrderPlacedEvent) string {
	var b strings.Builder
	name := evt.CustomerName
	if name == "" {
		name = evt.Address.FullName
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order!\n\n", name)
	for _, item := range evt.Items {
		fmt.Fprintf(&b, "  %d x product %d (%s / %s) @ %s\n",
			item.Quantity, item.ProductID, item.Color, item.Size, common.FmtRupee(item.Price))
	}
	fmt.Fprintf(&b, "\nTotal: %s\nShipping: Free\n\n", common.FmtRupee(evt.Order.TotalAmount))
	fmt.Fprintf(&b, "Delivery to:\n%s\n%s\n", evt.Address.AddressLine1, evt.Address.City)
	return b.String()
}
