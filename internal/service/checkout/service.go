package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"clothcycle/internal/domain"
)

// ErrEmptyCart rejects a checkout with nothing to order.
var ErrEmptyCart = errors.New("cart is empty")

type orderRepo interface {
	CreateWithItems(ctx context.Context, in domain.Order) (*domain.Order, error)
}

// cartStore is the slice of the cart store checkout needs: a snapshot of
// lines, the derived totals, and post-order clearing.
type cartStore interface {
	Lines() []domain.CartLine
	Aggregate() domain.CartAggregate
	Clear(ctx context.Context)
}

type mailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	orders   orderRepo
	mailer   mailSender
	mailFrom string
	logger   *log.Logger
}

func New(orders orderRepo, mailer mailSender, mailFrom string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, mailer: mailer, mailFrom: mailFrom, logger: logger}
}

// Submit validates the delivery details, records the order with one frozen
// item per cart line, and clears the cart. The cart is only cleared after the
// order is durably written; guests (nil userID) may check out.
func (s *Service) Submit(ctx context.Context, cart cartStore, userID *string, details DeliveryDetails) (*domain.Order, error) {
	if errs := details.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	agg := cart.Aggregate()

	order := domain.Order{
		UserID:               userID,
		FullName:             details.FullName,
		Phone:                details.Phone,
		Email:                details.Email,
		StreetAddress:        details.StreetAddress,
		City:                 details.City,
		PostalCode:           details.PostalCode,
		State:                details.State,
		DeliveryInstructions: details.DeliveryInstructions,
		PaymentMethod:        domain.PaymentMethodCOD,
		Status:               domain.OrderStatusPending,
		TotalAmount:          agg.TotalAmount,
		PlatformFee:          agg.PlatformFee,
		GrandTotal:           agg.GrandTotal,
	}
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItemFromLine(line))
	}

	created, err := s.orders.CreateWithItems(ctx, order)
	if err != nil {
		s.logger.Printf("checkout: create order failed: %v", err)
		return nil, errors.New("could not place order")
	}

	cart.Clear(ctx)

	s.sendConfirmation(ctx, created)

	return created, nil
}

// sendConfirmation mails the order summary. Best effort: a mail failure never
// fails the order.
func (s *Service) sendConfirmation(ctx context.Context, order *domain.Order) {
	if s.mailer == nil || s.mailFrom == "" {
		return
	}
	subject := fmt.Sprintf("Order %s confirmed", order.ID)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour order %s has been placed.\n\nSubtotal: ₹%.2f\nPlatform fee: ₹%.2f\nTotal due on delivery: ₹%.2f\n\nPayment: cash on delivery.\n",
		order.FullName, order.ID, order.TotalAmount, order.PlatformFee, order.GrandTotal,
	)
	if err := s.mailer.Send(ctx, s.mailFrom, order.Email, subject, body); err != nil {
		s.logger.Printf("checkout: confirmation mail for order %s failed: %v", order.ID, err)
	}
}
