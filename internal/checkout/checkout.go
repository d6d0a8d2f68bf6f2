package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pritam-devloper/shophub/internal/domain"
	"github.com/Pritam-devloper/shophub/internal/pricing"
	"github.com/Pritam-devloper/shophub/internal/service"
	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
	"github.com/Pritam-devloper/shophub/pkg/validator"
)

// Form is the checkout form. Field validation follows the storefront's
// rules for contact and payment details; the card fields are validated but
// never sent anywhere (payment is simulated).
type Form struct {
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	ZipCode    string `json:"zip_code" validate:"required,zipcode"`
	Phone      string `json:"phone" validate:"required,phone"`
	CardNumber string `json:"card_number" validate:"required,cardnumber"`
	CardName   string `json:"card_name" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required,cardexpiry"`
	CVV        string `json:"cvv" validate:"required,cvv"`
}

// Service turns the current cart into an order. Orders live in memory only;
// there is no payment gateway and no server authority over them.
type Service struct {
	cart    *service.CartService
	pricing pricing.Config
	logger  *slog.Logger

	mu     sync.RWMutex
	orders []domain.Order
}

// NewService creates a checkout service over the given cart engine and
// pricing policy.
func NewService(cart *service.CartService, pricingCfg pricing.Config, logger *slog.Logger) *Service {
	return &Service{
		cart:    cart,
		pricing: pricingCfg,
		logger:  logger,
	}
}

// Quote returns the pricing snapshot for the live cart. It is recomputed on
// every call so it always reflects the current contents.
func (s *Service) Quote() pricing.Snapshot {
	return s.pricing.Quote(s.cart.Items())
}

// PlaceOrder validates the form, prices the current cart, records the order,
// and clears the cart. Placing an order with an empty cart is reported as an
// invalid-input outcome, not a fault.
func (s *Service) PlaceOrder(ctx context.Context, form Form) (*domain.Order, error) {
	if err := validator.Validate(form); err != nil {
		return nil, err
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cannot place an order with an empty cart")
	}

	snapshot := s.pricing.Quote(items)

	order := domain.Order{
		ID:            uuid.New().String(),
		Items:         items,
		SubtotalCents: snapshot.SubtotalCents,
		ShippingCents: snapshot.ShippingCents,
		TaxCents:      snapshot.TaxCents,
		TotalCents:    snapshot.TotalCents,
		Contact: domain.ShippingContact{
			Email:     form.Email,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Address:   form.Address,
			City:      form.City,
			State:     form.State,
			ZipCode:   form.ZipCode,
			Phone:     form.Phone,
		},
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	if err := s.cart.Clear(ctx); err != nil {
		// The order is already recorded; a failed clear leaves the cart
		// intact but must not lose the order.
		s.logger.ErrorContext(ctx, "failed to clear cart after order",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return &order, err
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("line_items", len(order.Items)),
		slog.Int64("total_cents", order.TotalCents),
	)
	return &order, nil
}

// Orders returns the orders placed during this session, oldest first.
func (s *Service) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, len(s.orders))
	copy(orders, s.orders)
	return orders
}
