package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/notify"
)

type Service interface {
	Create(ctx context.Context, input NewOrder) (*Order, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID, staff bool) (*Order, error)
	Track(ctx context.Context, number string) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int, error)
	List(ctx context.Context, status *Status, page, limit int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, reason *string) (*Order, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID, staff bool) (*Order, error)
}

type service struct {
	repo   Repository
	sender notify.Sender
}

func NewService(repo Repository, sender notify.Sender) Service {
	return &service{repo: repo, sender: sender}
}

func (s *service) Create(ctx context.Context, input NewOrder) (*Order, error) {
	if len(input.Lines) == 0 {
		return nil, apperr.InvalidInput("order must contain at least one product")
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, apperr.InvalidInput(fmt.Sprintf("quantity for product %s must be at least 1", line.ProductID))
		}
		if line.ProductID == uuid.Nil {
			return nil, apperr.InvalidInput("product id is required on every line")
		}
	}

	number, err := NewNumber(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	o := &Order{
		Number:          number,
		UserID:          input.UserID,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		PaymentMethod:   input.PaymentMethod,
		Status:          StatusPending,
		Items:           make([]Item, len(input.Lines)),
	}
	for i, line := range input.Lines {
		o.Items[i] = Item{ProductID: line.ProductID, Quantity: line.Quantity, Size: line.Size}
	}

	if err := s.repo.Create(ctx, o); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			log.Warn().Err(err).Stringer("user_id", input.UserID).Msg("service: order creation rejected")
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", input.UserID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Str("numero", o.Number).Float64("total", o.Total).Msg("service: order created")

	// Post-commit, best-effort. A notification failure never surfaces to the
	// caller; the order is already committed.
	s.sendConfirmation(ctx, o)

	return o, nil
}

func (s *service) sendConfirmation(ctx context.Context, o *Order) {
	data := notify.OrderConfirmation{
		Number:       o.Number,
		CustomerName: o.CustomerName,
		Subtotal:     o.Subtotal,
		Total:        o.Total,
	}
	for _, item := range o.Items {
		data.Lines = append(data.Lines, notify.OrderLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	if err := s.sender.SendOrderConfirmation(ctx, o.CustomerEmail, data); err != nil {
		log.Warn().Err(err).Str("numero", o.Number).Msg("service: failed to send order confirmation")
	}
}

// GetForUser fetches an order, enforcing ownership unless the caller is staff.
func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID, staff bool) (*Order, error) {
	o, err := s.getByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !staff && o.UserID != userID {
		// Report not-found rather than confirming the order exists.
		return nil, apperr.NotFound("order")
	}
	return o, nil
}

func (s *service) getByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	return o, nil
}

func (s *service) Track(ctx context.Context, number string) (*Order, error) {
	o, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Str("numero", number).Msg("service: failed to fetch order by number")
		return nil, fmt.Errorf("service: failed to fetch order by number: %w", err)
	}
	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int, error) {
	page, limit = normalizePage(page, limit)
	orders, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list user orders")
		return nil, 0, fmt.Errorf("service: failed to list user orders: %w", err)
	}
	return orders, total, nil
}

func (s *service) List(ctx context.Context, status *Status, page, limit int) ([]Order, int, error) {
	if status != nil && !ValidStatus(*status) {
		return nil, 0, apperr.InvalidInput("unknown order status " + string(*status))
	}
	page, limit = normalizePage(page, limit)
	orders, total, err := s.repo.List(ctx, status, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, 0, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, reason *string) (*Order, error) {
	if !ValidStatus(newStatus) {
		return nil, apperr.InvalidInput("unknown order status " + string(newStatus))
	}

	current, err := s.getByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(current.Status, newStatus) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, apperr.InvalidTransition(string(current.Status), string(newStatus))
	}

	if newStatus != StatusRejected {
		reason = nil
	}
	if err := s.repo.UpdateStatus(ctx, orderID, current.Status, newStatus, reason); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return s.getByID(ctx, orderID)
}

func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID, staff bool) (*Order, error) {
	current, err := s.GetForUser(ctx, userID, orderID, staff)
	if err != nil {
		return nil, err
	}

	// The repository re-checks under a row lock; this check just gives a
	// precise error without opening a transaction.
	if !CanCancel(current.Status) {
		return nil, apperr.InvalidTransition(string(current.Status), string(StatusCancelled))
	}

	if err := s.repo.Cancel(ctx, orderID); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to cancel order")
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Msg("service: order cancelled, stock restored")
	return s.getByID(ctx, orderID)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
