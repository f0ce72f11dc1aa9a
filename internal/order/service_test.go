package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/notify"
	"github.com/camilovelasq/tienda-backend/internal/order"
)

type mockRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	getByNumberFunc  func(ctx context.Context, number string) (*order.Order, error)
	listByUserFunc   func(ctx context.Context, userID uuid.UUID, page, limit int) ([]order.Order, int, error)
	listFunc         func(ctx context.Context, status *order.Status, page, limit int) ([]order.Order, int, error)
	updateStatusFunc func(ctx context.Context, id uuid.UUID, from, to order.Status, reason *string) error
	cancelFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRepository) Create(ctx context.Context, o *order.Order) error {
	return m.createFunc(ctx, o)
}
func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}
func (m *mockRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	return m.getByNumberFunc(ctx, number)
}
func (m *mockRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]order.Order, int, error) {
	return m.listByUserFunc(ctx, userID, page, limit)
}
func (m *mockRepository) List(ctx context.Context, status *order.Status, page, limit int) ([]order.Order, int, error) {
	return m.listFunc(ctx, status, page, limit)
}
func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status, reason *string) error {
	return m.updateStatusFunc(ctx, id, from, to, reason)
}
func (m *mockRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return m.cancelFunc(ctx, id)
}

type mockSender struct {
	confirmations []string
	welcomes      []string
	fail          bool
}

func (m *mockSender) SendOrderConfirmation(_ context.Context, to string, _ notify.OrderConfirmation) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.confirmations = append(m.confirmations, to)
	return nil
}

func (m *mockSender) SendWelcome(_ context.Context, to, _ string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.welcomes = append(m.welcomes, to)
	return nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func validInput(t *testing.T) order.NewOrder {
	t.Helper()
	return order.NewOrder{
		UserID:          mustUUID(t),
		CustomerName:    "Laura Gómez",
		CustomerEmail:   "laura@example.com",
		CustomerPhone:   "3001234567",
		ShippingAddress: "Calle 10 # 5-51",
		ShippingCity:    "Bogotá",
		PaymentMethod:   "contra_entrega",
		Lines: []order.NewLine{
			{ProductID: mustUUID(t), Quantity: 3},
		},
	}
}

func TestService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sender := &mockSender{}
		repo := &mockRepository{
			createFunc: func(_ context.Context, o *order.Order) error {
				// Simulate the repository transaction filling in snapshots.
				for i := range o.Items {
					o.Items[i].ProductName = "Camiseta"
					o.Items[i].UnitPrice = 100
					o.Items[i].Subtotal = order.Subtotal(o.Items[i].Quantity, 100)
					o.Subtotal += o.Items[i].Subtotal
				}
				o.Total = o.Subtotal
				return nil
			},
		}
		svc := order.NewService(repo, sender)

		created, err := svc.Create(context.Background(), validInput(t))
		require.NoError(t, err)

		assert.Equal(t, order.StatusPending, created.Status)
		assert.NotEmpty(t, created.Number)
		assert.Equal(t, 300.0, created.Subtotal)
		assert.Equal(t, created.Subtotal, created.Total)
		assert.Equal(t, []string{"laura@example.com"}, sender.confirmations)
	})

	t.Run("empty_lines", func(t *testing.T) {
		svc := order.NewService(&mockRepository{}, &mockSender{})
		input := validInput(t)
		input.Lines = nil

		_, err := svc.Create(context.Background(), input)
		assert.True(t, errors.Is(err, apperr.InvalidInput("")))
	})

	t.Run("zero_quantity", func(t *testing.T) {
		svc := order.NewService(&mockRepository{}, &mockSender{})
		input := validInput(t)
		input.Lines[0].Quantity = 0

		_, err := svc.Create(context.Background(), input)
		assert.True(t, errors.Is(err, apperr.InvalidInput("")))
	})

	t.Run("repository_rejection_propagates", func(t *testing.T) {
		repo := &mockRepository{
			createFunc: func(_ context.Context, _ *order.Order) error {
				return apperr.InsufficientStock("Camiseta", 2, 3)
			},
		}
		sender := &mockSender{}
		svc := order.NewService(repo, sender)

		_, err := svc.Create(context.Background(), validInput(t))
		assert.True(t, errors.Is(err, apperr.InsufficientStock("", 0, 0)))
		assert.Empty(t, sender.confirmations, "no confirmation for a failed order")
	})

	t.Run("notification_failure_is_swallowed", func(t *testing.T) {
		repo := &mockRepository{
			createFunc: func(_ context.Context, _ *order.Order) error { return nil },
		}
		svc := order.NewService(repo, &mockSender{fail: true})

		_, err := svc.Create(context.Background(), validInput(t))
		assert.NoError(t, err, "a failed email must not fail the committed order")
	})
}

func TestService_UpdateStatus(t *testing.T) {
	orderID := uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))

	tests := []struct {
		name      string
		current   order.Status
		requested order.Status
		wantErrIs error
	}{
		{"pending_to_accepted", order.StatusPending, order.StatusAccepted, nil},
		{"pending_to_rejected", order.StatusPending, order.StatusRejected, nil},
		{"accepted_to_in_process", order.StatusAccepted, order.StatusInProcess, nil},
		{"in_process_to_shipped", order.StatusInProcess, order.StatusShipped, nil},
		{"shipped_to_delivered", order.StatusShipped, order.StatusDelivered, nil},
		{"pending_to_delivered", order.StatusPending, order.StatusDelivered, apperr.InvalidTransition("", "")},
		{"delivered_is_terminal", order.StatusDelivered, order.StatusShipped, apperr.InvalidTransition("", "")},
		{"cancelled_is_terminal", order.StatusCancelled, order.StatusPending, apperr.InvalidTransition("", "")},
		{"cancelled_unreachable_via_update", order.StatusPending, order.StatusCancelled, apperr.InvalidTransition("", "")},
		{"unknown_status", order.StatusPending, order.Status("paid"), apperr.InvalidInput("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := tt.current
			var recordedFrom, recordedTo order.Status
			repo := &mockRepository{
				getByIDFunc: func(_ context.Context, id uuid.UUID) (*order.Order, error) {
					return &order.Order{ID: id, Status: current}, nil
				},
				updateStatusFunc: func(_ context.Context, _ uuid.UUID, from, to order.Status, _ *string) error {
					recordedFrom, recordedTo = from, to
					current = to
					return nil
				},
			}
			svc := order.NewService(repo, &mockSender{})

			updated, err := svc.UpdateStatus(context.Background(), orderID, tt.requested, nil)
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs))
				assert.Equal(t, order.Status(""), recordedTo, "repository must not be touched on a rejected transition")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.current, recordedFrom)
			assert.Equal(t, tt.requested, recordedTo)
			assert.Equal(t, tt.requested, updated.Status)
		})
	}

	t.Run("reason_only_kept_for_rejection", func(t *testing.T) {
		reason := "cliente no contesta"
		var recordedReason *string
		repo := &mockRepository{
			getByIDFunc: func(_ context.Context, id uuid.UUID) (*order.Order, error) {
				return &order.Order{ID: id, Status: order.StatusPending}, nil
			},
			updateStatusFunc: func(_ context.Context, _ uuid.UUID, _, _ order.Status, r *string) error {
				recordedReason = r
				return nil
			},
		}
		svc := order.NewService(repo, &mockSender{})

		_, err := svc.UpdateStatus(context.Background(), orderID, order.StatusAccepted, &reason)
		require.NoError(t, err)
		assert.Nil(t, recordedReason, "reason is dropped unless the order is rejected")

		repo.getByIDFunc = func(_ context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: id, Status: order.StatusPending}, nil
		}
		_, err = svc.UpdateStatus(context.Background(), orderID, order.StatusRejected, &reason)
		require.NoError(t, err)
		require.NotNil(t, recordedReason)
		assert.Equal(t, reason, *recordedReason)
	})
}

func TestService_Cancel(t *testing.T) {
	owner := uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	stranger := uuid.Must(uuid.FromString("999e8400-e29b-41d4-a716-446655440000"))
	orderID := uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))

	newRepo := func(status order.Status, cancelled *bool) *mockRepository {
		return &mockRepository{
			getByIDFunc: func(_ context.Context, id uuid.UUID) (*order.Order, error) {
				s := status
				if cancelled != nil && *cancelled {
					s = order.StatusCancelled
				}
				return &order.Order{ID: id, UserID: owner, Status: s}, nil
			},
			cancelFunc: func(_ context.Context, _ uuid.UUID) error {
				if cancelled != nil {
					*cancelled = true
				}
				return nil
			},
		}
	}

	t.Run("owner_cancels_pending", func(t *testing.T) {
		var cancelled bool
		svc := order.NewService(newRepo(order.StatusPending, &cancelled), &mockSender{})

		o, err := svc.Cancel(context.Background(), owner, orderID, false)
		require.NoError(t, err)
		assert.True(t, cancelled)
		assert.Equal(t, order.StatusCancelled, o.Status)
	})

	t.Run("non_owner_gets_not_found", func(t *testing.T) {
		var cancelled bool
		svc := order.NewService(newRepo(order.StatusPending, &cancelled), &mockSender{})

		_, err := svc.Cancel(context.Background(), stranger, orderID, false)
		assert.True(t, errors.Is(err, apperr.NotFound("")))
		assert.False(t, cancelled)
	})

	t.Run("staff_may_cancel_any_order", func(t *testing.T) {
		var cancelled bool
		svc := order.NewService(newRepo(order.StatusAccepted, &cancelled), &mockSender{})

		_, err := svc.Cancel(context.Background(), stranger, orderID, true)
		require.NoError(t, err)
		assert.True(t, cancelled)
	})

	t.Run("shipped_cannot_be_cancelled", func(t *testing.T) {
		var cancelled bool
		svc := order.NewService(newRepo(order.StatusShipped, &cancelled), &mockSender{})

		_, err := svc.Cancel(context.Background(), owner, orderID, false)
		assert.True(t, errors.Is(err, apperr.InvalidTransition("", "")))
		assert.False(t, cancelled)
	})
}

func TestService_GetForUser(t *testing.T) {
	owner := uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	orderID := uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))
	stored := &order.Order{ID: orderID, UserID: owner, Status: order.StatusPending, Number: "SOL-20260828-ABC123", Items: []order.Item{}}

	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, id uuid.UUID) (*order.Order, error) {
			if id == orderID {
				return stored, nil
			}
			return nil, apperr.NotFound("order")
		},
	}
	svc := order.NewService(repo, &mockSender{})

	got, err := svc.GetForUser(context.Background(), owner, orderID, false)
	require.NoError(t, err)
	if diff := cmp.Diff(stored, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	stranger := uuid.Must(uuid.FromString("999e8400-e29b-41d4-a716-446655440000"))
	_, err = svc.GetForUser(context.Background(), stranger, orderID, false)
	assert.True(t, errors.Is(err, apperr.NotFound("")), "ownership failures must look like not-found")

	got, err = svc.GetForUser(context.Background(), stranger, orderID, true)
	require.NoError(t, err, "staff bypasses ownership")
	assert.Equal(t, stored.Number, got.Number)
}
