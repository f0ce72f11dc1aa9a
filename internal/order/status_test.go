package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camilovelasq/tienda-backend/internal/order"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to order.Status }{
		{order.StatusPending, order.StatusAccepted},
		{order.StatusPending, order.StatusRejected},
		{order.StatusAccepted, order.StatusInProcess},
		{order.StatusAccepted, order.StatusRejected},
		{order.StatusInProcess, order.StatusShipped},
		{order.StatusInProcess, order.StatusRejected},
		{order.StatusShipped, order.StatusDelivered},
	}
	for _, tr := range allowed {
		assert.True(t, order.CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	all := []order.Status{
		order.StatusPending, order.StatusAccepted, order.StatusInProcess,
		order.StatusShipped, order.StatusDelivered, order.StatusRejected, order.StatusCancelled,
	}

	isAllowed := func(from, to order.Status) bool {
		for _, tr := range allowed {
			if tr.from == from && tr.to == to {
				return true
			}
		}
		return false
	}

	// Everything outside the explicit adjacency is rejected, including
	// self-transitions and any edge into cancelled.
	for _, from := range all {
		for _, to := range all {
			if isAllowed(from, to) {
				continue
			}
			assert.False(t, order.CanTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminal := []order.Status{order.StatusDelivered, order.StatusRejected, order.StatusCancelled}
	all := []order.Status{
		order.StatusPending, order.StatusAccepted, order.StatusInProcess,
		order.StatusShipped, order.StatusDelivered, order.StatusRejected, order.StatusCancelled,
	}
	for _, from := range terminal {
		for _, to := range all {
			assert.False(t, order.CanTransition(from, to), "terminal %s must not reach %s", from, to)
		}
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, order.CanCancel(order.StatusPending))
	assert.True(t, order.CanCancel(order.StatusAccepted))
	assert.False(t, order.CanCancel(order.StatusInProcess))
	assert.False(t, order.CanCancel(order.StatusShipped))
	assert.False(t, order.CanCancel(order.StatusDelivered))
	assert.False(t, order.CanCancel(order.StatusRejected))
	assert.False(t, order.CanCancel(order.StatusCancelled))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, order.ValidStatus(order.StatusPending))
	assert.True(t, order.ValidStatus(order.StatusCancelled))
	assert.False(t, order.ValidStatus(order.Status("paid")))
	assert.False(t, order.ValidStatus(order.Status("")))
}
