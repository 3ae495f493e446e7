package order

import (
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_Paid(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	original := Order{ID: "o1"}

	paid, err := original.Paid(PaymentResult{ID: "PAY-1", Status: "COMPLETED"}, at)

	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, at, *paid.PaidAt)
	assert.Equal(t, "PAY-1", paid.PaymentResult.ID)
	assert.Equal(t, at, paid.UpdatedAt)

	// original is untouched
	assert.False(t, original.IsPaid)
	assert.Nil(t, original.PaidAt)
	assert.Nil(t, original.PaymentResult)
}

func TestOrder_Paid_Twice(t *testing.T) {
	paid, err := Order{}.Paid(PaymentResult{ID: "first"}, time.Now())
	require.NoError(t, err)

	again, err := paid.Paid(PaymentResult{ID: "second"}, time.Now())

	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	assert.ErrorIs(t, err, apperr.Conflict)
	assert.Equal(t, "first", again.PaymentResult.ID)
}

func TestOrder_Delivered(t *testing.T) {
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	delivered, err := Order{}.Delivered(at, Policy{})

	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, at, *delivered.DeliveredAt)
}

func TestOrder_Delivered_Twice(t *testing.T) {
	delivered, err := Order{}.Delivered(time.Now(), Policy{})
	require.NoError(t, err)

	_, err = delivered.Delivered(time.Now(), Policy{})

	assert.ErrorIs(t, err, ErrOrderAlreadyDelivered)
}

func TestOrder_Delivered_PolicyRequiresPayment(t *testing.T) {
	policy := Policy{RequirePaymentBeforeDelivery: true}

	_, err := Order{}.Delivered(time.Now(), policy)
	assert.ErrorIs(t, err, ErrOrderNotPaid)
	assert.ErrorIs(t, err, apperr.Validation)

	paid, err := Order{}.Paid(PaymentResult{}, time.Now())
	require.NoError(t, err)
	_, err = paid.Delivered(time.Now(), policy)
	assert.NoError(t, err)
}

func TestOrder_OwnedBy(t *testing.T) {
	o := Order{User: "u1"}
	assert.True(t, o.OwnedBy("u1"))
	assert.False(t, o.OwnedBy("u2"))
}
