package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoLineOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder(
		"order-1", "VDR-20250101-ABCDEFGH", "", "lagos-mainland", "NGN",
		Address{FullName: "Ada Obi", Email: "ada@example.com", Line1: "12 Marina Rd", City: "Lagos", Country: "NG"},
		[]Item{
			{VariantID: "v-1", ProductID: "p-1", ProductName: "Ankara Shirt", Quantity: 2, UnitPrice: 500000},
			{VariantID: "v-2", ProductID: "p-2", ProductName: "Denim Cap", Quantity: 1, UnitPrice: 300000},
		},
		150000, 0,
	)
	require.NoError(t, err)
	return order
}

func TestNewOrder_ComputesTotals(t *testing.T) {
	order := twoLineOrder(t)

	require.Equal(t, int64(1000000), order.Items[0].Total)
	require.Equal(t, int64(300000), order.Items[1].Total)
	require.Equal(t, int64(1300000), order.Subtotal)
	require.Equal(t, int64(1450000), order.Total)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, PaymentPending, order.PaymentStatus)
}

func TestNewOrder_RejectsEmptyCart(t *testing.T) {
	_, err := NewOrder("order-1", "VDR-1", "", "zone", "NGN", Address{}, nil, 0, 0)
	require.ErrorIs(t, err, ErrNoItems)
}

func TestNewOrder_RejectsNonPositiveQuantity(t *testing.T) {
	_, err := NewOrder("order-1", "VDR-1", "", "zone", "NGN", Address{},
		[]Item{{VariantID: "v-1", Quantity: 0, UnitPrice: 100}}, 0, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestValidate_CatchesTamperedTotals(t *testing.T) {
	order := twoLineOrder(t)
	order.Total -= 50000
	require.ErrorIs(t, order.Validate(), ErrTotalsMismatch)
}

func TestUpdateStatus_AllowsAnyKnownTransition(t *testing.T) {
	order := twoLineOrder(t)

	require.NoError(t, order.UpdateStatus(StatusDelivered))
	// Staff can walk a status backwards; only the enum is enforced.
	require.NoError(t, order.UpdateStatus(StatusProcessing))
	require.Equal(t, StatusProcessing, order.Status)

	require.ErrorIs(t, order.UpdateStatus(Status("ON_FIRE")), ErrInvalidStatus)
	require.Equal(t, StatusProcessing, order.Status)
}

func TestMarkPaid_IsIdempotent(t *testing.T) {
	order := twoLineOrder(t)

	require.True(t, order.MarkPaid("ref-1"))
	require.Equal(t, PaymentPaid, order.PaymentStatus)
	require.Equal(t, "ref-1", order.PaymentReference)

	require.False(t, order.MarkPaid("ref-2"))
	require.Equal(t, "ref-1", order.PaymentReference)
}

func TestMarkPaymentFailed_NeverUnpays(t *testing.T) {
	order := twoLineOrder(t)

	require.True(t, order.MarkPaymentFailed("ref-1"))
	require.Equal(t, PaymentFailed, order.PaymentStatus)

	require.True(t, order.MarkPaid("ref-2"))
	require.False(t, order.MarkPaymentFailed("ref-3"))
	require.Equal(t, PaymentPaid, order.PaymentStatus)
	require.Equal(t, "ref-2", order.PaymentReference)
}

func TestMarkRefunded(t *testing.T) {
	order := twoLineOrder(t)
	require.ErrorIs(t, order.MarkRefunded(), ErrPaymentFinal)

	order.MarkPaid("ref-1")
	require.NoError(t, order.MarkRefunded())
	require.Equal(t, PaymentRefunded, order.PaymentStatus)
}
