package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/tastehub/cart"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

func margheritaCart() cart.Cart {
	var c cart.Cart
	c.Add(models.MenuItem{ID: "m1", Name: "Margherita", Price: decimal.NewFromInt(299), Category: models.CategoryMainCourse, Available: true})
	return c
}

func TestBuildOrder_EmptyTableAlwaysValidationError(t *testing.T) {
	methods := []models.PaymentMethod{models.PaymentMethodCash, models.PaymentMethodUPI, models.PaymentMethodCard, "bitcoin"}
	for _, c := range []cart.Cart{{}, margheritaCart()} {
		for _, m := range methods {
			for _, table := range []string{"", "   "} {
				_, err := BuildOrder(c, table, m, BuildOptions{})
				var validationErr *utils.ValidationError
				require.True(t, errors.As(err, &validationErr), "method %s", m)
				assert.Equal(t, "tableNumber", validationErr.Field)
			}
		}
	}
}

func TestBuildOrder_EmptyCart(t *testing.T) {
	_, err := BuildOrder(cart.Cart{}, "5", models.PaymentMethodCash, BuildOptions{})
	assert.ErrorIs(t, err, utils.ErrEmptyCart)
}

func TestBuildOrder_UnknownMethod(t *testing.T) {
	_, err := BuildOrder(margheritaCart(), "5", "bitcoin", BuildOptions{})
	assert.Equal(t, 400, utils.StatusFor(err))
}

func TestBuildOrder_Cash(t *testing.T) {
	draft, err := BuildOrder(margheritaCart(), " 5 ", models.PaymentMethodCash, BuildOptions{UserID: "uid-1"})
	require.NoError(t, err)

	assert.Equal(t, "5", draft.TableNumber)
	assert.True(t, draft.TotalAmount.Equal(decimal.NewFromInt(299)))
	assert.Equal(t, models.PaymentStatusUnpaid, draft.PaymentStatus)
	assert.Equal(t, models.OrderStatusNew, draft.OrderStatus)
	assert.Equal(t, "uid-1", draft.UserID)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "Margherita", draft.Items[0].Name)
	assert.Equal(t, 1, draft.Items[0].Quantity)
}

func TestBuildOrder_GatewayPaidOnlyWithPaymentID(t *testing.T) {
	pending, err := BuildOrder(margheritaCart(), "5", models.PaymentMethodUPI, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, pending.PaymentStatus)

	paid, err := BuildOrder(margheritaCart(), "5", models.PaymentMethodCard, BuildOptions{GatewayOrderID: "order_1", GatewayPaymentID: "pay_1"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, "order_1", paid.GatewayOrderID)
	assert.Equal(t, "pay_1", paid.GatewayPaymentID)
}

func TestBuildOrder_TotalMatchesLines(t *testing.T) {
	c := margheritaCart()
	c.Add(models.MenuItem{ID: "d1", Name: "Fruit Mojito", Price: decimal.RequireFromString("180.50"), Category: models.CategoryDrinks})
	c.SetQuantity("d1", 3)

	draft, err := BuildOrder(c, "12", models.PaymentMethodCash, BuildOptions{})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, l := range draft.Items {
		sum = sum.Add(l.Subtotal())
	}
	assert.True(t, sum.Equal(draft.TotalAmount))
	assert.Equal(t, "840.5", draft.TotalAmount.String())
}
