package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/KristianPetrov/1uplabs/internal/model"
)

func currentInventory(t *testing.T, env *testEnv, slug string) *int64 {
	t.Helper()
	var override model.PriceOverride
	require.NoError(t, env.db.Where("slug = ?", slug).First(&override).Error)
	return override.Inventory
}

func countOrders(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&count).Error)
	return count
}

func TestCommitOverridePriceAndInventory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.pricing.SetOverride(ctx, "bpc-157-10mg", i64(6900), i64(2)))

	orderID, err := env.checkout.Commit(ctx, validCheckoutInput(CartLine{Slug: "bpc-157-10mg", Qty: 2}))
	require.NoError(t, err)
	require.NotEmpty(t, orderID)

	order, err := env.orders.Get(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, order.Status)
	require.Equal(t, int64(13800), order.SubtotalCents)
	require.Equal(t, order.SubtotalCents, order.TotalCents)
	require.Equal(t, "customer@example.com", order.Email)
	require.Equal(t, "US", order.ShippingCountry)
	require.Nil(t, order.CustomerID)

	items, err := env.orders.GetItems(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "bpc-157-10mg", items[0].ProductSlug)
	require.Equal(t, "BPC-157", items[0].ProductName)
	require.Equal(t, "10mg", items[0].ProductAmount)
	require.Equal(t, int64(2), items[0].Qty)
	require.Equal(t, int64(6900), items[0].UnitPriceCents)
	require.Equal(t, int64(13800), items[0].LineTotalCents)

	remaining := currentInventory(t, env, "bpc-157-10mg")
	require.NotNil(t, remaining)
	require.Equal(t, int64(0), *remaining)

	// and the very next unit is gone
	_, err = env.checkout.Commit(ctx, validCheckoutInput(CartLine{Slug: "bpc-157-10mg", Qty: 1}))
	var outOfStock *OutOfStockError
	require.ErrorAs(t, err, &outOfStock)
	require.Equal(t, "bpc-157-10mg", outOfStock.Slug)
	require.Equal(t, int64(1), outOfStock.Requested)
	require.Equal(t, int64(0), outOfStock.Available)
}

func TestCommitBasePriceUnlimitedInventory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orderID, err := env.checkout.Commit(ctx, validCheckoutInput(
		CartLine{Slug: "bpc-157-10mg", Qty: 3},
		CartLine{Slug: "tb-500-10mg", Qty: 1},
	))
	require.NoError(t, err)

	order, err := env.orders.Get(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, int64(3*7900+8900), order.SubtotalCents)
}

func TestCommitOutOfStockRollsBackEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.pricing.SetOverride(ctx, "bpc-157-10mg", nil, i64(10)))
	require.NoError(t, env.pricing.SetOverride(ctx, "tb-500-10mg", nil, i64(1)))

	// first line reserves fine, second line overruns: the whole order must
	// unwind, including the first reservation
	_, err := env.checkout.Commit(ctx, validCheckoutInput(
		CartLine{Slug: "bpc-157-10mg", Qty: 5},
		CartLine{Slug: "tb-500-10mg", Qty: 2},
	))
	var outOfStock *OutOfStockError
	require.ErrorAs(t, err, &outOfStock)
	require.Equal(t, "tb-500-10mg", outOfStock.Slug)
	require.Equal(t, int64(2), outOfStock.Requested)
	require.Equal(t, int64(1), outOfStock.Available)

	require.Equal(t, int64(10), *currentInventory(t, env, "bpc-157-10mg"))
	require.Equal(t, int64(1), *currentInventory(t, env, "tb-500-10mg"))
	require.Zero(t, countOrders(t, env))
	require.Zero(t, env.email.sendCount())
}

func TestCommitDuplicateLinesReservedIndependently(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.pricing.SetOverride(ctx, "bpc-157-10mg", nil, i64(3)))

	// two lines for the same slug are not coalesced; the second decrement
	// overruns and fails the whole order
	_, err := env.checkout.Commit(ctx, validCheckoutInput(
		CartLine{Slug: "bpc-157-10mg", Qty: 2},
		CartLine{Slug: "bpc-157-10mg", Qty: 2},
	))
	var outOfStock *OutOfStockError
	require.ErrorAs(t, err, &outOfStock)

	require.Equal(t, int64(3), *currentInventory(t, env, "bpc-157-10mg"))
	require.Zero(t, countOrders(t, env))

	// within the ceiling, both lines commit and each is its own item
	orderID, err := env.checkout.Commit(ctx, validCheckoutInput(
		CartLine{Slug: "bpc-157-10mg", Qty: 2},
		CartLine{Slug: "bpc-157-10mg", Qty: 1},
	))
	require.NoError(t, err)

	items, err := env.orders.GetItems(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(0), *currentInventory(t, env, "bpc-157-10mg"))
}

func TestCommitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"empty cart", func(in *CreateOrderInput) { in.Lines = nil }},
		{"qty zero", func(in *CreateOrderInput) { in.Lines[0].Qty = 0 }},
		{"qty above cap", func(in *CreateOrderInput) { in.Lines[0].Qty = 100 }},
		{"missing email", func(in *CreateOrderInput) { in.Email = "" }},
		{"short phone", func(in *CreateOrderInput) { in.Phone = "123" }},
		{"missing name", func(in *CreateOrderInput) { in.ShippingName = "" }},
		{"missing address", func(in *CreateOrderInput) { in.ShippingAddress1 = "" }},
		{"bad country", func(in *CreateOrderInput) { in.ShippingCountry = "USA" }},
		{"bad payment method", func(in *CreateOrderInput) { in.PaymentMethod = "paypal" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCheckoutInput(CartLine{Slug: "bpc-157-10mg", Qty: 1})
			tc.mutate(&input)

			_, err := env.checkout.Commit(ctx, input)
			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
		})
	}

	require.Zero(t, countOrders(t, env), "rejected input must never persist")
}

func TestCommitUnknownProductRejectsWholeCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.checkout.Commit(ctx, validCheckoutInput(
		CartLine{Slug: "bpc-157-10mg", Qty: 1},
		CartLine{Slug: "not-a-product", Qty: 1},
	))
	var unknown *UnknownProductError
	require.ErrorAs(t, err, &unknown)
	require.Zero(t, countOrders(t, env))
}

func TestCommitQty99Accepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.checkout.Commit(ctx, validCheckoutInput(CartLine{Slug: "bpc-157-10mg", Qty: 99}))
	require.NoError(t, err)
}

func TestCommitSignedInCustomerUpsertsDefaultAddress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := uuid.NewString()
	require.NoError(t, env.db.Create(&model.User{
		ID:           userID,
		Email:        "jordan@example.com",
		PasswordHash: "x",
		Role:         "customer",
	}).Error)

	input := validCheckoutInput(CartLine{Slug: "bpc-157-10mg", Qty: 1})
	input.CustomerID = &userID
	_, err := env.checkout.Commit(ctx, input)
	require.NoError(t, err)

	address, err := env.customerRepo.FindDefaultAddress(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "123 Elm Street", address.Address1)
	require.True(t, address.IsDefault)

	// a second checkout overwrites the same default row instead of adding one
	input.ShippingAddress1 = "456 Oak Avenue"
	_, err = env.checkout.Commit(ctx, input)
	require.NoError(t, err)

	var addressCount int64
	require.NoError(t, env.db.Model(&model.CustomerAddress{}).
		Where("user_id = ?", userID).Count(&addressCount).Error)
	require.Equal(t, int64(1), addressCount)

	address, err = env.customerRepo.FindDefaultAddress(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "456 Oak Avenue", address.Address1)

	var user model.User
	require.NoError(t, env.db.First(&user, "id = ?", userID).Error)
	require.NotNil(t, user.Name)
	require.Equal(t, "Jordan Reyes", *user.Name)
}

func TestCommitSendsReceiptOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.checkout.Commit(ctx, validCheckoutInput(CartLine{Slug: "bpc-157-10mg", Qty: 1}))
	require.NoError(t, err)
	require.Equal(t, 1, env.email.sendCount())
	require.Equal(t, "customer@example.com", env.email.lastSend().to)
	require.Contains(t, env.email.lastSend().subject, "Receipt for order #")
}

func TestCommitLastUnitRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.email.enabled = false

	const rounds = 25
	for round := 0; round < rounds; round++ {
		require.NoError(t, env.pricing.SetOverride(ctx, "bpc-157-10mg", nil, i64(1)))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = env.checkout.Commit(ctx, validCheckoutInput(CartLine{Slug: "bpc-157-10mg", Qty: 1}))
			}(i)
		}
		wg.Wait()

		var wins, losses int
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			var outOfStock *OutOfStockError
			require.ErrorAs(t, err, &outOfStock)
			losses++
		}
		require.Equal(t, 1, wins, "exactly one commit may take the last unit")
		require.Equal(t, 1, losses)

		remaining := currentInventory(t, env, "bpc-157-10mg")
		require.NotNil(t, remaining)
		require.GreaterOrEqual(t, *remaining, int64(0), "inventory must never go negative")
		require.Equal(t, int64(0), *remaining)
	}
}
