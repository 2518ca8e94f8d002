package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/KristianPetrov/1uplabs/internal/model"
)

func methodByKey(t *testing.T, methods []ManualPaymentMethod, key model.PaymentMethod) ManualPaymentMethod {
	t.Helper()
	for _, m := range methods {
		if m.Key == key {
			return m
		}
	}
	t.Fatalf("method %s missing", key)
	return ManualPaymentMethod{}
}

func TestMemoIsDeterministic(t *testing.T) {
	env := newTestEnv(t)

	orderID := "a1b2c3d4-0000-0000-0000-000000000000"
	memo := env.payment.Memo(orderID)
	require.Equal(t, "1UpLabs a1b2c3d4", memo)
	require.Equal(t, memo, env.payment.Memo(orderID), "same order always yields the same memo")
}

func TestAllFourMethodsAlwaysPresent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	methods := env.payment.Methods(ctx, "a1b2c3d4-e5f6-0000-0000-000000000000", 10000)
	require.Len(t, methods, 4)

	cashapp := methodByKey(t, methods, model.PaymentCashApp)
	require.NotNil(t, cashapp.PaymentURL)
	require.Equal(t, "https://cash.app/$1uplabs/100.00", *cashapp.PaymentURL)

	venmo := methodByKey(t, methods, model.PaymentVenmo)
	require.NotNil(t, venmo.PaymentURL)
	require.Contains(t, *venmo.PaymentURL, "https://venmo.com/Shop_1-upLabs?txn=pay&amount=100.00")
	require.Contains(t, *venmo.PaymentURL, "note=1UpLabs+a1b2c3d4")

	zelle := methodByKey(t, methods, model.PaymentZelle)
	require.Nil(t, zelle.PaymentURL, "zelle is copy-paste only")
	require.Equal(t, "pay@1uplabs.test", zelle.DestinationValue)

	bitcoin := methodByKey(t, methods, model.PaymentBitcoin)
	require.Nil(t, bitcoin.PaymentURL, "bitcoin is copy-paste only")
	require.Equal(t, "bc1qexampleaddress", bitcoin.DestinationValue)
}

func TestBitcoinAmountAtSpotRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// $100.00 at $50,000/BTC
	methods := env.payment.Methods(ctx, "a1b2c3d4-e5f6-0000-0000-000000000000", 10000)
	bitcoin := methodByKey(t, methods, model.PaymentBitcoin)

	require.NotNil(t, bitcoin.BitcoinAmountBTC)
	require.Equal(t, "0.00200000", *bitcoin.BitcoinAmountBTC)
	require.NotNil(t, bitcoin.BitcoinRateUSD)
	require.Equal(t, "50000.00", *bitcoin.BitcoinRateUSD)
	require.Contains(t, bitcoin.Note, "Send exactly 0.00200000 BTC")

	// $10.00 at the same rate
	methods = env.payment.Methods(ctx, "a1b2c3d4-e5f6-0000-0000-000000000000", 1000)
	bitcoin = methodByKey(t, methods, model.PaymentBitcoin)
	require.Equal(t, "0.00020000", *bitcoin.BitcoinAmountBTC)
}

func TestBitcoinQuoteUnavailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rate.err = errors.New("spot price unreachable")

	methods := env.payment.Methods(ctx, "a1b2c3d4-e5f6-0000-0000-000000000000", 10000)
	bitcoin := methodByKey(t, methods, model.PaymentBitcoin)

	require.Nil(t, bitcoin.BitcoinAmountBTC, "never compute 0 or a stale amount")
	require.Nil(t, bitcoin.BitcoinRateUSD)
	require.Contains(t, bitcoin.Note, "check with support")
}

func TestBitcoinQuoteNonPositiveRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.rate.rate = decimal.Zero

	methods := env.payment.Methods(ctx, "a1b2c3d4-e5f6-0000-0000-000000000000", 10000)
	bitcoin := methodByKey(t, methods, model.PaymentBitcoin)
	require.Nil(t, bitcoin.BitcoinAmountBTC)
}

func TestCashAppTagNormalization(t *testing.T) {
	require.Equal(t, "$1uplabs", normalizeCashAppTag(""))
	require.Equal(t, "$shop", normalizeCashAppTag("shop"))
	require.Equal(t, "$shop", normalizeCashAppTag("  $shop  "))
	require.Equal(t, "$myshop", normalizeCashAppTag("my shop"))
}

func TestVenmoHandleNormalization(t *testing.T) {
	require.Equal(t, "Shop_1-upLabs", normalizeVenmoHandleForPath("@Shop_1-upLabs"))
	require.Equal(t, "Shop", normalizeVenmoHandleForPath("@@Shop"))
	require.Equal(t, "Shop", normalizeVenmoHandleForPath("  Shop "))
}

func TestFormatUSDFromCents(t *testing.T) {
	require.Equal(t, "$0.00", FormatUSDFromCents(0))
	require.Equal(t, "$1.50", FormatUSDFromCents(150))
	require.Equal(t, "$138.00", FormatUSDFromCents(13800))
	require.Equal(t, "$1,234.56", FormatUSDFromCents(123456))
	require.Equal(t, "$1,234,567.89", FormatUSDFromCents(123456789))
}

func TestInstructionsTextLayout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	text := env.payment.InstructionsText(ctx, "a1b2c3d4-e5f6-0000-0000-000000000000", 10000)

	require.Contains(t, text, "Order ID: a1b2c3d4-e5f6-0000-0000-000000000000")
	require.Contains(t, text, "Total amount: $100.00")
	require.Contains(t, text, "- Cash App: Cash App tag $1uplabs")
	require.Contains(t, text, "Amount to send: 0.00200000 BTC")
	require.Contains(t, text, "Rate used: $50000.00 per BTC")
	require.Contains(t, text, "Memo to include: 1UpLabs a1b2c3d4")
	require.Contains(t, text, "For Zelle, add the Order ID in the memo before sending.")
}

func TestOrderNumberUppercasesShortPrefix(t *testing.T) {
	require.Equal(t, "A1B2C3D4", OrderNumber("a1b2c3d4-e5f6-0000-0000-000000000000"))
	require.Equal(t, "ABC", OrderNumber("abc"))
}
