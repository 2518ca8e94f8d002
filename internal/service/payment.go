package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/KristianPetrov/1uplabs/internal/client"
	"github.com/KristianPetrov/1uplabs/internal/config"
	"github.com/KristianPetrov/1uplabs/internal/model"
)

// ManualPaymentMethod is a derived view, recomputed on every request and
// never cached. Settlement is confirmed manually by an administrator.
type ManualPaymentMethod struct {
	Key              model.PaymentMethod `json:"key"`
	Title            string              `json:"title"`
	DestinationLabel string              `json:"destinationLabel"`
	DestinationValue string              `json:"destinationValue"`
	PaymentURL       *string             `json:"paymentUrl"`
	Note             string              `json:"note"`
	BitcoinAmountBTC *string             `json:"bitcoinAmountBtc"`
	BitcoinRateUSD   *string             `json:"bitcoinRateUsd"`
}

type PaymentService interface {
	Methods(ctx context.Context, orderID string, totalCents int64) []ManualPaymentMethod
	Memo(orderID string) string
	InstructionsText(ctx context.Context, orderID string, totalCents int64) string
}

type paymentServiceImpl struct {
	rateClient client.BTCRateClient
	cfg        *config.Payments
	logger     *zap.Logger
}

func NewPaymentService(rateClient client.BTCRateClient, cfg *config.Payments, logger *zap.Logger) PaymentService {
	return &paymentServiceImpl{
		rateClient: rateClient,
		cfg:        cfg,
		logger:     logger,
	}
}

// Memo derives a stable short reference from the order id, so repeated
// renders of the same order always hand the customer the same memo.
func (s *paymentServiceImpl) Memo(orderID string) string {
	return "1UpLabs " + shortOrderRef(orderID)
}

func shortOrderRef(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

// OrderNumber is the short human-facing order number shown in emails and on
// payment instructions.
func OrderNumber(orderID string) string {
	return strings.ToUpper(shortOrderRef(orderID))
}

func amountFromCents(cents int64) string {
	if cents < 0 {
		cents = 0
	}
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// FormatUSDFromCents renders cents as "$1,234.56".
func FormatUSDFromCents(cents int64) string {
	amount := amountFromCents(cents)
	sep := strings.SplitN(amount, ".", 2)
	whole, frac := sep[0], sep[1]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String() + "." + frac
}

func normalizeCashAppTag(tag string) string {
	trimmed := strings.Join(strings.Fields(tag), "")
	if trimmed == "" {
		return "$1uplabs"
	}
	if strings.HasPrefix(trimmed, "$") {
		return trimmed
	}
	return "$" + trimmed
}

func normalizeVenmoHandleForPath(handle string) string {
	return strings.TrimLeft(strings.TrimSpace(handle), "@")
}

func (s *paymentServiceImpl) Methods(ctx context.Context, orderID string, totalCents int64) []ManualPaymentMethod {
	amount := amountFromCents(totalCents)
	memo := s.Memo(orderID)

	cashAppTag := normalizeCashAppTag(s.cfg.CashAppTag)
	cashAppURL := fmt.Sprintf("https://cash.app/%s/%s", cashAppTag, amount)

	venmoHandle := strings.TrimSpace(s.cfg.VenmoHandle)
	venmoPath := normalizeVenmoHandleForPath(venmoHandle)
	if venmoPath == "" {
		venmoPath = "Shop_1-upLabs"
	}
	venmoURL := fmt.Sprintf("https://venmo.com/%s?txn=pay&amount=%s&note=%s",
		url.PathEscape(venmoPath), amount, url.QueryEscape(memo))

	zelleRecipient := strings.TrimSpace(s.cfg.ZelleRecipient)
	btcAddress := strings.TrimSpace(s.cfg.BTCAddress)

	btcAmount, btcRate := s.quoteBTC(ctx, orderID, totalCents)

	btcNote := "BTC quote temporarily unavailable. Please check with support for exact amount before sending."
	if btcAmount != nil {
		btcNote = fmt.Sprintf("Send exactly %s BTC for this order (network fee is separate).", *btcAmount)
	}

	return []ManualPaymentMethod{
		{
			Key:              model.PaymentCashApp,
			Title:            "Cash App",
			DestinationLabel: "Cash App tag",
			DestinationValue: cashAppTag,
			PaymentURL:       &cashAppURL,
			Note:             "Tap to open Cash App. Amount is pre-filled.",
		},
		{
			Key:              model.PaymentVenmo,
			Title:            "Venmo",
			DestinationLabel: "Venmo handle",
			DestinationValue: venmoHandle,
			PaymentURL:       &venmoURL,
			Note:             "Tap to open Venmo. Amount and memo are pre-filled.",
		},
		{
			Key:              model.PaymentZelle,
			Title:            "Zelle",
			DestinationLabel: "Zelle recipient",
			DestinationValue: zelleRecipient,
			Note:             "Copy recipient and add your Order ID in the memo.",
		},
		{
			Key:              model.PaymentBitcoin,
			Title:            "Bitcoin",
			DestinationLabel: "BTC address",
			DestinationValue: btcAddress,
			Note:             btcNote,
			BitcoinAmountBTC: btcAmount,
			BitcoinRateUSD:   btcRate,
		},
	}
}

// quoteBTC converts the order total to BTC at the live spot rate. On any
// lookup failure both returns are nil; the bitcoin method is still offered,
// just without a computed amount.
func (s *paymentServiceImpl) quoteBTC(ctx context.Context, orderID string, totalCents int64) (amount *string, rate *string) {
	spot, err := s.rateClient.SpotPriceUSD(ctx)
	if err != nil {
		s.logger.Warn("btc spot price unavailable",
			zap.String("order_id", orderID), zap.Error(err))
		return nil, nil
	}
	if !spot.IsPositive() {
		s.logger.Warn("btc spot price non-positive",
			zap.String("order_id", orderID), zap.String("rate", spot.String()))
		return nil, nil
	}

	if totalCents < 0 {
		totalCents = 0
	}
	usd := decimal.NewFromInt(totalCents).Div(decimal.NewFromInt(100))
	btc := usd.DivRound(spot, 8).StringFixed(8)
	rateLabel := spot.StringFixed(2)

	return &btc, &rateLabel
}

func (s *paymentServiceImpl) InstructionsText(ctx context.Context, orderID string, totalCents int64) string {
	methods := s.Methods(ctx, orderID, totalCents)
	memo := s.Memo(orderID)

	lines := []string{
		fmt.Sprintf("Order ID: %s", orderID),
		fmt.Sprintf("Total amount: %s", FormatUSDFromCents(totalCents)),
		"",
		"Manual payment methods:",
	}

	for _, method := range methods {
		lines = append(lines, fmt.Sprintf("- %s: %s %s",
			method.Title, method.DestinationLabel, method.DestinationValue))
		if method.Key == model.PaymentBitcoin && method.BitcoinAmountBTC != nil {
			lines = append(lines, fmt.Sprintf("  Amount to send: %s BTC", *method.BitcoinAmountBTC))
			if method.BitcoinRateUSD != nil {
				lines = append(lines, fmt.Sprintf("  Rate used: $%s per BTC", *method.BitcoinRateUSD))
			}
		}
		if method.PaymentURL != nil {
			lines = append(lines, fmt.Sprintf("  Link: %s", *method.PaymentURL))
		}
		lines = append(lines, fmt.Sprintf("  Note: %s", method.Note))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("Memo to include: %s", memo),
		"For Zelle, add the Order ID in the memo before sending.",
	)

	return strings.Join(lines, "\n")
}
