package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KristianPetrov/1uplabs/internal/config"
)

// BTCRateClient quotes the current USD price of one bitcoin. Quotes are
// per-request and never cached; a stale quote by the time the customer pays
// is an accepted property of manual settlement.
type BTCRateClient interface {
	SpotPriceUSD(ctx context.Context) (decimal.Decimal, error)
}

type coinbaseClientImpl struct {
	httpClient   *http.Client
	spotPriceURL string
}

type coinbaseSpotResponse struct {
	Data struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

func NewCoinbaseClient(btcCfg *config.BTC) BTCRateClient {
	return &coinbaseClientImpl{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		spotPriceURL: btcCfg.SpotPriceURL,
	}
}

func (c *coinbaseClientImpl) SpotPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.spotPriceURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coinbase spot price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("coinbase spot price: status %d", resp.StatusCode)
	}

	var payload coinbaseSpotResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode coinbase response: %w", err)
	}

	rate, err := decimal.NewFromString(payload.Data.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse coinbase amount %q: %w", payload.Data.Amount, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive spot price %s", rate)
	}

	return rate, nil
}
