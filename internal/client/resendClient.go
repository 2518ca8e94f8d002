package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KristianPetrov/1uplabs/internal/config"
)

// EmailClient delivers a single transactional email. Enabled reports whether
// a provider is actually configured; callers skip sends when it is not.
type EmailClient interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, html, text string) error
}

type resendClientImpl struct {
	httpClient *http.Client
	baseAPIURL string
	apiKey     string
	from       string
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func NewResendClient(resendCfg *config.Resend) EmailClient {
	return &resendClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseAPIURL: resendCfg.BaseAPIURL,
		apiKey:     resendCfg.APIKey,
		from:       resendCfg.From,
	}
}

func (c *resendClientImpl) Enabled() bool {
	return c.apiKey != ""
}

func (c *resendClientImpl) Send(ctx context.Context, to, subject, html, text string) error {
	body, err := json.Marshal(resendSendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseAPIURL+"/emails", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
