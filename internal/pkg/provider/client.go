package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultAPIBaseURL = "https://api.paywave.io/v1"

// Transaction is the provider's authoritative record of a captured payment.
type Transaction struct {
	ID        string          `json:"id"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// Refund is the provider's record of an issued refund.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RefundRequest asks the provider to refund a captured transaction.
type RefundRequest struct {
	TransactionID string `json:"transaction"`
	Reason        string `json:"reason"`
}

// Client is the payment provider surface this service depends on. The
// provider is the sole source of truth for whether money moved; verified
// amounts always win over anything stored locally.
type Client interface {
	VerifyTransaction(ctx context.Context, reference string) (*Transaction, error)
	RefundTransaction(ctx context.Context, req RefundRequest) (*Refund, error)
}

// HTTPClient talks to the provider's REST API with a secret key.
type HTTPClient struct {
	APIBaseURL string
	SecretKey  string

	HTTP *http.Client
}

// NewClientFromEnv builds the provider client from environment configuration.
func NewClientFromEnv() *HTTPClient {
	return &HTTPClient{
		APIBaseURL: strings.TrimRight(env.GetEnv("PROVIDER_API_BASE_URL", defaultAPIBaseURL), "/"),
		SecretKey:  strings.TrimSpace(env.GetEnv("PROVIDER_SECRET_KEY", "")),
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// VerifyTransaction fetches the authoritative transaction for a reference.
func (c *HTTPClient) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return nil, errors.New("transaction reference is required")
	}
	if c.SecretKey == "" {
		return nil, errors.New("PROVIDER_SECRET_KEY is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+"/transactions/verify/"+ref, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transaction verify failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out Transaction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("transaction verify returned empty transaction id")
	}
	return &out, nil
}

// RefundTransaction issues a refund for a captured transaction. Each call
// carries a fresh idempotency key; retrying after a transport error may
// create a new key, which is why callers must gate refunds with their own
// at-most-once guard.
func (c *HTTPClient) RefundTransaction(ctx context.Context, r RefundRequest) (*Refund, error) {
	if strings.TrimSpace(r.TransactionID) == "" {
		return nil, errors.New("transaction id is required")
	}
	if c.SecretKey == "" {
		return nil, errors.New("PROVIDER_SECRET_KEY is not configured")
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/refunds", strings.NewReader(string(payload)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("refund request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out Refund
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("refund response returned empty refund id")
	}
	return &out, nil
}
