package vtuapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// ErrUnexpectedResponse marks a provider reply that was not JSON at all
// (HTML error pages, gateway timeouts). It is a distinct failure class and
// is never parsed further.
var ErrUnexpectedResponse = errors.New("unexpected response from provider")

// GatewayError is a failure the provider reported itself. Its message is
// safe to surface to the user verbatim.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// Gateway is the VTU provider boundary consumed by the purchase orchestrator
type Gateway interface {
	Verify(ctx context.Context, serviceID, customerID, variationID string) (VerifyData, error)
	Purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseData, error)
	Status(ctx context.Context, reference string) (*StatusData, error)
}

// PurchaseRequest is the normalized payload sent to the provider
type PurchaseRequest struct {
	ServiceID   string  `json:"service_id"`
	CustomerID  string  `json:"customer_id"`
	VariationID string  `json:"variation_id,omitempty"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
}

// PurchaseData is the delivery payload of a successful purchase
type PurchaseData struct {
	Token       string `json:"token,omitempty"`
	Units       string `json:"units,omitempty"`
	ProviderRef string `json:"provider_ref,omitempty"`
}

// VerifyData is the raw verify payload. Providers nest the interesting
// fields inconsistently, so it stays a map and goes through CustomerName.
type VerifyData map[string]interface{}

// StatusData reports the provider-side state of a purchase
type StatusData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// envelope is the canonical provider response shape
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is an HTTP VTU provider client. With MockAPI set it serves
// plausible canned responses instead of calling out, mirroring how the
// rest of the codebase runs without provider credentials.
type Client struct {
	BaseURL string
	APIKey  string
	MockAPI bool
	client  *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a new VTU provider client
func NewClient(baseURL, apiKey string, mockAPI bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		MockAPI: mockAPI,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Verify asks the provider who owns a customer identifier. It is advisory
// and side-effect free; calling it twice with the same input yields the
// same result.
func (c *Client) Verify(ctx context.Context, serviceID, customerID, variationID string) (VerifyData, error) {
	if c.MockAPI {
		return c.mockVerify(serviceID, customerID)
	}

	body := map[string]string{
		"service_id":  serviceID,
		"customer_id": customerID,
	}
	if variationID != "" {
		body["variation_id"] = variationID
	}

	var data VerifyData
	if err := c.post(ctx, "/api/verify", body, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Purchase executes a purchase against the provider
func (c *Client) Purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseData, error) {
	if c.MockAPI {
		return c.mockPurchase(req)
	}

	var data PurchaseData
	if err := c.post(ctx, "/api/purchase", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Status looks up the provider-side state of a purchase by reference
func (c *Client) Status(ctx context.Context, reference string) (*StatusData, error) {
	if c.MockAPI {
		return &StatusData{Reference: reference, Status: "delivered"}, nil
	}

	var data StatusData
	if err := c.post(ctx, "/api/status", map[string]string{"reference": reference}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// post sends a JSON request and decodes the canonical envelope into out
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return ErrUnexpectedResponse
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return ErrUnexpectedResponse
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("provider request failed with status %d", resp.StatusCode)
		}
		return &GatewayError{Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return nil
}

func (c *Client) mockVerify(serviceID, customerID string) (VerifyData, error) {
	if customerID == "" {
		return nil, &GatewayError{Message: "customer not found"}
	}
	return VerifyData{
		"data": map[string]interface{}{
			"customer_name": "John Doe",
			"service_id":    serviceID,
			"customer_id":   customerID,
		},
	}, nil
}

func (c *Client) mockPurchase(req *PurchaseRequest) (*PurchaseData, error) {
	data := &PurchaseData{
		ProviderRef: fmt.Sprintf("PRV%012d", rand.Int63n(1000000000000)),
	}
	if strings.Contains(req.ServiceID, "electric") || strings.Contains(req.ServiceID, "ikeja") || strings.Contains(req.ServiceID, "eko") {
		data.Token = fmt.Sprintf("%04d-%04d-%04d-%04d", rand.Intn(10000), rand.Intn(10000), rand.Intn(10000), rand.Intn(10000))
		data.Units = fmt.Sprintf("%.1f kWh", req.Amount/45.0)
	}
	return data, nil
}

// CustomerName extracts the customer display name from a verify payload.
// Known shapes: {data: {customer_name}} and {customer_name}; anything else
// falls back to a generic label.
func CustomerName(data VerifyData) string {
	if inner, ok := data["data"].(map[string]interface{}); ok {
		if name, ok := inner["customer_name"].(string); ok && name != "" {
			return name
		}
	}
	if name, ok := data["customer_name"].(string); ok && name != "" {
		return name
	}
	return "Customer"
}
