package smsrental

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

	"github.com/google/uuid"
)

// ErrUnexpectedResponse marks a non-JSON provider reply
var ErrUnexpectedResponse = errors.New("unexpected response from sms provider")

// GatewayError is a failure the SMS provider reported itself
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// Gateway is the SMS number provider boundary
type Gateway interface {
	// CreateOrder rents a number; the returned order is polled for a code.
	CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error)
	// GetCode returns the received code, or "" while none has arrived.
	GetCode(ctx context.Context, orderID string) (string, error)
	// CancelOrder releases the number provider-side. Best effort.
	CancelOrder(ctx context.Context, orderID string) error
}

// OrderRequest describes the number to rent
type OrderRequest struct {
	Country  string `json:"country"`
	Service  string `json:"service"`
	Mode     string `json:"mode,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Order is a provider-issued rental
type Order struct {
	OrderID     string `json:"order_id"`
	PhoneNumber string `json:"phone_number"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is an HTTP SMS rental provider client with a mock toggle
type Client struct {
	BaseURL string
	APIKey  string
	MockAPI bool
	client  *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a new SMS rental provider client
func NewClient(baseURL, apiKey string, mockAPI bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		MockAPI: mockAPI,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateOrder rents a virtual number from the provider
func (c *Client) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	if c.MockAPI {
		return &Order{
			OrderID:     uuid.NewString(),
			PhoneNumber: fmt.Sprintf("23481%08d", rand.Intn(100000000)),
		}, nil
	}

	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetCode polls the provider for the verification code on an order
func (c *Client) GetCode(ctx context.Context, orderID string) (string, error) {
	if c.MockAPI {
		// The mock never delivers; the polling budget decides the outcome.
		return "", nil
	}

	var data struct {
		Code string `json:"code"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+orderID+"/code", nil, &data); err != nil {
		return "", err
	}
	return data.Code, nil
}

// CancelOrder releases the rented number
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if c.MockAPI {
		return nil
	}
	return c.do(ctx, http.MethodDelete, "/api/orders/"+orderID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
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
