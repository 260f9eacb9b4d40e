package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	sandboxBaseURL    = "https://sandbox.cashfree.com/pg"
	productionBaseURL = "https://api.cashfree.com/pg"
	apiVersion        = "2023-08-01"
)

// Order statuses reported by the gateway.
const (
	RemoteStatusActive     = "ACTIVE"
	RemoteStatusPaid       = "PAID"
	RemoteStatusExpired    = "EXPIRED"
	RemoteStatusTerminated = "TERMINATED"
)

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cashfree: %d %s", e.StatusCode, e.Message)
}

// OrderView is the normalized authoritative view of a gateway order.
type OrderView struct {
	OrderID          string
	Status           string
	Amount           int64 // smallest currency unit
	Currency         string
	PaymentSessionID string
}

// CheckoutOutcome distinguishes how a hosted checkout ended so callers can
// decide whether to proceed to Confirm.
type CheckoutOutcome string

const (
	OutcomeSuccess   CheckoutOutcome = "success"
	OutcomeCancelled CheckoutOutcome = "cancelled"
	OutcomeOpen      CheckoutOutcome = "open"
	OutcomeFailed    CheckoutOutcome = "failed"
)

// OutcomeForStatus maps a gateway order status to a checkout outcome.
func OutcomeForStatus(status string) CheckoutOutcome {
	switch status {
	case RemoteStatusPaid:
		return OutcomeSuccess
	case RemoteStatusTerminated:
		return OutcomeCancelled
	case RemoteStatusActive:
		return OutcomeOpen
	default:
		return OutcomeFailed
	}
}

// Client talks to the Cashfree PG REST API.
type Client struct {
	appID      string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a gateway client for the given mode.
func NewClient(appID, secretKey string, mode Mode) (*Client, error) {
	if appID == "" || secretKey == "" {
		return nil, fmt.Errorf("cashfree: missing credentials")
	}

	var baseURL string
	switch mode {
	case ModeSandbox:
		baseURL = sandboxBaseURL
	case ModeProduction:
		baseURL = productionBaseURL
	default:
		return nil, fmt.Errorf("cashfree: unknown mode %q", mode)
	}

	return &Client{
		appID:     appID,
		secretKey: secretKey,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// ---- Cashfree API request/response structs ----

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type cashfreeOrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
}

type cashfreeOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     float64           `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails cashfreeCustomer  `json:"customer_details"`
	OrderMeta       cashfreeOrderMeta `json:"order_meta"`
}

type cashfreeOrderResponse struct {
	OrderID          string  `json:"order_id"`
	OrderAmount      float64 `json:"order_amount"`
	OrderCurrency    string  `json:"order_currency"`
	OrderStatus      string  `json:"order_status"`
	PaymentSessionID string  `json:"payment_session_id"`
	Message          string  `json:"message"`
}

// CreateOrderRequest carries what the gateway needs to open an order.
type CreateOrderRequest struct {
	OrderID   string
	UserID    string
	Amount    int64 // smallest currency unit
	Currency  string
	ReturnURL string
}

// CreateOrder opens an order with the gateway and returns its view,
// including the payment session id for the hosted checkout.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	body := cashfreeOrderRequest{
		OrderID:       req.OrderID,
		OrderAmount:   float64(req.Amount) / 100,
		OrderCurrency: req.Currency,
		CustomerDetails: cashfreeCustomer{
			CustomerID: req.UserID,
		},
		OrderMeta: cashfreeOrderMeta{
			ReturnURL: req.ReturnURL,
		},
	}
	return c.doOrderRequest(ctx, http.MethodPost, c.baseURL+"/orders", &body)
}

// GetOrder fetches the authoritative order status from the gateway.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	return c.doOrderRequest(ctx, http.MethodGet, c.baseURL+"/orders/"+orderID, nil)
}

func (c *Client) doOrderRequest(ctx context.Context, method, url string, body *cashfreeOrderRequest) (*OrderView, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cashfree: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("cashfree: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cashfree: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cashfree: read response: %w", err)
	}

	var parsed cashfreeOrderResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("cashfree: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = string(respBody)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &OrderView{
		OrderID:          parsed.OrderID,
		Status:           parsed.OrderStatus,
		Amount:           int64(parsed.OrderAmount*100 + 0.5),
		Currency:         parsed.OrderCurrency,
		PaymentSessionID: parsed.PaymentSessionID,
	}, nil
}

// VerifyWebhookSignature checks the gateway's webhook signature:
// base64(HMAC-SHA256(timestamp + body, secret)). Constant-time compare.
func VerifyWebhookSignature(timestamp string, body []byte, signature, secret string) bool {
	if timestamp == "" || signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
