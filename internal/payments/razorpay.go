package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/reddynasty/booking-widget/pkg/logging"
)

var razorpayTracer = otel.Tracer("bookingwidget.internal.payments.razorpay")

// RazorpayClient is a server-side client for the Razorpay Orders API,
// authenticated with the key id/secret pair.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *logging.Logger
}

// OrderRequest creates one order ahead of a hosted checkout.
type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is a created Razorpay order.
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

func NewRazorpayClient(baseURL, keyID, keySecret string, logger *logging.Logger) *RazorpayClient {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &RazorpayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// CreateOrder creates an order so the checkout receipt can later be
// verified against it.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	ctx, span := razorpayTracer.Start(ctx, "razorpay.create_order")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("razorpay.amount_minor", req.AmountMinor),
		attribute.String("razorpay.currency", req.Currency),
	)

	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("payments: order amount must be positive, got %d", req.AmountMinor)
	}

	payload, err := json.Marshal(map[string]any{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("payments: marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("payments: build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("payments: razorpay order request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("payments: read razorpay response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("razorpay order creation failed", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("payments: razorpay order creation failed with status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("payments: decode razorpay order: %w", err)
	}
	return &order, nil
}

// WithBaseURL overrides the Razorpay API host (tests).
func (c *RazorpayClient) WithBaseURL(baseURL string) *RazorpayClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// VerifySignature checks a checkout receipt signature: HMAC-SHA256 over
// "orderID|paymentID" keyed with the key secret, hex encoded.
func VerifySignature(orderID, paymentID, signature, keySecret string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
