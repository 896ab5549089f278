// Package proxy implements the merchant-side server the widget talks to:
// a Checkfront passthrough (mock catalog or real upstream), payment order
// creation and payment confirmation.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reddynasty/booking-widget/internal/config"
	"github.com/reddynasty/booking-widget/internal/observability/metrics"
	"github.com/reddynasty/booking-widget/internal/payments"
	"github.com/reddynasty/booking-widget/pkg/logging"
)

var (
	itemRatePath       = regexp.MustCompile(`^/api/3\.0/item/(\d+)$`)
	bookingPaymentPath = regexp.MustCompile(`^/api/3\.0/booking/([A-Z0-9-]+)$`)
	guestsInSlip       = regexp.MustCompile(`guests\.(\d+)`)
)

// Handler serves the proxy endpoints.
type Handler struct {
	cfg      *config.Config
	store    SessionStore
	backend  *MockBackend
	upstream *Upstream // nil in mock mode
	razorpay *payments.RazorpayClient
	metrics  *metrics.ProxyMetrics
	logger   *logging.Logger
}

func NewHandler(cfg *config.Config, store SessionStore, backend *MockBackend, upstream *Upstream, razorpay *payments.RazorpayClient, m *metrics.ProxyMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		cfg:      cfg,
		store:    store,
		backend:  backend,
		upstream: upstream,
		razorpay: razorpay,
		metrics:  m,
		logger:   logger,
	}
}

// CFGet handles GET passthrough requests: catalog, rated items and the
// booking form.
func (h *Handler) CFGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query()
	cfPath := query.Get("cf_path")
	if cfPath == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "cf_path required"})
		return
	}
	query.Del("cf_path")
	op := operationFor(cfPath)
	defer func() { h.metrics.ObserveLatency(op, time.Since(start).Seconds()) }()

	if h.upstream != nil {
		status, body, err := h.upstream.Get(r.Context(), cfPath, query)
		h.relay(w, op, status, body, err)
		return
	}

	switch {
	case cfPath == "/api/3.0/item":
		h.observe(op, http.StatusOK)
		respondJSON(w, http.StatusOK, map[string]any{"item": h.backend.Items(query.Get("item_id"))})
	case itemRatePath.MatchString(cfPath):
		itemID := itemRatePath.FindStringSubmatch(cfPath)[1]
		guests, _ := strconv.Atoi(query.Get("param[guests]"))
		if guests < 1 {
			guests = 1
		}
		rated, ok := h.backend.RatedItem(itemID, guests)
		if !ok {
			h.observe(op, http.StatusNotFound)
			respondJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		h.observe(op, http.StatusOK)
		respondJSON(w, http.StatusOK, map[string]any{"item": map[string]any{itemID: rated}})
	case cfPath == "/api/3.0/booking/form":
		h.observe(op, http.StatusOK)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(h.backend.BookingForm())
	default:
		h.observe(op, http.StatusNotFound)
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown: " + cfPath})
	}
}

// CFPost handles POST passthrough requests: session creation, booking
// creation and booking payment recording.
func (h *Handler) CFPost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	cfPath, _ := body["cf_path"].(string)
	if cfPath == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "cf_path required"})
		return
	}
	delete(body, "cf_path")
	op := operationFor(cfPath)
	defer func() { h.metrics.ObserveLatency(op, time.Since(start).Seconds()) }()

	if h.upstream != nil {
		fields := make(map[string]string, len(body))
		for key, value := range body {
			fields[key] = fmt.Sprint(value)
		}
		status, respBody, err := h.upstream.Post(r.Context(), cfPath, fields)
		h.relay(w, op, status, respBody, err)
		return
	}

	switch {
	case cfPath == "/api/3.0/booking/session":
		h.createSession(w, r.Context(), op, body)
	case cfPath == "/api/3.0/booking/create":
		h.createBooking(w, r.Context(), op, body)
	case bookingPaymentPath.MatchString(cfPath):
		bookingID := bookingPaymentPath.FindStringSubmatch(cfPath)[1]
		h.markPaid(r.Context(), bookingID)
		h.observe(op, http.StatusOK)
		respondJSON(w, http.StatusOK, map[string]any{
			"booking": map[string]any{"booking_id": bookingID, "status": "PAID"},
		})
	default:
		h.observe(op, http.StatusNotFound)
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Unknown: " + cfPath})
	}
}

func (h *Handler) createSession(w http.ResponseWriter, ctx context.Context, op string, body map[string]any) {
	slip, _ := body["slip"].(string)
	if slip == "" {
		slip, _ = body["slip[]"].(string)
	}

	// The mock backend encodes item id and guest count in the slip as a
	// server-side convenience. Clients never parse it.
	itemID := "101"
	guests := 1
	if slip != "" {
		if i := strings.IndexByte(slip, '.'); i > 0 {
			itemID = slip[:i]
		}
		if m := guestsInSlip.FindStringSubmatch(slip); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				guests = n
			}
		}
	}

	total := "35.00"
	summary := "Session"
	if rated, ok := h.backend.RatedItem(itemID, guests); ok {
		total = rated.Total
		summary = rated.Name
	}

	sessionID := "sess_" + uuid.NewString()
	sess := Session{Slip: slip, ItemID: itemID, Guests: guests, Total: total, Summary: summary}
	if err := h.store.Put(ctx, sessionID, sess); err != nil {
		h.logger.Error("failed to store session", "session_id", sessionID, "error", err)
		h.observe(op, http.StatusInternalServerError)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store session"})
		return
	}

	h.observe(op, http.StatusOK)
	respondJSON(w, http.StatusOK, map[string]any{
		"booking": map[string]any{
			"session": map[string]any{
				"id":        sessionID,
				"total":     total,
				"sub_total": total,
				"due":       total,
				"summary":   summary,
			},
		},
	})
}

func (h *Handler) createBooking(w http.ResponseWriter, ctx context.Context, op string, body map[string]any) {
	sessionID, _ := body["session_id"].(string)
	sess, ok, err := h.store.Get(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
	}
	if !ok || sess == nil {
		sess = &Session{Total: "35.00"}
	}

	bookingID := newBookingID(time.Now())
	record := *sess
	record.Status = "RESERVED"
	if err := h.store.Put(ctx, bookingID, record); err != nil {
		h.logger.Error("failed to store booking", "booking_id", bookingID, "error", err)
		h.observe(op, http.StatusInternalServerError)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store booking"})
		return
	}

	name, _ := body["form[customer_name]"].(string)
	email, _ := body["form[customer_email]"].(string)
	h.observe(op, http.StatusOK)
	respondJSON(w, http.StatusOK, map[string]any{
		"booking": map[string]any{
			"booking_id": bookingID,
			"status":     "RESERVED",
			"total":      record.Total,
			"customer":   map[string]string{"name": name, "email": email},
		},
	})
}

// PaymentOrder creates a payment-gateway order for a reserved booking so
// the checkout receipt can be signature-verified later.
func (h *Handler) PaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID string `json:"booking_id"`
		Amount    string `json:"amount"`
		Currency  string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingID == "" || req.Amount == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "booking_id and amount required"})
		return
	}

	amountMinor, err := payments.MinorUnits(req.Amount)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "SGD"
	}

	orderID := "order_mock_" + uuid.NewString()
	if h.razorpay != nil && h.cfg.RazorpayKeySecret != "" {
		order, err := h.razorpay.CreateOrder(r.Context(), payments.OrderRequest{
			AmountMinor: amountMinor,
			Currency:    currency,
			Receipt:     req.BookingID,
			Notes:       map[string]string{"checkfront_booking_id": req.BookingID},
		})
		if err != nil {
			h.logger.Error("order creation failed", "booking_id", req.BookingID, "error", err)
			respondJSON(w, http.StatusBadGateway, map[string]string{"error": "order creation failed"})
			return
		}
		orderID = order.ID
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"order_id": orderID,
		"amount":   amountMinor,
		"currency": currency,
	})
}

// PaymentConfirm verifies the checkout receipt and records the payment
// against the booking.
func (h *Handler) PaymentConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID string `json:"razorpay_payment_id"`
		OrderID   string `json:"razorpay_order_id"`
		Signature string `json:"razorpay_signature"`
		BookingID string `json:"booking_id"`
		Amount    string `json:"amount"`
		Currency  string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingID == "" {
		h.metrics.ObserveConfirm("bad_request")
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "booking_id required"})
		return
	}

	if h.cfg.RazorpayKeySecret != "" {
		if !payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature, h.cfg.RazorpayKeySecret) {
			h.logger.Warn("payment signature rejected", "booking_id", req.BookingID, "payment_id", req.PaymentID)
			h.metrics.ObserveConfirm("rejected")
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
			return
		}
	}

	if h.upstream != nil {
		status, _, err := h.upstream.Post(r.Context(), "/api/3.0/booking/"+req.BookingID+"/payment", map[string]string{
			"amount":     req.Amount,
			"payment_id": req.PaymentID,
		})
		if err != nil || status >= 400 {
			// The payment is captured. Surface to the operator, report
			// success to the widget.
			h.logger.Error("failed to record payment upstream", "booking_id", req.BookingID, "status", status, "error", err)
			h.metrics.ObserveConfirm("record_failed")
		} else {
			h.metrics.ObserveConfirm("ok")
		}
	} else {
		h.markPaid(r.Context(), req.BookingID)
		h.metrics.ObserveConfirm("ok")
	}

	h.logger.Info("payment recorded", "payment_id", req.PaymentID, "booking_id", req.BookingID)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"booking_id": req.BookingID,
		"payment_id": req.PaymentID,
	})
}

// Config exposes the publishable key and mock-mode flag to the widget.
func (h *Handler) Config(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"razorpay_key_id": h.cfg.RazorpayKeyID,
		"mock_mode":       h.cfg.MockMode(),
	})
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) markPaid(ctx context.Context, bookingID string) {
	sess, ok, err := h.store.Get(ctx, bookingID)
	if err != nil || !ok {
		return
	}
	sess.Status = "PAID"
	if err := h.store.Put(ctx, bookingID, *sess); err != nil {
		h.logger.Error("failed to mark booking paid", "booking_id", bookingID, "error", err)
	}
}

func (h *Handler) relay(w http.ResponseWriter, op string, status int, body []byte, err error) {
	if err != nil {
		h.observe(op, http.StatusBadGateway)
		respondJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}
	h.observe(op, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) observe(op string, status int) {
	h.metrics.ObservePassthrough(op, strconv.Itoa(status))
}

// operationFor collapses cf_path values into low-cardinality metric
// labels.
func operationFor(cfPath string) string {
	switch {
	case cfPath == "/api/3.0/item":
		return "item_list"
	case itemRatePath.MatchString(cfPath):
		return "item_rate"
	case cfPath == "/api/3.0/booking/form":
		return "booking_form"
	case cfPath == "/api/3.0/booking/session":
		return "booking_session"
	case cfPath == "/api/3.0/booking/create":
		return "booking_create"
	case bookingPaymentPath.MatchString(cfPath):
		return "booking_payment"
	default:
		return "unknown"
	}
}

// newBookingID mirrors the reference backend's short human-friendly ids.
func newBookingID(now time.Time) string {
	encoded := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(encoded) > 6 {
		encoded = encoded[len(encoded)-6:]
	}
	return "RD-" + encoded
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
