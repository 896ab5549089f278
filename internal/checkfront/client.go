// Package checkfront is a typed client for the merchant proxy's Checkfront
// passthrough API. All catalog, rating, session, booking and confirmation
// traffic goes through the proxy so the Checkfront credentials stay
// server-side.
package checkfront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/reddynasty/booking-widget/pkg/logging"
)

const defaultTimeout = 10 * time.Second

const (
	pathItem        = "/api/3.0/item"
	pathBookingSess = "/api/3.0/booking/session"
	pathBookingForm = "/api/3.0/booking/form"
	pathBookingNew  = "/api/3.0/booking/create"
)

// Client talks to the merchant proxy. It performs no retries; failures are
// terminal for the caller's current step.
type Client struct {
	proxyURL   string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a client for the proxy at proxyURL.
func New(proxyURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		proxyURL: strings.TrimRight(proxyURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// WithHTTPClient overrides the transport (tests, custom timeouts).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// ListItems fetches the bookable catalog, optionally restricted to one
// item, keeping only active items in stable id order.
func (c *Client) ListItems(ctx context.Context, itemID string) ([]Item, error) {
	params := url.Values{}
	if itemID != "" {
		params.Set("item_id", itemID)
	}
	var out itemsResponse
	if err := c.get(ctx, pathItem, params, &out); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(out.Item))
	for _, j := range out.Item {
		it := j.item()
		if it.Active() {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(a, b int) bool {
		na, errA := strconv.Atoi(items[a].ID)
		nb, errB := strconv.Atoi(items[b].ID)
		if errA == nil && errB == nil {
			return na < nb
		}
		return items[a].ID < items[b].ID
	})
	return items, nil
}

// RateItem fetches live pricing and the availability slip for the given
// tuple. Returns *AvailabilityError when no slip is offered.
func (c *Client) RateItem(ctx context.Context, itemID, dateISO string, guests int) (*RateQuote, error) {
	dateCompact := strings.ReplaceAll(dateISO, "-", "")
	params := url.Values{}
	params.Set("start_date", dateCompact)
	params.Set("end_date", dateCompact)
	params.Set("param[guests]", strconv.Itoa(guests))

	var out itemsResponse
	if err := c.get(ctx, pathItem+"/"+itemID, params, &out); err != nil {
		return nil, err
	}

	rated, ok := out.Item[itemID]
	if !ok || rated.Slip == "" {
		return nil, &AvailabilityError{ItemID: itemID, Date: dateISO, Guests: guests}
	}

	total := string(rated.Total)
	if total == "" {
		total = string(rated.Price)
	}
	return &RateQuote{
		ItemID: itemID,
		Date:   dateISO,
		Guests: guests,
		Total:  total,
		Slip:   rated.Slip,
	}, nil
}

// CreateSession creates a booking session (server-side cart) from a slip.
func (c *Client) CreateSession(ctx context.Context, slip string) (*Session, error) {
	var out sessionResponse
	if err := c.post(ctx, map[string]any{"cf_path": pathBookingSess, "slip": slip}, pathBookingSess, &out); err != nil {
		return nil, err
	}
	if out.Booking.Session.ID == "" {
		return nil, fmt.Errorf("checkfront: session creation returned no session id")
	}
	return &Session{
		ID:    string(out.Booking.Session.ID),
		Total: string(out.Booking.Session.Total),
	}, nil
}

// GetBookingForm fetches the customer detail fields configured for the
// account, in the order the backend defines them.
func (c *Client) GetBookingForm(ctx context.Context) ([]FormField, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.passthroughURL(pathBookingForm, nil), nil)
	if err != nil {
		return nil, fmt.Errorf("checkfront: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Path: pathBookingForm, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Path: pathBookingForm}
	}
	return parseBookingForm(resp.Body)
}

// CreateBooking creates a RESERVED booking from a session and the
// collected form values. Empty values are omitted.
func (c *Client) CreateBooking(ctx context.Context, sessionID string, values map[string]string) (*Booking, error) {
	body := map[string]any{
		"cf_path":    pathBookingNew,
		"session_id": sessionID,
	}
	for key, value := range values {
		if value != "" {
			body["form["+key+"]"] = value
		}
	}

	var out bookingResponse
	if err := c.post(ctx, body, pathBookingNew, &out); err != nil {
		return nil, err
	}
	if out.Booking.BookingID == "" {
		return nil, ErrNoBookingID
	}
	return &Booking{
		ID:     string(out.Booking.BookingID),
		Status: out.Booking.Status,
		Total:  string(out.Booking.Total),
	}, nil
}

// ConfirmPayment reports a captured payment to the proxy for signature
// verification and recording against the booking.
func (c *Client) ConfirmPayment(ctx context.Context, confirm ConfirmRequest) error {
	payload, err := json.Marshal(confirm)
	if err != nil {
		return fmt.Errorf("checkfront: marshal confirm request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL+"/payment-confirm", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("checkfront: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Path: "/payment-confirm", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Path: "/payment-confirm"}
	}
	return nil
}

func (c *Client) passthroughURL(cfPath string, params url.Values) string {
	q := url.Values{}
	q.Set("cf_path", cfPath)
	for key, vals := range params {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	return c.proxyURL + "/cf?" + q.Encode()
}

func (c *Client) get(ctx context.Context, cfPath string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.passthroughURL(cfPath, params), nil)
	if err != nil {
		return fmt.Errorf("checkfront: build request: %w", err)
	}
	return c.send(req, cfPath, out)
}

func (c *Client) post(ctx context.Context, body map[string]any, cfPath string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("checkfront: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL+"/cf", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("checkfront: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, cfPath, out)
}

func (c *Client) send(req *http.Request, cfPath string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Path: cfPath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("checkfront request failed", "path", cfPath, "status", resp.StatusCode)
		return &RemoteError{StatusCode: resp.StatusCode, Path: cfPath}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("checkfront: decode response for %s: %w", cfPath, err)
	}
	return nil
}
