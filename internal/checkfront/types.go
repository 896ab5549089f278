package checkfront

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Item is one bookable item from the Checkfront catalog. Immutable once
// fetched.
type Item struct {
	ID       string
	Name     string
	Teaser   string
	Status   string
	Price    string
	Stock    int
	ImageURL string
	Category string
}

// Active reports whether the item is currently offerable.
func (i Item) Active() bool {
	return i.Status == "A"
}

// RateQuote is the result of rating an item for a date and guest count.
// The Slip is an opaque continuation token; the quote is only valid for
// the exact (item, date, guests) tuple it was computed for.
type RateQuote struct {
	ItemID string
	Date   string // ISO, YYYY-MM-DD
	Guests int
	Total  string
	Slip   string
}

// Matches reports whether the quote was computed for the given tuple.
func (q *RateQuote) Matches(itemID, date string, guests int) bool {
	return q != nil && q.ItemID == itemID && q.Date == date && q.Guests == guests
}

// Session is a server-side cart created from a rate quote's slip. Its
// total supersedes the quote's total once created.
type Session struct {
	ID    string
	Total string
}

// FormField describes one customer detail field required by the account.
type FormField struct {
	Key      string
	Label    string
	Type     string // text, email, tel, select
	Required bool
	Options  map[string]string // select fields only
}

// Booking statuses observed client-side.
const (
	StatusReserved = "RESERVED"
	StatusPaid     = "PAID"
)

// Booking is a created reservation awaiting payment.
type Booking struct {
	ID     string
	Status string
	Total  string
}

// ConfirmRequest carries the payment receipt back to the proxy so it can
// verify the signature and record the payment against the booking.
type ConfirmRequest struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
	BookingID string `json:"booking_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// flexString decodes JSON values that Checkfront serves either as strings
// or as bare numbers (prices, ids).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexBool decodes required flags served as booleans or as 0/1.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
	case "false", "null", `""`, "0", `"0"`:
		*f = false
	default:
		if data[0] == '"' {
			var s string
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			n, err := strconv.Atoi(s)
			*f = err == nil && n != 0
			return nil
		}
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = n != 0
	}
	return nil
}

type itemJSON struct {
	ItemID   flexString `json:"item_id"`
	Name     string     `json:"name"`
	Teaser   string     `json:"teaser"`
	Status   string     `json:"status"`
	Price    flexString `json:"price"`
	Total    flexString `json:"total"`
	SubTotal flexString `json:"sub_total"`
	Slip     string     `json:"slip"`
	Stock    int        `json:"stock"`
	Category string     `json:"category"`
	Image    map[string]struct {
		URLSmall string `json:"url_small"`
	} `json:"image"`
}

func (j itemJSON) item() Item {
	it := Item{
		ID:       string(j.ItemID),
		Name:     j.Name,
		Teaser:   j.Teaser,
		Status:   j.Status,
		Price:    string(j.Price),
		Stock:    j.Stock,
		Category: j.Category,
	}
	if img, ok := j.Image["1"]; ok {
		it.ImageURL = img.URLSmall
	}
	return it
}

type itemsResponse struct {
	Item map[string]itemJSON `json:"item"`
}

type sessionResponse struct {
	Booking struct {
		Session struct {
			ID    flexString `json:"id"`
			Total flexString `json:"total"`
		} `json:"session"`
	} `json:"booking"`
}

type bookingResponse struct {
	Booking struct {
		BookingID flexString `json:"booking_id"`
		Status    string     `json:"status"`
		Total     flexString `json:"total"`
	} `json:"booking"`
}
