package proxy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/reddynasty/booking-widget/internal/payments"
)

// MockBackend serves a simulated Checkfront account so the widget can be
// demoed without real credentials. Catalog and form mirror a small
// paintball operation.
type MockBackend struct {
	order []string
	items map[string]catalogItem
	now   func() time.Time
}

type imageRef struct {
	URLSmall string `json:"url_small"`
}

type catalogItem struct {
	ItemID   string              `json:"item_id"`
	Name     string              `json:"name"`
	Teaser   string              `json:"teaser"`
	Status   string              `json:"status"`
	Price    string              `json:"price"`
	Stock    int                 `json:"stock"`
	Image    map[string]imageRef `json:"image"`
	Category string              `json:"category"`
}

type guestParam struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

type ratedItem struct {
	catalogItem
	Rated    int                   `json:"rated"`
	Total    string                `json:"total"`
	SubTotal string                `json:"sub_total"`
	Slip     string                `json:"slip"`
	Param    map[string]guestParam `json:"param"`
}

func NewMockBackend() *MockBackend {
	items := map[string]catalogItem{
		"101": {
			ItemID: "101", Name: "Forest Skirmish — Standard",
			Teaser: "<p>Classic woodland paintball. Up to 20 players.</p>",
			Status: "A", Price: "35.00", Stock: 20,
			Image:    map[string]imageRef{"1": {URLSmall: "https://images.unsplash.com/photo-1522071820081-009f0129c71c?w=200&h=200&fit=crop"}},
			Category: "Standard Sessions",
		},
		"102": {
			ItemID: "102", Name: "Urban Combat — Pro",
			Teaser: "<p>High-intensity urban warfare with bunkers.</p>",
			Status: "A", Price: "55.00", Stock: 15,
			Image:    map[string]imageRef{"1": {URLSmall: "https://images.unsplash.com/photo-1511795409834-ef04bbd61622?w=200&h=200&fit=crop"}},
			Category: "Pro Sessions",
		},
		"103": {
			ItemID: "103", Name: "Birthday Battle Package",
			Teaser: "<p>Full session + cake setup + private arena for 2 hours.</p>",
			Status: "A", Price: "280.00", Stock: 5,
			Image:    map[string]imageRef{"1": {URLSmall: "https://images.unsplash.com/photo-1530103862676-de8c9debad1d?w=200&h=200&fit=crop"}},
			Category: "Packages",
		},
	}
	return &MockBackend{
		order: []string{"101", "102", "103"},
		items: items,
		now:   time.Now,
	}
}

// Items returns the catalog, optionally restricted to a single item id.
func (m *MockBackend) Items(itemID string) map[string]catalogItem {
	if itemID != "" {
		if item, ok := m.items[itemID]; ok {
			return map[string]catalogItem{itemID: item}
		}
		return map[string]catalogItem{}
	}
	out := make(map[string]catalogItem, len(m.items))
	for id, item := range m.items {
		out[id] = item
	}
	return out
}

// RatedItem prices an item for a guest count and attaches a slip. The
// slip encodes item id and guest count purely as a mock-server
// convenience; clients must treat it as opaque.
func (m *MockBackend) RatedItem(itemID string, guests int) (*ratedItem, bool) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, false
	}
	if guests < 1 {
		guests = 1
	}
	unitMinor, err := payments.MinorUnits(item.Price)
	if err != nil {
		return nil, false
	}
	total := payments.FormatMinor(unitMinor * int64(guests))
	return &ratedItem{
		catalogItem: item,
		Rated:       1,
		Total:       total,
		SubTotal:    total,
		Slip:        fmt.Sprintf("%s.%dX8-guests.%d", itemID, m.now().UnixMilli(), guests),
		Param:       map[string]guestParam{"guests": {Value: guests, Label: "Guests"}},
	}, true
}

// BookingForm returns the customer detail schema. Kept as a raw literal
// because booking_form_ui key order is the field order the widget
// renders.
func (m *MockBackend) BookingForm() json.RawMessage {
	return json.RawMessage(mockBookingFormJSON)
}

const mockBookingFormJSON = `{"booking_form_ui":{
  "customer_name":  {"value":"","define":{"required":1,"type":"text","lbl":"Full Name","layout":{"customer":{"form":1,"required":1}}}},
  "customer_email": {"value":"","define":{"required":1,"type":"email","lbl":"Email Address","layout":{"customer":{"form":1,"required":1}}}},
  "customer_phone": {"value":"","define":{"required":1,"type":"tel","lbl":"Phone Number","layout":{"customer":{"form":1,"required":1}}}},
  "customer_note":  {"value":"","define":{"required":0,"type":"text","lbl":"Special Requests (optional)","layout":{"customer":{"form":1}}}}
}}`
