// Package wizard drives the booking flow from "no selection" to a
// confirmed booking: item, date, guests, customer details, hosted
// checkout, payment confirmation.
//
// One Wizard instance owns one browsing attempt. Events are serialized by
// a mutex, so the aggregate (selection, quote, session, form values) is
// only ever mutated by one event at a time. The single asynchronous path
// is the best-effort quote refresh on guest-count changes, which follows
// last-issued-wins: every resolution gets a sequence number and a
// completion is discarded unless it is still the newest for the exact
// current (item, date, guests) tuple.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/reddynasty/booking-widget/internal/checkfront"
	"github.com/reddynasty/booking-widget/internal/payments"
	"github.com/reddynasty/booking-widget/pkg/logging"
)

// BookingAPI is the remote layer the wizard drives. *checkfront.Client
// satisfies it.
type BookingAPI interface {
	ListItems(ctx context.Context, itemID string) ([]checkfront.Item, error)
	RateItem(ctx context.Context, itemID, dateISO string, guests int) (*checkfront.RateQuote, error)
	CreateSession(ctx context.Context, slip string) (*checkfront.Session, error)
	GetBookingForm(ctx context.Context) ([]checkfront.FormField, error)
	CreateBooking(ctx context.Context, sessionID string, values map[string]string) (*checkfront.Booking, error)
	ConfirmPayment(ctx context.Context, confirm checkfront.ConfirmRequest) error
}

// Selection is the mutable aggregate being built up through the steps.
// Guests never drops below 1.
type Selection struct {
	Item   *checkfront.Item
	Date   string // ISO, date-only
	Guests int
}

// Snapshot is a copy of the observable wizard state handed to the
// presentation layer.
type Snapshot struct {
	Step           Step
	Items          []checkfront.Item
	SelectedItem   *checkfront.Item
	Date           string
	Guests         int
	Total          string
	Fields         []checkfront.FormField
	Values         map[string]string
	BookingID      string
	ErrorMessage   string
	LoadingMessage string
}

// Config wires one wizard instance.
type Config struct {
	API          BookingAPI
	Gateway      payments.Gateway
	Currency     string // defaults to SGD
	MerchantName string
	ThemeColor   string
	ItemID       string // restrict the widget to a single item
	Logger       *logging.Logger
	// Listener receives a state snapshot after every observable change.
	Listener func(Snapshot)
	// Now is the clock used for date validation. Defaults to time.Now.
	Now func() time.Time
}

// Wizard is the booking flow state machine.
type Wizard struct {
	mu sync.Mutex

	api          BookingAPI
	gateway      payments.Gateway
	currency     string
	merchantName string
	themeColor   string
	forcedItemID string
	logger       *logging.Logger
	listener     func(Snapshot)
	now          func() time.Time

	step       Step
	items      []checkfront.Item
	selection  Selection
	quote      *checkfront.RateQuote
	resolveSeq uint64
	sessionID  string
	total      string
	fields     []checkfront.FormField
	values     map[string]string
	bookingID  string
	errMsg     string
	loadingMsg string
}

// New creates a wizard. API and Gateway are required.
func New(cfg Config) *Wizard {
	if cfg.API == nil {
		panic("wizard: booking API cannot be nil")
	}
	if cfg.Gateway == nil {
		panic("wizard: payment gateway cannot be nil")
	}
	if cfg.Currency == "" {
		cfg.Currency = "SGD"
	}
	if cfg.MerchantName == "" {
		cfg.MerchantName = "Book Now"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Wizard{
		api:          cfg.API,
		gateway:      cfg.Gateway,
		currency:     cfg.Currency,
		merchantName: cfg.MerchantName,
		themeColor:   cfg.ThemeColor,
		forcedItemID: cfg.ItemID,
		logger:       cfg.Logger,
		listener:     cfg.Listener,
		now:          cfg.Now,
		selection:    Selection{Guests: 1},
		values:       map[string]string{},
	}
}

// State returns a copy of the current observable state.
func (w *Wizard) State() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Start loads the catalog. With exactly one active item (or a configured
// single item) the selection step is skipped.
func (w *Wizard) Start(ctx context.Context) {
	w.mu.Lock()
	if w.step != Step("") {
		w.mu.Unlock()
		return
	}
	w.step = StepLoading
	w.loadingMsg = "Loading available sessions…"
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)

	items, err := w.api.ListItems(ctx, w.forcedItemID)

	w.mu.Lock()
	switch {
	case err != nil:
		w.failLocked(err.Error())
	case len(items) == 0:
		w.logger.Warn("no active bookable items", "item_filter", w.forcedItemID)
		w.failLocked("No bookable items found.")
	default:
		w.items = items
		if len(items) == 1 || w.forcedItemID != "" {
			item := items[0]
			w.selection.Item = &item
			w.transitionLocked(StepSelectDate)
		} else {
			w.transitionLocked(StepSelectItem)
		}
	}
	snap = w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

// SelectItem picks one item on the selection step. Unknown ids are
// ignored.
func (w *Wizard) SelectItem(itemID string) {
	w.mu.Lock()
	if w.step != StepSelectItem {
		w.mu.Unlock()
		return
	}
	for _, it := range w.items {
		if it.ID == itemID {
			item := it
			w.selection.Item = &item
			break
		}
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

// ContinueToDate advances past item selection. No-op until an item is
// selected.
func (w *Wizard) ContinueToDate() {
	w.mu.Lock()
	if w.step != StepSelectItem || w.selection.Item == nil {
		w.mu.Unlock()
		return
	}
	w.transitionLocked(StepSelectDate)
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

// SetDate records the chosen date. Date-only, must not be in the past.
func (w *Wizard) SetDate(dateISO string) error {
	w.mu.Lock()
	if w.step != StepSelectDate {
		w.mu.Unlock()
		return fmt.Errorf("wizard: date can only be set on the date step")
	}
	if _, err := time.Parse("2006-01-02", dateISO); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("wizard: invalid date %q", dateISO)
	}
	if dateISO < w.now().Format("2006-01-02") {
		w.mu.Unlock()
		return fmt.Errorf("wizard: date %s is in the past", dateISO)
	}
	w.selection.Date = dateISO
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
	return nil
}

// ContinueToGuests resolves a rate quote for the chosen date and, on
// success, lands on the guest-count step.
func (w *Wizard) ContinueToGuests(ctx context.Context) {
	w.mu.Lock()
	if w.step != StepSelectDate || w.selection.Item == nil || w.selection.Date == "" {
		w.mu.Unlock()
		return
	}
	w.transitionLocked(StepLoading)
	w.loadingMsg = "Checking availability…"
	seq, itemID, date, guests := w.issueResolveLocked()
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)

	quote, err := w.api.RateItem(ctx, itemID, date, guests)

	w.mu.Lock()
	if seq != w.resolveSeq {
		w.mu.Unlock()
		return
	}
	if err != nil {
		w.failLocked(availabilityMessage(err))
	} else {
		w.quote = quote
		w.total = quote.Total
		w.transitionLocked(StepGuestCount)
	}
	snap = w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

// IncrementGuests bumps the guest count and refreshes the quote in the
// background.
func (w *Wizard) IncrementGuests(ctx context.Context) {
	w.changeGuests(ctx, +1)
}

// DecrementGuests lowers the guest count. Decrementing from 1 is a no-op.
func (w *Wizard) DecrementGuests(ctx context.Context) {
	w.changeGuests(ctx, -1)
}

func (w *Wizard) changeGuests(ctx context.Context, delta int) {
	w.mu.Lock()
	if w.step != StepGuestCount {
		w.mu.Unlock()
		return
	}
	next := w.selection.Guests + delta
	if next < 1 {
		w.mu.Unlock()
		return
	}
	w.selection.Guests = next
	seq, itemID, date, guests := w.issueResolveLocked()
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)

	go w.refreshQuote(ctx, seq, itemID, date, guests)
}

// ContinueToForm creates the booking session and fetches the customer
// form schema in parallel, then lands on the form step. The session total
// supersedes the quote total.
func (w *Wizard) ContinueToForm(ctx context.Context) {
	w.mu.Lock()
	if w.step != StepGuestCount || w.quote == nil {
		w.mu.Unlock()
		return
	}
	slip := w.quote.Slip
	quoteTotal := w.quote.Total
	w.transitionLocked(StepLoading)
	w.loadingMsg = "Preparing your booking…"
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)

	var (
		wg      sync.WaitGroup
		sess    *checkfront.Session
		sessErr error
		fields  []checkfront.FormField
		formErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sess, sessErr = w.api.CreateSession(ctx, slip)
	}()
	go func() {
		defer wg.Done()
		fields, formErr = w.api.GetBookingForm(ctx)
	}()
	wg.Wait()

	w.mu.Lock()
	switch {
	case sessErr != nil:
		w.failLocked(sessErr.Error())
	case formErr != nil:
		w.failLocked(formErr.Error())
	default:
		w.sessionID = sess.ID
		if sess.Total != "" {
			w.total = sess.Total
		} else {
			w.total = quoteTotal
		}
		w.fields = fields
		w.transitionLocked(StepCustomerForm)
	}
	snap = w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

// SetField records one customer form value. Like the rendered widget, no
// re-render is triggered for keystrokes.
func (w *Wizard) SetField(key, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepCustomerForm {
		return
	}
	w.values[key] = value
}

// SubmitAndPay validates the form, creates the booking and runs the
// hosted checkout. A *ValidationError is returned (and the wizard stays
// on the form) when required fields are missing.
func (w *Wizard) SubmitAndPay(ctx context.Context) error {
	w.mu.Lock()
	if w.step != StepCustomerForm {
		w.mu.Unlock()
		return fmt.Errorf("wizard: nothing to submit on step %s", w.step)
	}

	var missing []string
	for _, f := range w.fields {
		if f.Required && strings.TrimSpace(w.values[f.Key]) == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		w.errMsg = "Please fill in: " + strings.Join(missing, ", ")
		snap := w.snapshotLocked()
		w.mu.Unlock()
		w.emit(snap)
		return &ValidationError{Missing: missing}
	}

	w.errMsg = ""
	w.transitionLocked(StepProcessing)
	w.loadingMsg = "Creating your reservation…"
	sessionID := w.sessionID
	total := w.total
	values := copyValues(w.values)
	var itemName string
	if w.selection.Item != nil {
		itemName = w.selection.Item.Name
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)

	booking, err := w.api.CreateBooking(ctx, sessionID, values)
	if err != nil {
		w.mu.Lock()
		if errors.Is(err, checkfront.ErrNoBookingID) {
			w.failLocked("Booking creation failed. Please try again.")
		} else {
			w.failLocked(err.Error())
		}
		snap = w.snapshotLocked()
		w.mu.Unlock()
		w.emit(snap)
		return nil
	}

	w.mu.Lock()
	w.bookingID = booking.ID
	amountMinor, amtErr := payments.MinorUnits(total)
	if amtErr != nil {
		w.failLocked(amtErr.Error())
		snap = w.snapshotLocked()
		w.mu.Unlock()
		w.emit(snap)
		return nil
	}
	description := itemName
	if description == "" {
		description = "Booking"
	}
	opts := payments.CheckoutOptions{
		AmountMinor:  amountMinor,
		Currency:     w.currency,
		MerchantName: w.merchantName,
		Description:  description,
		ThemeColor:   w.themeColor,
		Prefill: payments.Prefill{
			Name:    values["customer_name"],
			Email:   values["customer_email"],
			Contact: values["customer_phone"],
		},
		Notes: map[string]string{"checkfront_booking_id": booking.ID},
	}
	w.mu.Unlock()

	result, gwErr := w.gateway.OpenCheckout(ctx, opts)

	w.mu.Lock()
	switch {
	case gwErr != nil:
		w.failLocked(gwErr.Error())
	case result.Outcome == payments.OutcomeCancelled:
		// Form values are preserved; the user can try again.
		w.transitionLocked(StepCustomerForm)
	case result.Outcome == payments.OutcomeFailure:
		reason := result.FailureReason
		if reason == "" {
			reason = "Payment failed. Please try again."
		}
		w.failLocked(reason)
	case result.Receipt == nil:
		w.failLocked("Payment gateway returned no receipt.")
	default:
		w.loadingMsg = "Confirming your booking…"
		receipt := *result.Receipt
		bookingID := w.bookingID
		snap = w.snapshotLocked()
		w.mu.Unlock()
		w.emit(snap)

		confirmErr := w.api.ConfirmPayment(ctx, checkfront.ConfirmRequest{
			PaymentID: receipt.PaymentID,
			OrderID:   receipt.OrderID,
			Signature: receipt.Signature,
			BookingID: bookingID,
			Amount:    total,
			Currency:  w.currency,
		})

		w.mu.Lock()
		if confirmErr != nil {
			// The payment is captured; reconciliation failure is an
			// operator problem, never a payer-facing error.
			w.logger.Error("payment captured but confirmation failed",
				"booking_id", bookingID,
				"payment_id", receipt.PaymentID,
				"error", confirmErr,
			)
		}
		w.transitionLocked(StepSuccess)
	}
	snap = w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
	return nil
}

// Back steps backwards without losing the selection made so far.
func (w *Wizard) Back() {
	w.mu.Lock()
	switch w.step {
	case StepSelectDate:
		w.transitionLocked(StepSelectItem)
	case StepGuestCount:
		w.transitionLocked(StepSelectDate)
	case StepCustomerForm:
		w.errMsg = ""
		w.transitionLocked(StepGuestCount)
	default:
		w.mu.Unlock()
		return
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

// Reset restarts the selection from the error state.
func (w *Wizard) Reset() {
	w.mu.Lock()
	if w.step != StepError {
		w.mu.Unlock()
		return
	}
	w.errMsg = ""
	w.transitionLocked(StepSelectItem)
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

func (w *Wizard) transitionLocked(to Step) {
	if !canTransition(w.step, to) {
		w.logger.Warn("unexpected step transition", "from", string(w.step), "to", string(to))
	}
	w.step = to
	if to != StepLoading && to != StepProcessing {
		w.loadingMsg = ""
	}
}

func (w *Wizard) failLocked(msg string) {
	w.errMsg = msg
	w.transitionLocked(StepError)
}

func (w *Wizard) snapshotLocked() Snapshot {
	snap := Snapshot{
		Step:           w.step,
		Items:          append([]checkfront.Item(nil), w.items...),
		Date:           w.selection.Date,
		Guests:         w.selection.Guests,
		Total:          w.total,
		Fields:         append([]checkfront.FormField(nil), w.fields...),
		Values:         copyValues(w.values),
		BookingID:      w.bookingID,
		ErrorMessage:   w.errMsg,
		LoadingMessage: w.loadingMsg,
	}
	if w.selection.Item != nil {
		item := *w.selection.Item
		snap.SelectedItem = &item
	}
	return snap
}

func (w *Wizard) emit(snap Snapshot) {
	if w.listener != nil {
		w.listener(snap)
	}
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
