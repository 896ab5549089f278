package wizard

import (
	"context"
	"errors"

	"github.com/reddynasty/booking-widget/internal/checkfront"
)

// Pricing resolution. A quote is only trusted for the exact (item, date,
// guests) tuple that produced it, so every change to the selection
// invalidates the current quote and re-resolves. Resolutions are
// sequenced: a completion is applied only when it is still the newest
// issued one AND its tuple still matches the selection. Last-issued-wins,
// not last-completed-wins.

func (w *Wizard) issueResolveLocked() (seq uint64, itemID, date string, guests int) {
	w.resolveSeq++
	return w.resolveSeq, w.selection.Item.ID, w.selection.Date, w.selection.Guests
}

// refreshQuote applies a guest-count re-resolution. Failures are
// swallowed: the displayed total stays stale rather than surfacing an
// error. Superseded in-flight resolutions are discarded on arrival; there
// is no cancellation.
func (w *Wizard) refreshQuote(ctx context.Context, seq uint64, itemID, date string, guests int) {
	quote, err := w.api.RateItem(ctx, itemID, date, guests)
	if err != nil {
		w.logger.Debug("guest re-price failed, keeping stale total", "item_id", itemID, "guests", guests, "error", err)
		return
	}

	w.mu.Lock()
	if seq != w.resolveSeq || w.step != StepGuestCount ||
		!quote.Matches(w.selection.Item.ID, w.selection.Date, w.selection.Guests) {
		w.mu.Unlock()
		return
	}
	w.quote = quote
	w.total = quote.Total
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.emit(snap)
}

func availabilityMessage(err error) string {
	var avail *checkfront.AvailabilityError
	if errors.As(err, &avail) {
		return "No availability for selected date."
	}
	return err.Error()
}
