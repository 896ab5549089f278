package checkfront

import (
	"errors"
	"fmt"
)

// ErrNoBookingID is returned when booking creation comes back without a
// booking identifier. Fatal for the attempt.
var ErrNoBookingID = errors.New("checkfront: booking creation returned no booking id")

// RemoteError is any non-2xx response or transport failure from the proxy.
// StatusCode is 0 for transport failures.
type RemoteError struct {
	StatusCode int
	Path       string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("checkfront: request failed on %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("checkfront: API error %d on %s", e.StatusCode, e.Path)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// AvailabilityError means no rate exists for the requested tuple.
type AvailabilityError struct {
	ItemID string
	Date   string
	Guests int
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("checkfront: no availability for item %s on %s (guests=%d)", e.ItemID, e.Date, e.Guests)
}
