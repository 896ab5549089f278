// Package payments holds the hosted payment gateway boundary consumed by
// the booking wizard, plus the server-side Razorpay client used by the
// proxy.
package payments

import "context"

// Prefill carries best-effort contact details into the hosted checkout.
type Prefill struct {
	Name    string
	Email   string
	Contact string
}

// CheckoutOptions describes one hosted checkout invocation. AmountMinor is
// in minor currency units (cents).
type CheckoutOptions struct {
	AmountMinor  int64
	Currency     string
	MerchantName string
	Description  string
	Prefill      Prefill
	ThemeColor   string
	Notes        map[string]string
}

// Outcome is the result tag of a checkout attempt. Exactly one outcome is
// reported per invocation.
type Outcome int

const (
	// OutcomeReceipt means the payment was captured; Receipt is set.
	OutcomeReceipt Outcome = iota
	// OutcomeCancelled means the user dismissed the checkout.
	OutcomeCancelled
	// OutcomeFailure means the gateway rejected the payment; FailureReason
	// is set.
	OutcomeFailure
)

// Receipt identifies a captured payment.
type Receipt struct {
	PaymentID string
	OrderID   string
	Signature string
}

// CheckoutResult is the tagged outcome of OpenCheckout.
type CheckoutResult struct {
	Outcome       Outcome
	Receipt       *Receipt
	FailureReason string
}

// ReceiptResult builds a success result.
func ReceiptResult(r Receipt) CheckoutResult {
	return CheckoutResult{Outcome: OutcomeReceipt, Receipt: &r}
}

// CancelledResult builds a user-cancel result.
func CancelledResult() CheckoutResult {
	return CheckoutResult{Outcome: OutcomeCancelled}
}

// FailureResult builds a failure result with a user-facing reason.
func FailureResult(reason string) CheckoutResult {
	return CheckoutResult{Outcome: OutcomeFailure, FailureReason: reason}
}

// Gateway opens a hosted checkout and reports exactly one outcome. An
// error return means the gateway itself could not be invoked.
type Gateway interface {
	OpenCheckout(ctx context.Context, opts CheckoutOptions) (CheckoutResult, error)
}
