package auction

import (
	"math"

	"auction-storefront/internal/biddingerrors"

	"github.com/shopspring/decimal"
)

// monetaryPrecision rounds accepted bids to whole cents
const monetaryPrecision int32 = 2

// DefaultIncrement is the minimum raise over the current high bid
var DefaultIncrement = decimal.NewFromInt(1)

// MinimumAcceptable is the lowest bid the auction will take next
func MinimumAcceptable(currentHigh, increment decimal.Decimal) decimal.Decimal {
	return currentHigh.Add(increment).Round(monetaryPrecision)
}

// Validate decides whether amount may be bid against currentHigh. It has no
// side effects. The exact amount is compared against the minimum; only an
// accepted amount is rounded to cents. On refusal it returns a
// *biddingerrors.RejectionError, carrying the minimum acceptable bid when the
// amount is too low.
func Validate(amount float64, currentHigh, increment decimal.Decimal, state State) (decimal.Decimal, error) {
	if state == Closed {
		return decimal.Zero, biddingerrors.Reject(biddingerrors.ErrAuctionEnded)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return decimal.Zero, biddingerrors.Reject(biddingerrors.ErrInvalidAmount)
	}

	minimum := MinimumAcceptable(currentHigh, increment)
	if decimal.NewFromFloat(amount).LessThan(minimum) {
		return decimal.Zero, &biddingerrors.RejectionError{Reason: biddingerrors.ErrBidTooLow, Minimum: minimum}
	}

	bid := decimal.NewFromFloat(amount).Round(monetaryPrecision)
	if !bid.IsPositive() {
		return decimal.Zero, biddingerrors.Reject(biddingerrors.ErrInvalidAmount)
	}
	return bid, nil
}
