package auction

import (
	"auction-storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Ledger is the append-only bid history of one auction, kept in submission
// order. It trusts its caller to have validated every appended bid and is not
// safe for concurrent use; Session serialises access to it.
type Ledger struct {
	startingPrice decimal.Decimal
	bids          []models.Bid
}

// NewLedger creates a ledger seeded with previously accepted bids, oldest first
func NewLedger(startingPrice decimal.Decimal, seed []models.Bid) *Ledger {
	return &Ledger{
		startingPrice: startingPrice,
		bids:          append([]models.Bid(nil), seed...),
	}
}

// Append records an accepted bid; it becomes the current high bid
func (l *Ledger) Append(bid models.Bid) {
	l.bids = append(l.bids, bid)
}

// CurrentHighBid returns the latest bid amount, or the starting price when nobody has bid
func (l *Ledger) CurrentHighBid() decimal.Decimal {
	if last, ok := l.Last(); ok {
		return last.Amount
	}
	return l.startingPrice
}

// Last returns the most recently appended bid
func (l *Ledger) Last() (models.Bid, bool) {
	if len(l.bids) == 0 {
		return models.Bid{}, false
	}
	return l.bids[len(l.bids)-1], true
}

// History returns a copy of all bids, oldest first
func (l *Ledger) History() []models.Bid {
	return append([]models.Bid(nil), l.bids...)
}

// RecentBids returns up to n of the latest bids, newest first
func (l *Ledger) RecentBids(n int) []models.Bid {
	if n <= 0 || len(l.bids) == 0 {
		return []models.Bid{}
	}
	if n > len(l.bids) {
		n = len(l.bids)
	}
	recent := make([]models.Bid, 0, n)
	for i := len(l.bids) - 1; len(recent) < n; i-- {
		recent = append(recent, l.bids[i])
	}
	return recent
}

// Len returns the number of recorded bids
func (l *Ledger) Len() int {
	return len(l.bids)
}

// Winner returns the earliest bid matching the current high bid. Equal
// amounts cannot be accepted in sequence, but seeded history may contain
// them; submission order breaks the tie.
func (l *Ledger) Winner() (models.Bid, bool) {
	if len(l.bids) == 0 {
		return models.Bid{}, false
	}
	high := l.CurrentHighBid()
	for _, b := range l.bids {
		if b.Amount.Equal(high) {
			return b, true
		}
	}
	return models.Bid{}, false
}
