package auction

import (
	"fmt"
	"sync"
	"time"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/models"
	"auction-storefront/utils"

	"github.com/shopspring/decimal"
)

// State is the lifecycle phase of an auction session
type State int

const (
	Open State = iota
	Closed
)

func (s State) String() string {
	if s == Closed {
		return "closed"
	}
	return "open"
}

// MarshalText renders the state as "open" or "closed"
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is what an outcome means for one participant
type Result string

const (
	ResultWon   Result = "won"
	ResultEnded Result = "ended"
)

// recentBidsShown is the size of the recent bids view in snapshots
const recentBidsShown = 3

// Bidder identifies who submits a bid. The zero value is anonymous.
type Bidder struct {
	ID          string
	DisplayName string
}

// Anonymous reports whether no identity is attached
func (b Bidder) Anonymous() bool {
	return b.ID == ""
}

// Outcome is raised once when an auction closes
type Outcome struct {
	ProductID   string          `json:"product_id"`
	Winner      *models.Bid     `json:"winner,omitempty"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Bids        []models.Bid    `json:"bids"`
	ClosedAt    time.Time       `json:"closed_at"`
}

// ResultFor resolves the outcome for one bidder: Won for the winner, Ended for everyone else
func (o Outcome) ResultFor(bidderID string) Result {
	if o.Winner != nil && bidderID != "" && o.Winner.UserID == bidderID {
		return ResultWon
	}
	return ResultEnded
}

// Listener observes a session. OnOutcome is called at most once per session.
type Listener interface {
	OnTick(productID string, remaining Remaining)
	OnOutcome(outcome Outcome)
}

// ProductSink receives every accepted bid so that shared product records
// (catalog, checkout) see the current price.
type ProductSink interface {
	UpdateAuctionState(productID string, currentBid decimal.Decimal, highestBidder string, bids []models.Bid) error
}

// Settlement is what checkout may charge the winner of a closed auction
type Settlement struct {
	ProductID string          `json:"product_id"`
	AmountDue decimal.Decimal `json:"amount_due"`
	IsWinner  bool            `json:"is_winner"`
}

// Snapshot is a read-only view of a session for display
type Snapshot struct {
	ProductID      string          `json:"product_id"`
	State          State           `json:"state"`
	Deadline       *time.Time      `json:"deadline,omitempty"`
	Remaining      Remaining       `json:"remaining"`
	StartingPrice  decimal.Decimal `json:"starting_price"`
	CurrentHighBid decimal.Decimal `json:"current_high_bid"`
	MinimumBid     decimal.Decimal `json:"minimum_bid"`
	BidCount       int             `json:"bid_count"`
	RecentBids     []models.Bid    `json:"recent_bids"`
}

// Options configures a Session
type Options struct {
	Increment    decimal.Decimal
	TickInterval time.Duration
	Now          func() time.Time
	NewID        func() string
	Listener     Listener
	Sink         ProductSink
}

// Session owns one auction from open to closed: it mediates bid submission,
// follows the countdown and announces the outcome exactly once.
type Session struct {
	productID string
	opts      Options

	mu              sync.Mutex
	product         models.Product
	ledger          *Ledger
	state           State
	outcomeNotified bool
	outcome         *Outcome

	countdown *Countdown
}

// NewSession opens a session for an auction product. A deadline already in
// the past, or a missing one, closes the session before NewSession returns
// and the outcome is delivered without any countdown tick.
func NewSession(product models.Product, opts Options) (*Session, error) {
	if !product.IsAuction() {
		return nil, fmt.Errorf("session: %w - product %s", biddingerrors.ErrNotAnAuction, product.ProductID)
	}
	if opts.Increment.IsZero() {
		opts.Increment = DefaultIncrement
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = utils.GenerateID
	}

	product = product.Clone()
	if product.CurrentBid.LessThan(product.Price) {
		product.CurrentBid = product.Price
	}

	s := &Session{
		productID: product.ProductID,
		opts:      opts,
		product:   product,
		ledger:    NewLedger(product.Price, product.Bids),
		state:     Open,
	}
	if product.AuctionEndDate == nil {
		utils.Warn("auction session: closing auction without deadline", map[string]any{
			"product_id": product.ProductID,
			"error":      biddingerrors.ErrMissingDeadline.Error(),
		})
	}

	s.countdown = NewCountdown(product.AuctionEndDate, opts.Now, s.handleTick, s.close)
	s.countdown.Tick()
	return s, nil
}

// Start runs the countdown in the background until expiry or Stop
func (s *Session) Start() {
	s.countdown.Start(s.opts.TickInterval)
}

// Stop tears the session down; no tick or outcome is delivered afterwards
func (s *Session) Stop() {
	s.countdown.Stop()
}

// Tick advances the countdown once, as the background driver does every interval
func (s *Session) Tick() {
	s.countdown.Tick()
}

func (s *Session) handleTick(r Remaining) {
	if s.opts.Listener != nil {
		s.opts.Listener.OnTick(s.productID, r)
	}
}

// observeDeadline closes the session if the deadline has passed. When the
// countdown's own expiry is still notifying, the state is already Closed or
// becomes Closed here; the outcome is delivered only once either way.
func (s *Session) observeDeadline() {
	if s.countdown.Expired() {
		s.close()
	}
}

// close marks the session Closed and notifies the listener, at most once
func (s *Session) close() {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	s.state = Closed

	var notify *Outcome
	if !s.outcomeNotified {
		s.outcomeNotified = true
		outcome := Outcome{
			ProductID:   s.productID,
			FinalAmount: s.ledger.CurrentHighBid(),
			Bids:        s.ledger.History(),
			ClosedAt:    s.opts.Now().UTC(),
		}
		if winner, ok := s.ledger.Winner(); ok {
			outcome.Winner = &winner
		}
		s.outcome = &outcome
		notify = &outcome
	}
	s.mu.Unlock()

	if notify != nil && s.opts.Listener != nil {
		s.opts.Listener.OnOutcome(*notify)
	}
}

// SubmitBid validates and records a bid. Rejections are returned as
// *biddingerrors.RejectionError and leave the session untouched.
func (s *Session) SubmitBid(bidder Bidder, amount float64) (models.Bid, error) {
	if bidder.Anonymous() {
		return models.Bid{}, fmt.Errorf("session: %w", biddingerrors.ErrAnonymousBidder)
	}
	s.observeDeadline()

	s.mu.Lock()
	defer s.mu.Unlock()

	accepted, err := Validate(amount, s.ledger.CurrentHighBid(), s.opts.Increment, s.state)
	if err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		BidID:      s.opts.NewID(),
		ItemID:     s.productID,
		UserID:     bidder.ID,
		BidderName: bidder.DisplayName,
		Amount:     accepted,
		CreatedAt:  s.nextTimestamp(),
	}
	s.ledger.Append(bid)

	s.product.CurrentBid = accepted
	s.product.HighestBidder = bidder.ID
	s.product.Bids = s.ledger.History()

	if s.opts.Sink != nil {
		if err := s.opts.Sink.UpdateAuctionState(s.productID, accepted, bidder.ID, s.ledger.History()); err != nil {
			utils.Warn("auction session: failed to propagate bid", map[string]any{
				"product_id": s.productID,
				"bid_id":     bid.BidID,
				"error":      err.Error(),
			})
		}
	}
	return bid, nil
}

// nextTimestamp keeps bid timestamps strictly increasing within the auction
func (s *Session) nextTimestamp() time.Time {
	now := s.opts.Now().UTC()
	if last, ok := s.ledger.Last(); ok && !now.After(last.CreatedAt) {
		return last.CreatedAt.Add(time.Microsecond)
	}
	return now
}

// State returns the current lifecycle phase
func (s *Session) State() State {
	s.observeDeadline()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentHighBid returns the amount to beat
func (s *Session) CurrentHighBid() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CurrentHighBid()
}

// Leader returns the bid currently winning, if any
func (s *Session) Leader() (models.Bid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Winner()
}

// History returns all bids, oldest first
func (s *Session) History() []models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.History()
}

// RecentBids returns up to n bids, newest first
func (s *Session) RecentBids(n int) []models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RecentBids(n)
}

// Product returns a copy of the auction product as this session sees it
func (s *Session) Product() models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product.Clone()
}

// Outcome returns the closing outcome once the session is closed
func (s *Session) Outcome() (Outcome, bool) {
	s.observeDeadline()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// Settlement returns the amount due for bidderID. It is only available once
// the auction has closed, and only to the winner.
func (s *Session) Settlement(bidderID string) (Settlement, error) {
	outcome, closed := s.Outcome()
	if !closed {
		return Settlement{}, fmt.Errorf("session: %w - product %s", biddingerrors.ErrAuctionOpen, s.productID)
	}
	if outcome.ResultFor(bidderID) != ResultWon {
		return Settlement{}, fmt.Errorf("session: %w - product %s", biddingerrors.ErrNotWinner, s.productID)
	}
	return Settlement{
		ProductID: s.productID,
		AmountDue: outcome.Winner.Amount,
		IsWinner:  true,
	}, nil
}

// Snapshot returns the state needed to render the bidding form
func (s *Session) Snapshot() Snapshot {
	s.observeDeadline()
	remaining := s.countdown.Remaining()

	s.mu.Lock()
	defer s.mu.Unlock()
	high := s.ledger.CurrentHighBid()
	snap := Snapshot{
		ProductID:      s.productID,
		State:          s.state,
		Remaining:      remaining,
		StartingPrice:  s.product.Price,
		CurrentHighBid: high,
		MinimumBid:     MinimumAcceptable(high, s.opts.Increment),
		BidCount:       s.ledger.Len(),
		RecentBids:     s.ledger.RecentBids(recentBidsShown),
	}
	if s.product.AuctionEndDate != nil {
		deadline := *s.product.AuctionEndDate
		snap.Deadline = &deadline
	}
	return snap
}
