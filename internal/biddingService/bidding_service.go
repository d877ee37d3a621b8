package bidding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-storefront/internal/auction"
	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/messaging"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"
	"auction-storefront/utils"

	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

// Options tunes the sessions the service opens
type Options struct {
	Increment    decimal.Decimal
	TickInterval time.Duration
	Now          func() time.Time
	NewID        func() string
}

// BiddingService runs one auction session per auction product and records
// what happens when they close.
type BiddingService struct {
	repo      repository.AuctionDB
	orders    repository.OrderDB
	publisher messaging.Publisher
	opts      Options

	mu       sync.RWMutex
	sessions map[string]*auction.Session // key: productID
	shutdown bool
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, orders repository.OrderDB, publisher messaging.Publisher, opts Options) *BiddingService {
	if opts.Increment.IsZero() {
		opts.Increment = auction.DefaultIncrement
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = utils.GenerateID
	}
	if publisher == nil {
		publisher = messaging.NewLogPublisher()
	}
	return &BiddingService{
		repo:      repo,
		orders:    orders,
		publisher: publisher,
		opts:      opts,
		sessions:  make(map[string]*auction.Session),
	}
}

// Increment returns the minimum raise over the current high bid
func (s *BiddingService) Increment() decimal.Decimal {
	return s.opts.Increment
}

// OpenAll opens a session for every auction product in the repository
func (s *BiddingService) OpenAll() error {
	auctions, err := s.repo.ListAuctions()
	if err != nil {
		return fmt.Errorf("service: failed to list auctions: %w", err)
	}
	for _, p := range auctions {
		if err := s.Open(p); err != nil && !errors.Is(err, biddingerrors.ErrAlreadyListed) {
			return err
		}
	}
	return nil
}

// Open starts the auction session of product
func (s *BiddingService) Open(product models.Product) error {
	s.mu.RLock()
	_, exists := s.sessions[product.ProductID]
	down := s.shutdown
	s.mu.RUnlock()
	if down {
		return fmt.Errorf("service: %w - service is shut down", biddingerrors.ErrSessionNotFound)
	}
	if exists {
		return fmt.Errorf("service: %w - product %s", biddingerrors.ErrAlreadyListed, product.ProductID)
	}

	// NewSession may deliver the outcome right away, so no lock is held here
	session, err := auction.NewSession(product, auction.Options{
		Increment:    s.opts.Increment,
		TickInterval: s.opts.TickInterval,
		Now:          s.opts.Now,
		NewID:        s.opts.NewID,
		Listener:     s,
		Sink:         s.repo,
	})
	if err != nil {
		return fmt.Errorf("service: failed to open auction %s: %w", product.ProductID, err)
	}

	s.mu.Lock()
	if _, raced := s.sessions[product.ProductID]; raced || s.shutdown {
		s.mu.Unlock()
		session.Stop()
		return fmt.Errorf("service: %w - product %s", biddingerrors.ErrAlreadyListed, product.ProductID)
	}
	s.sessions[product.ProductID] = session
	s.mu.Unlock()

	session.Start()
	utils.Info("auction session opened", map[string]any{
		"product_id": product.ProductID,
		"state":      session.State().String(),
		"deadline":   product.AuctionEndDate,
	})
	return nil
}

// Remove stops and forgets the session of productID, if any
func (s *BiddingService) Remove(productID string) {
	s.mu.Lock()
	session, ok := s.sessions[productID]
	delete(s.sessions, productID)
	s.mu.Unlock()

	if ok {
		session.Stop()
		utils.Info("auction session removed", map[string]any{"product_id": productID})
	}
}

// Shutdown stops every session. No outcome is delivered afterwards.
func (s *BiddingService) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	sessions := make([]*auction.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.Stop()
	}
	utils.Info("bidding service stopped", map[string]any{"sessions": len(sessions)})
}

// session looks up the running session of an auction product
func (s *BiddingService) session(itemID string) (*auction.Session, error) {
	if itemID == "" {
		return nil, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	s.mu.RLock()
	session, ok := s.sessions[itemID]
	s.mu.RUnlock()
	if ok {
		return session, nil
	}

	p, err := s.repo.GetProduct(itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}
	if !p.IsAuction() {
		return nil, fmt.Errorf("service: %w - item %s", biddingerrors.ErrNotAnAuction, itemID)
	}
	return nil, fmt.Errorf("service: %w - item %s", biddingerrors.ErrSessionNotFound, itemID)
}

// PlaceBid validates and records a user's bid for an item
func (s *BiddingService) PlaceBid(itemID string, bidder auction.Bidder, amount float64) (models.Bid, error) {
	session, err := s.session(itemID)
	if err != nil {
		return models.Bid{}, err
	}

	bid, err := session.SubmitBid(bidder, amount)
	if err != nil {
		utils.Info("bid rejected", map[string]any{
			"item_id": itemID,
			"user_id": bidder.ID,
			"amount":  amount,
			"reason":  err.Error(),
		})
		return models.Bid{}, fmt.Errorf("service: bid on item %s rejected: %w", itemID, err)
	}

	utils.Info("bid accepted", map[string]any{
		"item_id": itemID,
		"user_id": bid.UserID,
		"bid_id":  bid.BidID,
		"amount":  bid.Amount.StringFixed(2),
	})
	s.publish(messaging.TopicBidPlaced, itemID, messaging.BidPlaced{
		ProductID:  itemID,
		BidID:      bid.BidID,
		BidderID:   bid.UserID,
		BidderName: bid.BidderName,
		Amount:     bid.Amount.InexactFloat64(),
		PlacedAt:   bid.CreatedAt,
	})
	return bid, nil
}

// GetBidsForItem returns all bids for a specific item, newest first
func (s *BiddingService) GetBidsForItem(itemID string) ([]models.Bid, error) {
	session, err := s.session(itemID)
	if err != nil {
		return nil, err
	}

	history := session.History()
	if len(history) == 0 {
		return nil, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, biddingerrors.ErrNoBids)
	}
	bids := make([]models.Bid, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		bids = append(bids, history[i])
	}
	return bids, nil
}

// GetWinningBid returns the bid currently winning an item
func (s *BiddingService) GetWinningBid(itemID string) (models.Bid, error) {
	session, err := s.session(itemID)
	if err != nil {
		return models.Bid{}, err
	}

	winningBid, ok := session.Leader()
	if !ok {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for item %s: %w", itemID, biddingerrors.ErrNoBids)
	}
	return winningBid, nil
}

// GetAuctionStatus returns the countdown, current bid and minimum next bid of an item
func (s *BiddingService) GetAuctionStatus(itemID string) (auction.Snapshot, error) {
	session, err := s.session(itemID)
	if err != nil {
		return auction.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// ListAuctionStatuses returns a snapshot of every running session ordered by product ID
func (s *BiddingService) ListAuctionStatuses() []auction.Snapshot {
	s.mu.RLock()
	sessions := make([]*auction.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	snaps := make([]auction.Snapshot, 0, len(sessions))
	for _, session := range sessions {
		snaps = append(snaps, session.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ProductID < snaps[j].ProductID })
	return snaps
}

// GetOutcome returns the outcome of a closed auction and what it means for userID
func (s *BiddingService) GetOutcome(itemID, userID string) (auction.Outcome, auction.Result, error) {
	session, err := s.session(itemID)
	if err != nil {
		return auction.Outcome{}, "", err
	}

	outcome, closed := session.Outcome()
	if !closed {
		return auction.Outcome{}, "", fmt.Errorf("service: %w - item %s", biddingerrors.ErrAuctionOpen, itemID)
	}
	return outcome, outcome.ResultFor(userID), nil
}

// Settlement returns what the winner of a closed auction owes
func (s *BiddingService) Settlement(itemID, userID string) (auction.Settlement, error) {
	session, err := s.session(itemID)
	if err != nil {
		return auction.Settlement{}, err
	}

	settlement, err := session.Settlement(userID)
	if err != nil {
		return auction.Settlement{}, fmt.Errorf("service: settlement for item %s: %w", itemID, err)
	}
	return settlement, nil
}

// GetItemsByUser returns all items a user has placed bids on
func (s *BiddingService) GetItemsByUser(userID string) ([]models.Product, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidBid)
	}

	items, err := s.repo.GetItemsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get items for user %s: %w", userID, err)
	}

	return items, nil
}

// OnTick implements auction.Listener
func (s *BiddingService) OnTick(productID string, remaining auction.Remaining) {
	utils.Debug("auction countdown", map[string]any{
		"product_id": productID,
		"remaining":  remaining.String(),
	})
}

// OnOutcome implements auction.Listener. It runs on the session's clock and
// must not call back into the session.
func (s *BiddingService) OnOutcome(outcome auction.Outcome) {
	fields := map[string]any{
		"product_id":   outcome.ProductID,
		"final_amount": outcome.FinalAmount.StringFixed(2),
		"bids":         len(outcome.Bids),
	}

	closed := messaging.AuctionClosed{
		ProductID:   outcome.ProductID,
		FinalAmount: outcome.FinalAmount.InexactFloat64(),
		BidCount:    len(outcome.Bids),
		ClosedAt:    outcome.ClosedAt,
	}
	if outcome.Winner != nil {
		fields["winner_id"] = outcome.Winner.UserID
		closed.WinnerID = outcome.Winner.UserID
	}
	utils.Info("auction closed", fields)
	s.publish(messaging.TopicAuctionClosed, outcome.ProductID, closed)

	if outcome.Winner != nil {
		s.recordWin(outcome)
	}
}

// recordWin adds the "Auction Won" order to the winner's history
func (s *BiddingService) recordWin(outcome auction.Outcome) {
	order := models.Order{
		OrderID:     utils.GeneratePrefixedID("order"),
		UserID:      outcome.Winner.UserID,
		ProductID:   outcome.ProductID,
		ProductName: outcome.ProductID,
		Quantity:    1,
		Status:      models.OrderAuctionWon,
		TotalAmount: outcome.Winner.Amount,
		PurchasedAt: outcome.ClosedAt,
	}
	if p, err := s.repo.GetProduct(outcome.ProductID); err == nil {
		order.ProductName = p.Name
		order.SellerID = p.SellerID
	}

	if err := s.orders.CreateOrder(order); err != nil {
		utils.Error("failed to record auction win", map[string]any{
			"product_id": outcome.ProductID,
			"winner_id":  outcome.Winner.UserID,
			"error":      err.Error(),
		})
		return
	}
	s.publish(messaging.TopicOrderPlaced, order.OrderID, messaging.OrderPlaced{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		ProductID:   order.ProductID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.InexactFloat64(),
		PlacedAt:    order.PurchasedAt,
	})
}

// publish sends an event; failures are logged and never undo the state change
func (s *BiddingService) publish(topic, key string, event any) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		utils.Warn("failed to publish event", map[string]any{
			"topic": topic,
			"key":   key,
			"error": fmt.Errorf("%w: %v", biddingerrors.ErrPublishFailed, err).Error(),
		})
	}
}
