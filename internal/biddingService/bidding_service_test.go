package bidding

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"auction-storefront/internal/auction"
	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/messaging"
	model "auction-storefront/internal/models"
	"auction-storefront/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	alice = auction.Bidder{ID: "user_a", DisplayName: "Bidder Alpha"}
	bob   = auction.Bidder{ID: "user_b", DisplayName: "Bidder Bravo"}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	service   *BiddingService
	repo      *repository.MockAuctionDB
	orders    *repository.MockOrderDB
	publisher *messaging.RecordingPublisher
	clock     *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      repository.NewMockAuctionDB(ctrl),
		orders:    repository.NewMockOrderDB(ctrl),
		publisher: &messaging.RecordingPublisher{},
		clock:     newFakeClock(),
	}
	ids := 0
	var idMu sync.Mutex
	f.service = NewBiddingService(f.repo, f.orders, f.publisher, Options{
		TickInterval: time.Hour,
		Now:          f.clock.Now,
		NewID: func() string {
			idMu.Lock()
			defer idMu.Unlock()
			ids++
			return fmt.Sprintf("bid-%d", ids)
		},
	})
	t.Cleanup(f.service.Shutdown)
	f.repo.EXPECT().UpdateAuctionState(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	return f
}

func (f *fixture) auction(productID, startingPrice string, ends time.Duration) model.Product {
	end := f.clock.Now().Add(ends)
	return model.Product{
		ProductID:      productID,
		Name:           "Auction " + productID,
		SellerID:       "seller_1",
		Price:          decimal.RequireFromString(startingPrice),
		Type:           model.ProductAuction,
		AuctionEndDate: &end,
	}
}

func (f *fixture) open(t *testing.T, p model.Product) {
	t.Helper()
	require.NoError(t, f.service.Open(p))
}

// Tests PlaceBid
func TestBiddingService_PlaceBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		itemID        string
		bidder        auction.Bidder
		amount        float64
		mockSetup     func(f *fixture)
		expectError   bool
		expectedError error
	}{
		{
			name:   "valid_first_bid",
			itemID: "item1",
			bidder: alice,
			amount: 151,
		},
		{
			name:          "empty_itemID",
			itemID:        "",
			bidder:        alice,
			amount:        200,
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "anonymous_bidder",
			itemID:        "item1",
			bidder:        auction.Bidder{},
			amount:        200,
			expectError:   true,
			expectedError: biddingerrors.ErrAnonymousBidder,
		},
		{
			name:          "zero_amount",
			itemID:        "item1",
			bidder:        alice,
			amount:        0,
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidAmount,
		},
		{
			name:          "nan_amount",
			itemID:        "item1",
			bidder:        alice,
			amount:        math.NaN(),
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidAmount,
		},
		{
			name:          "bid_too_low",
			itemID:        "item1",
			bidder:        alice,
			amount:        150.99,
			expectError:   true,
			expectedError: biddingerrors.ErrBidTooLow,
		},
		{
			name:   "unknown_item",
			itemID: "missing",
			bidder: alice,
			amount: 200,
			mockSetup: func(f *fixture) {
				f.repo.EXPECT().GetProduct("missing").Return(model.Product{}, biddingerrors.ErrItemNotFound)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrItemNotFound,
		},
		{
			name:   "not_an_auction",
			itemID: "tshirt",
			bidder: alice,
			amount: 200,
			mockSetup: func(f *fixture) {
				f.repo.EXPECT().GetProduct("tshirt").Return(model.Product{ProductID: "tshirt", Type: model.ProductPhysical}, nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrNotAnAuction,
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.open(t, f.auction("item1", "150", time.Hour))
			if tc.mockSetup != nil {
				tc.mockSetup(f)
			}

			bid, err := f.service.PlaceBid(tc.itemID, tc.bidder, tc.amount)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
				require.Empty(t, f.publisher.Messages(messaging.TopicBidPlaced))
				return
			}

			require.NoError(t, err)
			require.Equal(t, "bid-1", bid.BidID)
			require.Equal(t, tc.itemID, bid.ItemID)
			require.Equal(t, tc.bidder.ID, bid.UserID)
			require.True(t, bid.Amount.Equal(decimal.NewFromFloat(tc.amount)))
			require.Equal(t, f.clock.Now(), bid.CreatedAt)

			events := f.publisher.Messages(messaging.TopicBidPlaced)
			require.Len(t, events, 1)
			require.Equal(t, tc.itemID, events[0].Key)
		})
	}
}

func TestBiddingService_PlaceBid_TooLowCarriesMinimum(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.open(t, f.auction("item1", "150", time.Hour))

	_, err := f.service.PlaceBid("item1", alice, 175.50)
	require.NoError(t, err)

	_, err = f.service.PlaceBid("item1", bob, 160)
	require.ErrorIs(t, err, biddingerrors.ErrBidTooLow)
	minimum, ok := biddingerrors.MinimumFor(err)
	require.True(t, ok)
	require.Equal(t, "176.50", minimum.StringFixed(2))
}

func TestBiddingService_PlaceBid_PublishFailureKeepsBid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.publisher.Err = errors.New("broker unavailable")
	f.open(t, f.auction("item1", "150", time.Hour))

	_, err := f.service.PlaceBid("item1", alice, 160)
	require.NoError(t, err)

	winning, err := f.service.GetWinningBid("item1")
	require.NoError(t, err)
	require.Equal(t, alice.ID, winning.UserID)
}

// Tests GetBidsForItem
func TestBiddingService_GetBidsForItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.open(t, f.auction("item1", "100", time.Hour))
	f.open(t, f.auction("item2", "100", time.Hour))

	_, err := f.service.PlaceBid("item1", alice, 101)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.service.PlaceBid("item1", bob, 150)
	require.NoError(t, err)

	tests := []struct {
		name          string
		itemID        string
		expectedError error
		expectedBids  []string
	}{
		{
			name:         "valid_item_with_bids",
			itemID:       "item1",
			expectedBids: []string{"bid-2", "bid-1"},
		},
		{
			name:          "valid_item_no_bids",
			itemID:        "item2",
			expectedError: biddingerrors.ErrNoBids,
		},
		{
			name:          "empty_itemID",
			itemID:        "",
			expectedError: biddingerrors.ErrInvalidBid,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			bids, err := f.service.GetBidsForItem(tc.itemID)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(bids))
			for _, b := range bids {
				ids = append(ids, b.BidID)
			}
			require.Equal(t, tc.expectedBids, ids)
		})
	}
}

// Test GetWinningBid
func TestBiddingService_GetWinningBid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seeded := f.auction("item1", "150", time.Hour)
	seeded.Bids = []model.Bid{
		{BidID: "b1", ItemID: "item1", UserID: "user123", Amount: decimal.NewFromInt(160), CreatedAt: f.clock.Now().Add(-time.Hour)},
		{BidID: "b2", ItemID: "item1", UserID: "user456", Amount: decimal.RequireFromString("175.50"), CreatedAt: f.clock.Now().Add(-time.Minute)},
	}
	f.open(t, seeded)
	f.open(t, f.auction("item2", "100", time.Hour))

	winning, err := f.service.GetWinningBid("item1")
	require.NoError(t, err)
	require.Equal(t, "b2", winning.BidID)

	_, err = f.service.GetWinningBid("item2")
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)

	status, err := f.service.GetAuctionStatus("item1")
	require.NoError(t, err)
	require.Equal(t, auction.Open, status.State)
	require.Equal(t, "176.50", status.MinimumBid.StringFixed(2))
	require.Equal(t, 2, status.BidCount)
	require.Equal(t, "01:00:00", status.Remaining.String())
}

func TestBiddingService_OutcomeRecordsWinAndPublishes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	product := f.auction("item1", "150", time.Hour)
	f.open(t, product)

	_, err := f.service.PlaceBid("item1", alice, 160)
	require.NoError(t, err)
	_, err = f.service.PlaceBid("item1", bob, 170)
	require.NoError(t, err)

	_, _, err = f.service.GetOutcome("item1", bob.ID)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionOpen)
	_, err = f.service.Settlement("item1", bob.ID)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionOpen)

	var recorded model.Order
	f.repo.EXPECT().GetProduct("item1").Return(product, nil)
	f.orders.EXPECT().CreateOrder(gomock.Any()).DoAndReturn(func(o model.Order) error {
		recorded = o
		return nil
	}).Times(1)

	f.clock.Advance(time.Hour)

	outcome, result, err := f.service.GetOutcome("item1", bob.ID)
	require.NoError(t, err)
	require.Equal(t, auction.ResultWon, result)
	require.NotNil(t, outcome.Winner)
	require.Equal(t, bob.ID, outcome.Winner.UserID)
	require.Len(t, outcome.Bids, 2)

	_, result, err = f.service.GetOutcome("item1", alice.ID)
	require.NoError(t, err)
	require.Equal(t, auction.ResultEnded, result)

	settlement, err := f.service.Settlement("item1", bob.ID)
	require.NoError(t, err)
	require.True(t, settlement.IsWinner)
	require.Equal(t, "170.00", settlement.AmountDue.StringFixed(2))
	_, err = f.service.Settlement("item1", alice.ID)
	require.ErrorIs(t, err, biddingerrors.ErrNotWinner)

	require.Equal(t, bob.ID, recorded.UserID)
	require.Equal(t, model.OrderAuctionWon, recorded.Status)
	require.Equal(t, "Auction item1", recorded.ProductName)
	require.Equal(t, "seller_1", recorded.SellerID)
	require.True(t, recorded.TotalAmount.Equal(decimal.NewFromInt(170)))

	require.Len(t, f.publisher.Messages(messaging.TopicBidPlaced), 2)
	closed := f.publisher.Messages(messaging.TopicAuctionClosed)
	require.Len(t, closed, 1)
	require.Equal(t, bob.ID, closed[0].Event.(messaging.AuctionClosed).WinnerID)
	require.Len(t, f.publisher.Messages(messaging.TopicOrderPlaced), 1)

	_, err = f.service.PlaceBid("item1", alice, 500)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionEnded)
}

func TestBiddingService_OutcomeWithoutBids(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.open(t, f.auction("item1", "150", -time.Minute))

	outcome, result, err := f.service.GetOutcome("item1", alice.ID)
	require.NoError(t, err)
	require.Nil(t, outcome.Winner)
	require.Equal(t, auction.ResultEnded, result)
	require.Len(t, f.publisher.Messages(messaging.TopicAuctionClosed), 1)
	require.Empty(t, f.publisher.Messages(messaging.TopicOrderPlaced))
}

func TestBiddingService_RecordWinFailureIsLogged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.open(t, f.auction("item1", "150", time.Hour))
	_, err := f.service.PlaceBid("item1", alice, 160)
	require.NoError(t, err)

	f.repo.EXPECT().GetProduct("item1").Return(model.Product{}, biddingerrors.ErrItemNotFound)
	f.orders.EXPECT().CreateOrder(gomock.Any()).Return(errors.New("disk full"))

	f.clock.Advance(2 * time.Hour)
	_, result, err := f.service.GetOutcome("item1", alice.ID)
	require.NoError(t, err)
	require.Equal(t, auction.ResultWon, result)
	require.Empty(t, f.publisher.Messages(messaging.TopicOrderPlaced))
}

func TestBiddingService_OpenAllAndRemove(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a1 := f.auction("item1", "10", time.Hour)
	a2 := f.auction("item2", "20", 2*time.Hour)
	f.repo.EXPECT().ListAuctions().Return([]model.Product{a1, a2}, nil)

	require.NoError(t, f.service.OpenAll())
	require.ErrorIs(t, f.service.Open(a1), biddingerrors.ErrAlreadyListed)

	statuses := f.service.ListAuctionStatuses()
	require.Len(t, statuses, 2)
	require.Equal(t, "item1", statuses[0].ProductID)
	require.Equal(t, "item2", statuses[1].ProductID)

	f.service.Remove("item1")
	f.repo.EXPECT().GetProduct("item1").Return(a1, nil)
	_, err := f.service.PlaceBid("item1", alice, 20)
	require.ErrorIs(t, err, biddingerrors.ErrSessionNotFound)

	require.Error(t, f.service.Open(model.Product{ProductID: "plain", Type: model.ProductDigital}))
}

func TestBiddingService_OpenAllRepoError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.repo.EXPECT().ListAuctions().Return(nil, errors.New("db failure"))
	require.Error(t, f.service.OpenAll())
}

func TestBiddingService_ShutdownSuppressesOutcome(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.open(t, f.auction("item1", "150", time.Hour))
	_, err := f.service.PlaceBid("item1", alice, 160)
	require.NoError(t, err)

	f.service.Shutdown()
	f.clock.Advance(2 * time.Hour)

	// no CreateOrder expectation: a delivered outcome would fail the mock
	_, _, err = f.service.GetOutcome("item1", alice.ID)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionOpen)
	require.Empty(t, f.publisher.Messages(messaging.TopicAuctionClosed))
	require.Error(t, f.service.Open(f.auction("item2", "10", time.Hour)))
}

func TestBiddingService_ConcurrentBids(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.open(t, f.auction("item1", "100", time.Hour))

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		amount := float64(100 + i)
		go func() {
			defer wg.Done()
			_, _ = f.service.PlaceBid("item1", alice, amount)
		}()
	}
	wg.Wait()

	bids, err := f.service.GetBidsForItem("item1")
	require.NoError(t, err)
	for i := 1; i < len(bids); i++ {
		require.True(t, bids[i-1].Amount.GreaterThan(bids[i].Amount), "accepted amounts strictly increase")
		require.True(t, bids[i-1].CreatedAt.After(bids[i].CreatedAt), "timestamps strictly increase")
	}
	require.Equal(t, "150.00", bids[0].Amount.StringFixed(2))
}

// Test GetItemsByUser
func TestBiddingService_GetItemsByUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		userID        string
		mockSetup     func(f *fixture)
		expectedItems []string
		expectedError error
	}{
		{
			name:   "user_with_items",
			userID: "user1",
			mockSetup: func(f *fixture) {
				f.repo.EXPECT().GetItemsByUser("user1").Return([]model.Product{{ProductID: "2"}, {ProductID: "5"}}, nil)
			},
			expectedItems: []string{"2", "5"},
		},
		{
			name:   "user_without_bids",
			userID: "user2",
			mockSetup: func(f *fixture) {
				f.repo.EXPECT().GetItemsByUser("user2").Return(nil, biddingerrors.ErrUserNoBids)
			},
			expectedError: biddingerrors.ErrUserNoBids,
		},
		{
			name:          "empty_userID",
			userID:        "",
			mockSetup:     func(f *fixture) {},
			expectedError: biddingerrors.ErrInvalidBid,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tc.mockSetup(f)

			items, err := f.service.GetItemsByUser(tc.userID)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			var ids []string
			for _, p := range items {
				ids = append(ids, p.ProductID)
			}
			require.Equal(t, tc.expectedItems, ids)
		})
	}
}
