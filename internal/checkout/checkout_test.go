package checkout

import (
	"testing"
	"time"

	"auction-storefront/internal/auction"
	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/cart"
	"auction-storefront/internal/fixtures"
	"auction-storefront/internal/kvstore"
	"auction-storefront/internal/messaging"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// stubSettler settles every auction to one winner
type stubSettler struct {
	winner string
	amount decimal.Decimal
	err    error
}

func (s stubSettler) Settlement(itemID, userID string) (auction.Settlement, error) {
	if s.err != nil {
		return auction.Settlement{}, s.err
	}
	if userID != s.winner {
		return auction.Settlement{}, biddingerrors.ErrNotWinner
	}
	return auction.Settlement{ProductID: itemID, AmountDue: s.amount, IsWinner: true}, nil
}

type env struct {
	service   *Service
	repo      *repository.MemoryRepo
	carts     *cart.Service
	publisher *messaging.RecordingPublisher
}

func newEnv(t *testing.T, settler Settler) *env {
	t.Helper()
	repo := repository.NewMemoryRepo()
	repo.Seed(repository.Fixtures{Products: fixtures.Products(time.Now())})
	carts := cart.NewService(kvstore.NewMemoryStore(), repo)
	pub := &messaging.RecordingPublisher{}
	return &env{
		service:   NewService(repo, repo, carts, settler, pub),
		repo:      repo,
		carts:     carts,
		publisher: pub,
	}
}

func TestService_Quote(t *testing.T) {
	t.Parallel()

	e := newEnv(t, stubSettler{winner: "user_1", amount: decimal.RequireFromString("175.50")})

	tests := []struct {
		name          string
		userID        string
		productID     string
		quantity      int
		expectedTotal string
		expectedError error
	}{
		{name: "physical", userID: "user_1", productID: "1", quantity: 2, expectedTotal: "51.98"},
		{name: "default_quantity", userID: "user_1", productID: "3", quantity: 0, expectedTotal: "19.99"},
		{name: "auction_winner_pays_winning_bid", userID: "user_1", productID: "2", quantity: 5, expectedTotal: "175.50"},
		{name: "auction_loser", userID: "user_2", productID: "2", quantity: 1, expectedError: biddingerrors.ErrNotWinner},
		{name: "anonymous", userID: "", productID: "1", quantity: 1, expectedError: biddingerrors.ErrUnauthorized},
		{name: "unknown_product", userID: "user_1", productID: "99", quantity: 1, expectedError: biddingerrors.ErrItemNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q, err := e.service.Quote(tc.userID, tc.productID, tc.quantity)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedTotal, q.TotalAmount.StringFixed(2))
		})
	}
}

func TestService_QuoteOpenAuction(t *testing.T) {
	t.Parallel()

	e := newEnv(t, stubSettler{err: biddingerrors.ErrAuctionOpen})
	_, err := e.service.Quote("user_1", "2", 1)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionOpen)
}

func TestService_PlaceOrder(t *testing.T) {
	t.Parallel()

	e := newEnv(t, stubSettler{winner: "user_1", amount: decimal.RequireFromString("175.50")})

	order, err := e.service.PlaceOrder("user_1", "1", 2, map[string]string{"size": "l"})
	require.NoError(t, err)
	require.Equal(t, models.OrderPlaced, order.Status)
	require.Equal(t, "51.98", order.TotalAmount.StringFixed(2))
	require.Equal(t, "l", order.Customizations["size"])

	p, err := e.repo.GetProduct("1")
	require.NoError(t, err)
	require.Equal(t, 118, p.Stock, "physical stock is taken")

	digital, err := e.service.PlaceOrder("user_1", "3", 1, nil)
	require.NoError(t, err)
	require.True(t, digital.IsDigitalDownloadReady)
	require.Equal(t, "/api/download/pro-photography-ebook.pdf", digital.DigitalFileURL)

	won, err := e.service.PlaceOrder("user_1", "2", 1, nil)
	require.NoError(t, err)
	require.Equal(t, "175.50", won.TotalAmount.StringFixed(2))

	_, err = e.service.PlaceOrder("user_1", "2", 1, nil)
	require.ErrorIs(t, err, biddingerrors.ErrAlreadyPaid)

	_, err = e.service.PlaceOrder("user_1", "4", 500, nil)
	require.ErrorIs(t, err, biddingerrors.ErrOutOfStock)

	orders, err := e.service.Orders("user_1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.Equal(t, won.OrderID, orders[0].OrderID)
	require.Len(t, e.publisher.Messages(messaging.TopicOrderPlaced), 3)
}

func TestService_CheckoutCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t, stubSettler{})

	_, err := e.service.CheckoutCart("user_1")
	require.ErrorIs(t, err, biddingerrors.ErrCartEmpty)

	_, err = e.carts.Add("user_1", "1", 2, map[string]string{"color": "red"})
	require.NoError(t, err)
	_, err = e.carts.Add("user_1", "6", 1, nil)
	require.NoError(t, err)

	orders, err := e.service.CheckoutCart("user_1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "51.98", orders[0].TotalAmount.StringFixed(2))
	require.Equal(t, "9.99", orders[1].TotalAmount.StringFixed(2))

	c, err := e.carts.Get("user_1")
	require.NoError(t, err)
	require.Empty(t, c.Items, "cart is cleared")

	_, err = e.service.CheckoutCart("")
	require.ErrorIs(t, err, biddingerrors.ErrUnauthorized)
}

func TestService_CheckoutCartChargesCurrentPrice(t *testing.T) {
	t.Parallel()

	e := newEnv(t, stubSettler{})
	_, err := e.carts.Add("user_1", "1", 2, nil)
	require.NoError(t, err)

	p, err := e.repo.GetProduct("1")
	require.NoError(t, err)
	p.Price = decimal.RequireFromString("21.50")
	require.NoError(t, e.repo.SaveProduct(p))

	orders, err := e.service.CheckoutCart("user_1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "43.00", orders[0].TotalAmount.StringFixed(2))
}

func TestService_CheckoutCartStockCheckedFirst(t *testing.T) {
	t.Parallel()

	e := newEnv(t, stubSettler{})
	_, err := e.carts.Add("user_1", "6", 1, nil)
	require.NoError(t, err)
	_, err = e.carts.Add("user_1", "4", 36, nil)
	require.NoError(t, err)

	_, err = e.service.CheckoutCart("user_1")
	require.ErrorIs(t, err, biddingerrors.ErrOutOfStock)

	orders, err := e.service.Orders("user_1")
	require.NoError(t, err)
	require.Empty(t, orders, "nothing is placed when a line fails")
}
