package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"auction-storefront/internal/messaging"

	"github.com/stretchr/testify/require"
)

func placeBid(t *testing.T, a *testApp, token, itemID string, amount float64) (map[string]any, int) {
	t.Helper()
	resp, w := a.Do(t, http.MethodPost, "/bids", token, map[string]any{"item_id": itemID, "amount": amount})
	return resp, w.Code
}

func TestRecordBid_Validation(t *testing.T) {
	a := SetupTestApp(t)
	alice := a.Login(t, "alice@example.com", "password123")

	tests := []struct {
		name       string
		token      string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{name: "anonymous", body: map[string]any{"item_id": "2", "amount": 500}, wantStatus: http.StatusUnauthorized},
		{name: "invalid_json", token: alice, body: "{item_id: 'missing quotes', amount: 100}", wantStatus: http.StatusBadRequest},
		{name: "unknown_item", token: alice, body: map[string]any{"item_id": "nope", "amount": 500}, wantStatus: http.StatusNotFound},
		{name: "not_an_auction", token: alice, body: map[string]any{"item_id": "1", "amount": 500}, wantStatus: http.StatusBadRequest, wantMsg: "product is not an auction"},
		{name: "negative_amount", token: alice, body: map[string]any{"item_id": "2", "amount": -5}, wantStatus: http.StatusBadRequest, wantMsg: "invalid bid amount"},
		{name: "below_minimum", token: alice, body: map[string]any{"item_id": "2", "amount": 176}, wantStatus: http.StatusConflict, wantMsg: "bid amount too low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, w := a.Do(t, http.MethodPost, "/bids", tt.token, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, resp)
			if tt.wantMsg != "" {
				require.Equal(t, tt.wantMsg, resp["message"])
			}
		})
	}
}

// Fixture auction 2 already has bids of 160 and 175.50
func TestRecordBid_SeededAuction(t *testing.T) {
	a := SetupTestApp(t)
	alice := a.Login(t, "alice@example.com", "password123")

	resp, code := placeBid(t, a, alice, "2", 176)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, 176.5, resp["minimum_bid"])

	resp, code = placeBid(t, a, alice, "2", 176.5)
	require.Equal(t, http.StatusCreated, code, resp)
	bid := data(resp)
	require.Equal(t, "user_1", bid["user_id"])
	require.Equal(t, "Alice Wonderland", bid["bidder_name"])
	require.Equal(t, 176.5, bid["amount"])
	_, err := time.Parse(time.RFC3339Nano, bid["created_at"].(string))
	require.NoError(t, err)

	resp, w := a.Do(t, http.MethodGet, "/auctions/2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := data(resp)
	require.Equal(t, "open", status["state"])
	require.Equal(t, 176.5, status["current_high_bid"])
	require.Equal(t, 177.5, status["minimum_bid"])
	require.Equal(t, float64(3), status["bid_count"])
	require.Len(t, status["recent_bids"], 3)

	// newest first
	resp, w = a.Do(t, http.MethodGet, "/items/2/bids", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bids := resp["data"].([]any)
	require.Len(t, bids, 3)
	require.Equal(t, 176.5, bids[0].(map[string]any)["amount"])
	require.Equal(t, 160.0, bids[2].(map[string]any)["amount"])

	resp, w = a.Do(t, http.MethodGet, "/items/2/winning", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user_1", data(resp)["user_id"])

	resp, w = a.Do(t, http.MethodGet, "/products/2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 176.5, data(resp)["current_bid"])
	require.Equal(t, "user_1", data(resp)["highest_bidder"])

	resp, w = a.Do(t, http.MethodGet, "/users/user_1/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := resp["data"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, "2", items[0].(map[string]any)["product_id"])

	require.Len(t, a.publisher.Messages(messaging.TopicBidPlaced), 1)
}

func TestRecordBid_RepeatedAmountRejected(t *testing.T) {
	a := SetupTestApp(t)
	alice := a.Login(t, "alice@example.com", "password123")
	itemID := a.ListAuction(t, 150, time.Hour)

	resp, code := placeBid(t, a, alice, itemID, 160)
	require.Equal(t, http.StatusCreated, code, resp)

	resp, code = placeBid(t, a, alice, itemID, 160)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, 161.0, resp["minimum_bid"])
}

func TestRecordBid_LowerSecondBidRejected(t *testing.T) {
	a := SetupTestApp(t)
	alice := a.Login(t, "alice@example.com", "password123")
	itemID := a.ListAuction(t, 150, time.Hour)

	_, code := placeBid(t, a, alice, itemID, 175.5)
	require.Equal(t, http.StatusCreated, code)

	resp, code := placeBid(t, a, alice, itemID, 160)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, 176.5, resp["minimum_bid"])

	resp, w := a.Do(t, http.MethodGet, "/items/"+itemID+"/bids", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"], 1)
}

func TestGetBidsByItem_NoBids(t *testing.T) {
	a := SetupTestApp(t)
	itemID := a.ListAuction(t, 20, time.Hour)

	resp, w := a.Do(t, http.MethodGet, "/items/"+itemID+"/bids", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"])

	_, w = a.Do(t, http.MethodGet, "/items/"+itemID+"/winning", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuctionClose_WinnerAndLoser(t *testing.T) {
	a := SetupTestApp(t)
	alice := a.Login(t, "alice@example.com", "password123")
	bea, beaID := a.Register(t, "Bea Bidder", "bea@example.com")
	itemID := a.ListAuction(t, 150, time.Hour)

	_, code := placeBid(t, a, alice, itemID, 160)
	require.Equal(t, http.StatusCreated, code)
	_, code = placeBid(t, a, bea, itemID, 175.5)
	require.Equal(t, http.StatusCreated, code)

	// not closed yet
	_, w := a.Do(t, http.MethodGet, "/auctions/"+itemID+"/outcome", bea, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	_, w = a.Do(t, http.MethodGet, "/checkout/"+itemID, bea, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	a.clock.Advance(time.Hour + time.Second)

	resp, w := a.Do(t, http.MethodGet, "/auctions/"+itemID+"/outcome", bea, nil)
	require.Equal(t, http.StatusOK, w.Code, resp)
	outcome := data(resp)
	require.Equal(t, "won", outcome["result"])
	require.Equal(t, 175.5, outcome["final_amount"])
	require.Equal(t, float64(2), outcome["bid_count"])
	require.Equal(t, beaID, outcome["winner"].(map[string]any)["user_id"])

	resp, w = a.Do(t, http.MethodGet, "/auctions/"+itemID+"/outcome", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ended", data(resp)["result"])

	resp, w = a.Do(t, http.MethodGet, "/auctions/"+itemID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "closed", data(resp)["state"])
	require.Equal(t, "00:00:00", data(resp)["time_left"])

	// bids after closure are refused and change nothing
	_, code = placeBid(t, a, alice, itemID, 500)
	require.Equal(t, http.StatusConflict, code)
	resp, _ = a.Do(t, http.MethodGet, "/items/"+itemID+"/bids", "", nil)
	require.Len(t, resp["data"], 2)

	closed := a.publisher.Messages(messaging.TopicAuctionClosed)
	require.Len(t, closed, 1)
	event := closed[0].Event.(messaging.AuctionClosed)
	require.Equal(t, beaID, event.WinnerID)
	require.Equal(t, 175.5, event.FinalAmount)

	// only the winner can check out, and only once
	_, w = a.Do(t, http.MethodGet, "/checkout/"+itemID, alice, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	resp, w = a.Do(t, http.MethodGet, "/checkout/"+itemID, bea, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 175.5, data(resp)["total_amount"])

	resp, w = a.Do(t, http.MethodPost, "/checkout/"+itemID, bea, nil)
	require.Equal(t, http.StatusCreated, w.Code, resp)
	require.Equal(t, 175.5, data(resp)["total_amount"])

	_, w = a.Do(t, http.MethodPost, "/checkout/"+itemID, bea, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	resp, w = a.Do(t, http.MethodGet, "/account/orders", bea, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := resp["data"].([]any)
	require.Len(t, orders, 2)
	require.Equal(t, "Order Placed", orders[0].(map[string]any)["status"])
	require.Equal(t, "Auction Won", orders[1].(map[string]any)["status"])
}

func TestAuctionClose_NoBids(t *testing.T) {
	a := SetupTestApp(t)
	alice := a.Login(t, "alice@example.com", "password123")
	itemID := a.ListAuction(t, 150, time.Minute)

	a.clock.Advance(2 * time.Minute)

	resp, w := a.Do(t, http.MethodGet, "/auctions/"+itemID+"/outcome", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	outcome := data(resp)
	require.Equal(t, "ended", outcome["result"])
	require.Equal(t, 150.0, outcome["final_amount"])
	require.NotContains(t, outcome, "winner")
}
