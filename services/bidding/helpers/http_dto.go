package helpers

import (
	"auction-storefront/internal/auction"
	"auction-storefront/services/common"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	ItemID string  `json:"item_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

type AuctionStatusResponse struct {
	ProductID      string               `json:"product_id"`
	State          string               `json:"state"`
	Deadline       *string              `json:"deadline,omitempty"`
	TimeLeft       string               `json:"time_left"`
	Remaining      auction.Remaining    `json:"remaining"`
	StartingPrice  float64              `json:"starting_price"`
	CurrentHighBid float64              `json:"current_high_bid"`
	MinimumBid     float64              `json:"minimum_bid"`
	BidCount       int                  `json:"bid_count"`
	RecentBids     []common.BidResponse `json:"recent_bids"`
}

type OutcomeResponse struct {
	ProductID   string              `json:"product_id"`
	Result      auction.Result      `json:"result"`
	Winner      *common.BidResponse `json:"winner,omitempty"`
	FinalAmount float64             `json:"final_amount"`
	BidCount    int                 `json:"bid_count"`
	ClosedAt    string              `json:"closed_at"`
}

func NewAuctionStatusResponse(s auction.Snapshot) AuctionStatusResponse {
	resp := AuctionStatusResponse{
		ProductID:      s.ProductID,
		State:          s.State.String(),
		TimeLeft:       s.Remaining.String(),
		Remaining:      s.Remaining,
		StartingPrice:  s.StartingPrice.InexactFloat64(),
		CurrentHighBid: s.CurrentHighBid.InexactFloat64(),
		MinimumBid:     s.MinimumBid.InexactFloat64(),
		BidCount:       s.BidCount,
		RecentBids:     common.NewBidResponses(s.RecentBids),
	}
	if s.Deadline != nil {
		d := common.FormatTime(*s.Deadline)
		resp.Deadline = &d
	}
	return resp
}

func NewOutcomeResponse(o auction.Outcome, result auction.Result) OutcomeResponse {
	resp := OutcomeResponse{
		ProductID:   o.ProductID,
		Result:      result,
		FinalAmount: o.FinalAmount.InexactFloat64(),
		BidCount:    len(o.Bids),
		ClosedAt:    common.FormatTime(o.ClosedAt),
	}
	if o.Winner != nil {
		w := common.NewBidResponse(*o.Winner)
		resp.Winner = &w
	}
	return resp
}
