package common

import (
	"time"

	"auction-storefront/internal/models"
)

// BidResponse is the wire form of a bid. Timestamps keep sub-second
// precision so that bid order is visible to clients.
type BidResponse struct {
	BidID      string  `json:"bid_id"`
	ItemID     string  `json:"item_id"`
	UserID     string  `json:"user_id"`
	BidderName string  `json:"bidder_name"`
	Amount     float64 `json:"amount"`
	CreatedAt  string  `json:"created_at"`
}

// ProductResponse is the wire form of a catalog product
type ProductResponse struct {
	ProductID            string                       `json:"product_id"`
	Name                 string                       `json:"name"`
	Description          string                       `json:"description"`
	Price                float64                      `json:"price"`
	DisplayPrice         float64                      `json:"display_price"`
	Images               []string                     `json:"images"`
	Category             string                       `json:"category"`
	Type                 models.ProductType           `json:"type"`
	SellerID             string                       `json:"seller_id,omitempty"`
	Stock                int                          `json:"stock"`
	ModelURL             string                       `json:"model_url,omitempty"`
	CustomizationOptions []models.CustomizationOption `json:"customization_options,omitempty"`
	IsFeatured           bool                         `json:"is_featured"`
	DataAIHint           string                       `json:"data_ai_hint,omitempty"`
	CreatedAt            string                       `json:"created_at"`
	AuctionEndDate       *string                      `json:"auction_end_date,omitempty"`
	CurrentBid           *float64                     `json:"current_bid,omitempty"`
	HighestBidder        string                       `json:"highest_bidder,omitempty"`
	Bids                 []BidResponse                `json:"bids,omitempty"`
}

// FormatTime renders t in UTC with nanosecond precision
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func NewBidResponse(bid models.Bid) BidResponse {
	return BidResponse{
		BidID:      bid.BidID,
		ItemID:     bid.ItemID,
		UserID:     bid.UserID,
		BidderName: bid.BidderName,
		Amount:     bid.Amount.InexactFloat64(),
		CreatedAt:  FormatTime(bid.CreatedAt),
	}
}

func NewBidResponses(bids []models.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, NewBidResponse(b))
	}
	return out
}

// NewProductResponse converts a product; the digital file URL is only
// handed out through orders.
func NewProductResponse(p models.Product) ProductResponse {
	resp := ProductResponse{
		ProductID:            p.ProductID,
		Name:                 p.Name,
		Description:          p.Description,
		Price:                p.Price.InexactFloat64(),
		DisplayPrice:         p.DisplayPrice().InexactFloat64(),
		Images:               p.Images,
		Category:             p.Category,
		Type:                 p.Type,
		SellerID:             p.SellerID,
		Stock:                p.Stock,
		ModelURL:             p.ModelURL,
		CustomizationOptions: p.CustomizationOptions,
		IsFeatured:           p.IsFeatured,
		DataAIHint:           p.DataAIHint,
		CreatedAt:            FormatTime(p.CreatedAt),
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if p.IsAuction() {
		if p.AuctionEndDate != nil {
			end := FormatTime(*p.AuctionEndDate)
			resp.AuctionEndDate = &end
		}
		current := p.CurrentBid.InexactFloat64()
		resp.CurrentBid = &current
		resp.HighestBidder = p.HighestBidder
		resp.Bids = NewBidResponses(p.Bids)
	}
	return resp
}

func NewProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}
