package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role gates the seller and admin dashboards
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// UserStatus is managed from the admin users table
type UserStatus string

const (
	UserActive    UserStatus = "Active"
	UserSuspended UserStatus = "Suspended"
	UserPending   UserStatus = "Pending Approval"
)

// User represents a storefront account
type User struct {
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	PasswordHash string     `json:"-"`
	JoinedAt     time.Time  `json:"joined_at"`
}

// ProductType distinguishes regular, downloadable and auctioned products
type ProductType string

const (
	ProductPhysical ProductType = "physical"
	ProductDigital  ProductType = "digital"
	ProductAuction  ProductType = "auction"
)

// CustomizationChoice is one selectable value of a CustomizationOption
type CustomizationChoice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CustomizationOption describes a per-order product option (size, colour, engraving...)
type CustomizationOption struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Type         string                `json:"type"` // select | text | radio
	Choices      []CustomizationChoice `json:"choices,omitempty"`
	Placeholder  string                `json:"placeholder,omitempty"`
	DefaultValue string                `json:"default_value,omitempty"`
}

// Product is a catalog entry. For auctions Price is the starting price and
// CurrentBid/Bids are owned by the product's auction session.
type Product struct {
	ProductID            string                `json:"product_id"`
	Name                 string                `json:"name"`
	Description          string                `json:"description"`
	Price                decimal.Decimal       `json:"price"`
	Images               []string              `json:"images"`
	Category             string                `json:"category"`
	Type                 ProductType           `json:"type"`
	SellerID             string                `json:"seller_id,omitempty"`
	Stock                int                   `json:"stock,omitempty"`
	ModelURL             string                `json:"model_url,omitempty"`
	CustomizationOptions []CustomizationOption `json:"customization_options,omitempty"`
	DigitalFileURL       string                `json:"digital_file_url,omitempty"`
	IsFeatured           bool                  `json:"is_featured"`
	DataAIHint           string                `json:"data_ai_hint,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`

	AuctionEndDate *time.Time      `json:"auction_end_date,omitempty"`
	CurrentBid     decimal.Decimal `json:"current_bid"`
	HighestBidder  string          `json:"highest_bidder,omitempty"`
	Bids           []Bid           `json:"bids,omitempty"`
}

// IsAuction reports whether the product is sold through bidding
func (p Product) IsAuction() bool {
	return p.Type == ProductAuction
}

// DisplayPrice is the price shown in listings: the current bid for auctions
func (p Product) DisplayPrice() decimal.Decimal {
	if p.IsAuction() && p.CurrentBid.GreaterThan(p.Price) {
		return p.CurrentBid
	}
	return p.Price
}

// Clone returns a copy that shares no slices with p
func (p Product) Clone() Product {
	c := p
	c.Images = append([]string(nil), p.Images...)
	c.CustomizationOptions = append([]CustomizationOption(nil), p.CustomizationOptions...)
	c.Bids = append([]Bid(nil), p.Bids...)
	if p.AuctionEndDate != nil {
		end := *p.AuctionEndDate
		c.AuctionEndDate = &end
	}
	return c
}

// Bid represents a user's bid on an auction product
type Bid struct {
	BidID      string          `json:"bid_id"`
	ItemID     string          `json:"item_id"`
	UserID     string          `json:"user_id"`
	BidderName string          `json:"bidder_name"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderStatus tracks an order from placement to delivery
type OrderStatus string

const (
	OrderPlaced     OrderStatus = "Order Placed"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderAuctionWon OrderStatus = "Auction Won"
)

// Order is a purchase placed through checkout or won at auction
type Order struct {
	OrderID                string            `json:"order_id"`
	UserID                 string            `json:"user_id"`
	ProductID              string            `json:"product_id"`
	ProductName            string            `json:"product_name"`
	SellerID               string            `json:"seller_id,omitempty"`
	Quantity               int               `json:"quantity"`
	Status                 OrderStatus       `json:"status"`
	TotalAmount            decimal.Decimal   `json:"total_amount"`
	Customizations         map[string]string `json:"customizations,omitempty"`
	IsDigitalDownloadReady bool              `json:"is_digital_download_ready"`
	DigitalFileURL         string            `json:"digital_file_url,omitempty"`
	PurchasedAt            time.Time         `json:"purchased_at"`
}

// CartItem is one line in a user's cart
type CartItem struct {
	ItemID         string            `json:"item_id"`
	ProductID      string            `json:"product_id"`
	Name           string            `json:"name"`
	Quantity       int               `json:"quantity"`
	Customizations map[string]string `json:"customizations,omitempty"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
}

// SellerRequestStatus is the review state of a seller application
type SellerRequestStatus string

const (
	RequestPending  SellerRequestStatus = "Pending"
	RequestApproved SellerRequestStatus = "Approved"
	RequestDenied   SellerRequestStatus = "Denied"
)

// SellerRequest is a customer's application to sell on the storefront
type SellerRequest struct {
	RequestID   string              `json:"request_id"`
	UserID      string              `json:"user_id"`
	Reason      string              `json:"reason"`
	Status      SellerRequestStatus `json:"status"`
	RequestedAt time.Time           `json:"requested_at"`
	DecidedAt   *time.Time          `json:"decided_at,omitempty"`
}
