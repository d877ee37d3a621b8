// Package fixtures holds the demo catalog, accounts and orders the
// storefront is seeded with at startup.
package fixtures

import (
	"fmt"
	"time"

	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Demo account IDs
const (
	CustomerID = "user_1"
	AdminID    = "user_2"
	SellerID   = "user_3"
)

type account struct {
	user     models.User
	password string
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

var tShirtOptions = []models.CustomizationOption{
	{
		ID:   "color",
		Name: "Color",
		Type: "select",
		Choices: []models.CustomizationChoice{
			{Label: "Red", Value: "red"},
			{Label: "Blue", Value: "blue"},
			{Label: "Black", Value: "black"},
			{Label: "White", Value: "white"},
		},
		DefaultValue: "black",
	},
	{
		ID:   "size",
		Name: "Size",
		Type: "radio",
		Choices: []models.CustomizationChoice{
			{Label: "Small", Value: "s"},
			{Label: "Medium", Value: "m"},
			{Label: "Large", Value: "l"},
			{Label: "X-Large", Value: "xl"},
		},
		DefaultValue: "m",
	},
	{
		ID:          "customText",
		Name:        "Custom Text (Optional)",
		Type:        "text",
		Placeholder: "Enter up to 20 characters",
	},
}

// Products returns the demo catalog relative to now. Products 2 and 5 are
// auctions ending in seven and three days.
func Products(now time.Time) []models.Product {
	watchEnd := now.Add(day(7))
	mugsEnd := now.Add(day(3))

	return []models.Product{
		{
			ProductID:            "1",
			Name:                 "Classic Cotton T-Shirt",
			Description:          "A comfortable and stylish classic t-shirt made from premium cotton. Perfect for everyday wear, available in various sizes and colors.",
			Price:                price("25.99"),
			Images:               []string{"https://placehold.co/600x400.png?text=T-Shirt+Front", "https://placehold.co/600x400.png?text=T-Shirt+Back", "https://placehold.co/600x400.png?text=T-Shirt+Detail"},
			Category:             "Apparel",
			Type:                 models.ProductPhysical,
			SellerID:             SellerID,
			Stock:                120,
			IsFeatured:           true,
			CustomizationOptions: tShirtOptions,
			DataAIHint:           "tshirt apparel",
			CreatedAt:            now.Add(-day(30)),
		},
		{
			ProductID:      "2",
			Name:           "Vintage Leather Watch (Auction)",
			Description:    "An elegant vintage leather watch with a timeless design. Features a stainless steel case and genuine leather strap. Bid now to win this classic timepiece!",
			Price:          price("150"),
			Images:         []string{"https://placehold.co/600x400.png?text=Watch+Face", "https://placehold.co/600x400.png?text=Watch+Strap"},
			Category:       "Accessories",
			Type:           models.ProductAuction,
			SellerID:       SellerID,
			Stock:          1,
			IsFeatured:     true,
			DataAIHint:     "watch accessory",
			CreatedAt:      now.Add(-day(10)),
			AuctionEndDate: &watchEnd,
			CurrentBid:     price("175.50"),
			HighestBidder:  "user456",
			Bids: []models.Bid{
				{BidID: "b1", ItemID: "2", UserID: "user123", BidderName: "Bidder Alpha", Amount: price("160"), CreatedAt: now.Add(-2 * time.Hour)},
				{BidID: "b2", ItemID: "2", UserID: "user456", BidderName: "Bidder Bravo", Amount: price("175.50"), CreatedAt: now.Add(-1 * time.Hour)},
			},
		},
		{
			ProductID:      "3",
			Name:           "Pro Photography Masterclass eBook",
			Description:    "Learn professional photography techniques with this comprehensive eBook. Covers everything from camera basics to advanced lighting and composition. Instant download after purchase.",
			Price:          price("19.99"),
			Images:         []string{"https://placehold.co/600x400.png?text=eBook+Cover"},
			Category:       "Digital Goods",
			Type:           models.ProductDigital,
			SellerID:       SellerID,
			DigitalFileURL: "/api/download/pro-photography-ebook.pdf",
			IsFeatured:     true,
			DataAIHint:     "ebook book",
			CreatedAt:      now.Add(-day(20)),
		},
		{
			ProductID:   "4",
			Name:        "Wireless Noise-Cancelling Headphones",
			Description: "Immerse yourself in sound with these premium wireless noise-cancelling headphones. Long battery life and superior comfort.",
			Price:       price("199.99"),
			Images:      []string{"https://placehold.co/600x400.png?text=Headphones+Main", "https://placehold.co/600x400.png?text=Headphones+Side"},
			Category:    "Electronics",
			Type:        models.ProductPhysical,
			SellerID:    SellerID,
			Stock:       35,
			ModelURL:    "https://modelviewer.dev/shared-assets/models/Astronaut.glb",
			DataAIHint:  "headphones electronics",
			CreatedAt:   now.Add(-day(15)),
		},
		{
			ProductID:      "5",
			Name:           "Handcrafted Ceramic Mug Set (Auction)",
			Description:    "A beautiful set of four handcrafted ceramic mugs. Each mug is unique with a rustic glaze. Perfect for your morning coffee or tea. Auction ends soon!",
			Price:          price("30"),
			Images:         []string{"https://placehold.co/600x400.png?text=Mug+Set", "https://placehold.co/600x400.png?text=Single+Mug"},
			Category:       "Home Goods",
			Type:           models.ProductAuction,
			SellerID:       SellerID,
			Stock:          1,
			DataAIHint:     "mug set kitchen",
			CreatedAt:      now.Add(-day(5)),
			AuctionEndDate: &mugsEnd,
			CurrentBid:     price("45"),
			HighestBidder:  "user789",
			Bids: []models.Bid{
				{BidID: "b3", ItemID: "5", UserID: "user789", BidderName: "Bidder Charlie", Amount: price("45"), CreatedAt: now.Add(-30 * time.Minute)},
			},
		},
		{
			ProductID:      "6",
			Name:           "Ultimate Productivity Planner (Digital)",
			Description:    "Boost your productivity with this feature-packed digital planner. Includes daily, weekly, and monthly views, goal tracking, and more. Compatible with popular note-taking apps.",
			Price:          price("9.99"),
			Images:         []string{"https://placehold.co/600x400.png?text=Planner+Cover"},
			Category:       "Digital Goods",
			Type:           models.ProductDigital,
			SellerID:       SellerID,
			DigitalFileURL: "/api/download/productivity-planner.zip",
			DataAIHint:     "planner digital",
			CreatedAt:      now.Add(-day(2)),
		},
	}
}

func accounts(now time.Time) []account {
	return []account{
		{user: models.User{UserID: CustomerID, Name: "Alice Wonderland", Email: "alice@example.com", Role: models.RoleCustomer, Status: models.UserActive, JoinedAt: now.Add(-day(300))}, password: "password123"},
		{user: models.User{UserID: AdminID, Name: "Bob The Admin", Email: "admin@example.com", Role: models.RoleAdmin, Status: models.UserActive, JoinedAt: now.Add(-day(400))}, password: "adminpass"},
		{user: models.User{UserID: SellerID, Name: "Charlie Seller", Email: "seller@example.com", Role: models.RoleSeller, Status: models.UserActive, JoinedAt: now.Add(-day(250))}, password: "sellerpass"},
		// applicants; they have no password and cannot sign in
		{user: models.User{UserID: "user_4", Name: "Diana Prince", Email: "diana@example.com", Role: models.RoleCustomer, Status: models.UserPending, JoinedAt: now.Add(-day(60))}},
		{user: models.User{UserID: "user_5", Name: "Clark Kent", Email: "clark@example.com", Role: models.RoleCustomer, Status: models.UserPending, JoinedAt: now.Add(-day(55))}},
		{user: models.User{UserID: "user_6", Name: "Bruce Wayne", Email: "bruce@example.com", Role: models.RoleSeller, Status: models.UserActive, JoinedAt: now.Add(-day(75))}},
	}
}

// SellerRequests returns the demo seller applications
func SellerRequests(now time.Time) []models.SellerRequest {
	decided := now.Add(-day(70))
	return []models.SellerRequest{
		{RequestID: "req_1", UserID: "user_4", Reason: "Wants to sell handmade jewelry.", Status: models.RequestPending, RequestedAt: now.Add(-day(60))},
		{RequestID: "req_2", UserID: "user_5", Reason: "Looking to sell vintage collectibles.", Status: models.RequestPending, RequestedAt: now.Add(-day(55))},
		{RequestID: "req_3", UserID: "user_6", Reason: "Tech gadgets and accessories.", Status: models.RequestApproved, RequestedAt: now.Add(-day(75)), DecidedAt: &decided},
	}
}

// Orders returns Alice's demo order history
func Orders(now time.Time) []models.Order {
	return []models.Order{
		{
			OrderID:        "order1",
			UserID:         CustomerID,
			ProductID:      "1",
			ProductName:    "Classic Cotton T-Shirt",
			SellerID:       SellerID,
			Quantity:       1,
			Status:         models.OrderDelivered,
			TotalAmount:    price("25.99"),
			Customizations: map[string]string{"color": "blue", "size": "m"},
			PurchasedAt:    now.Add(-day(5)),
		},
		{
			OrderID:                "order2",
			UserID:                 CustomerID,
			ProductID:              "3",
			ProductName:            "Pro Photography Masterclass eBook",
			SellerID:               SellerID,
			Quantity:               1,
			Status:                 models.OrderPlaced,
			TotalAmount:            price("19.99"),
			IsDigitalDownloadReady: true,
			DigitalFileURL:         "/api/download/pro-photography-ebook.pdf",
			PurchasedAt:            now.Add(-day(2)),
		},
		{
			OrderID:     "order3",
			UserID:      CustomerID,
			ProductID:   "5",
			ProductName: "Handcrafted Ceramic Mug Set (Auction)",
			SellerID:    SellerID,
			Quantity:    1,
			Status:      models.OrderAuctionWon,
			TotalAmount: price("45"),
			PurchasedAt: now,
		},
	}
}

// Build assembles the full fixture set. Passwords are hashed with cost;
// tests pass bcrypt.MinCost.
func Build(now time.Time, cost int) (repository.Fixtures, error) {
	accts := accounts(now)
	users := make([]models.User, 0, len(accts))
	for _, a := range accts {
		u := a.user
		if a.password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(a.password), cost)
			if err != nil {
				return repository.Fixtures{}, fmt.Errorf("fixtures: hash password for %s: %w", u.Email, err)
			}
			u.PasswordHash = string(hash)
		}
		users = append(users, u)
	}

	return repository.Fixtures{
		Products:       Products(now),
		Users:          users,
		Orders:         Orders(now),
		SellerRequests: SellerRequests(now),
	}, nil
}
