package helpers

import (
	"time"

	"auction-storefront/internal/cart"
	"auction-storefront/internal/checkout"
	"auction-storefront/internal/dashboard"
	"auction-storefront/internal/identity"
	"auction-storefront/internal/models"
	"auction-storefront/services/common"

	"github.com/shopspring/decimal"
)

// Request DTOs
type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AddCartItemRequest struct {
	ProductID      string            `json:"product_id" binding:"required"`
	Quantity       int               `json:"quantity"`
	Customizations map[string]string `json:"customizations"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type PlaceOrderRequest struct {
	Quantity       int               `json:"quantity" binding:"gte=0"`
	Customizations map[string]string `json:"customizations"`
}

type ProductRequest struct {
	Name           string             `json:"name" binding:"required"`
	Description    string             `json:"description" binding:"required"`
	Price          float64            `json:"price" binding:"required"`
	Category       string             `json:"category" binding:"required"`
	Type           models.ProductType `json:"type" binding:"required"`
	Stock          int                `json:"stock"`
	ImageURL       string             `json:"image_url" binding:"required"`
	DigitalFileURL string             `json:"digital_file_url"`
	AuctionEndDate *time.Time         `json:"auction_end_date"`
}

type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

type SetStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required"`
}

type SellerApplicationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type DecisionRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ToInput converts the listing form to the dashboard input
func (r ProductRequest) ToInput() dashboard.ProductInput {
	return dashboard.ProductInput{
		Name:           r.Name,
		Description:    r.Description,
		Price:          decimal.NewFromFloat(r.Price),
		Category:       r.Category,
		Type:           r.Type,
		Stock:          r.Stock,
		ImageURL:       r.ImageURL,
		DigitalFileURL: r.DigitalFileURL,
		AuctionEndDate: r.AuctionEndDate,
	}
}

// Response DTOs
type SessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      models.User `json:"user"`
}

type CartItemResponse struct {
	ItemID         string            `json:"item_id"`
	ProductID      string            `json:"product_id"`
	Name           string            `json:"name"`
	Quantity       int               `json:"quantity"`
	Customizations map[string]string `json:"customizations,omitempty"`
	UnitPrice      float64           `json:"unit_price"`
	TotalPrice     float64           `json:"total_price"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice float64            `json:"total_price"`
}

type QuoteResponse struct {
	ProductID   string             `json:"product_id"`
	ProductName string             `json:"product_name"`
	Type        models.ProductType `json:"type"`
	Quantity    int                `json:"quantity"`
	UnitPrice   float64            `json:"unit_price"`
	TotalAmount float64            `json:"total_amount"`
	IsAuction   bool               `json:"is_auction"`
}

type OrderResponse struct {
	OrderID                string             `json:"order_id"`
	ProductID              string             `json:"product_id"`
	ProductName            string             `json:"product_name"`
	Quantity               int                `json:"quantity"`
	Status                 models.OrderStatus `json:"status"`
	TotalAmount            float64            `json:"total_amount"`
	Customizations         map[string]string  `json:"customizations,omitempty"`
	IsDigitalDownloadReady bool               `json:"is_digital_download_ready"`
	DigitalFileURL         string             `json:"digital_file_url,omitempty"`
	PurchasedAt            string             `json:"purchased_at"`
}

type ProductRevenueResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Revenue     float64 `json:"revenue"`
	Units       int     `json:"units"`
}

type SalesReportResponse struct {
	TotalRevenue   float64                  `json:"total_revenue"`
	TotalOrders    int                      `json:"total_orders"`
	ItemsSold      int                      `json:"items_sold"`
	ActiveListings int                      `json:"active_listings"`
	OutOfStock     int                      `json:"out_of_stock"`
	OpenAuctions   int                      `json:"open_auctions"`
	TopProducts    []ProductRevenueResponse `json:"top_products"`
}

type SiteReportResponse struct {
	SalesReportResponse
	UsersByRole           map[models.Role]int        `json:"users_by_role"`
	ActiveUsers           int                        `json:"active_users"`
	ProductsByType        map[models.ProductType]int `json:"products_by_type"`
	PendingSellerRequests int                        `json:"pending_seller_requests"`
}

func NewSessionResponse(s identity.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: common.FormatTime(s.ExpiresAt),
		User:      s.User,
	}
}

func NewCartResponse(c cart.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemResponse{
			ItemID:         it.ItemID,
			ProductID:      it.ProductID,
			Name:           it.Name,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
			UnitPrice:      it.UnitPrice.InexactFloat64(),
			TotalPrice:     it.TotalPrice.InexactFloat64(),
		})
	}
	return CartResponse{
		Items:      items,
		TotalItems: c.TotalItems,
		TotalPrice: c.TotalPrice.InexactFloat64(),
	}
}

func NewQuoteResponse(q checkout.Quote) QuoteResponse {
	return QuoteResponse{
		ProductID:   q.ProductID,
		ProductName: q.ProductName,
		Type:        q.Type,
		Quantity:    q.Quantity,
		UnitPrice:   q.UnitPrice.InexactFloat64(),
		TotalAmount: q.TotalAmount.InexactFloat64(),
		IsAuction:   q.IsAuction,
	}
}

func NewOrderResponse(o models.Order) OrderResponse {
	return OrderResponse{
		OrderID:                o.OrderID,
		ProductID:              o.ProductID,
		ProductName:            o.ProductName,
		Quantity:               o.Quantity,
		Status:                 o.Status,
		TotalAmount:            o.TotalAmount.InexactFloat64(),
		Customizations:         o.Customizations,
		IsDigitalDownloadReady: o.IsDigitalDownloadReady,
		DigitalFileURL:         o.DigitalFileURL,
		PurchasedAt:            common.FormatTime(o.PurchasedAt),
	}
}

func NewOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}

func NewSalesReportResponse(r dashboard.SalesReport) SalesReportResponse {
	top := make([]ProductRevenueResponse, 0, len(r.TopProducts))
	for _, p := range r.TopProducts {
		top = append(top, ProductRevenueResponse{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Revenue:     p.Revenue.InexactFloat64(),
			Units:       p.Units,
		})
	}
	return SalesReportResponse{
		TotalRevenue:   r.TotalRevenue.InexactFloat64(),
		TotalOrders:    r.TotalOrders,
		ItemsSold:      r.ItemsSold,
		ActiveListings: r.ActiveListings,
		OutOfStock:     r.OutOfStock,
		OpenAuctions:   r.OpenAuctions,
		TopProducts:    top,
	}
}

func NewSiteReportResponse(r dashboard.SiteReport) SiteReportResponse {
	return SiteReportResponse{
		SalesReportResponse:   NewSalesReportResponse(r.SalesReport),
		UsersByRole:           r.UsersByRole,
		ActiveUsers:           r.ActiveUsers,
		ProductsByType:        r.ProductsByType,
		PendingSellerRequests: r.PendingSellerRequests,
	}
}
