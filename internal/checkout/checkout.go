package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-storefront/internal/auction"
	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/cart"
	"auction-storefront/internal/messaging"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"
	"auction-storefront/utils"

	"github.com/shopspring/decimal"
)

// Settler reports what the winner of a closed auction owes
type Settler interface {
	Settlement(itemID, userID string) (auction.Settlement, error)
}

// Carts is the part of the cart service checkout needs
type Carts interface {
	Get(userID string) (cart.Cart, error)
	Clear(userID string) error
}

// Quote is the price of buying one product right now
type Quote struct {
	ProductID   string             `json:"product_id"`
	ProductName string             `json:"product_name"`
	Type        models.ProductType `json:"type"`
	Quantity    int                `json:"quantity"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	IsAuction   bool               `json:"is_auction"`
}

// Service places orders for single products and whole carts. Payment is
// out of scope: placing an order records it as paid.
type Service struct {
	products  repository.CatalogDB
	orders    repository.OrderDB
	carts     Carts
	auctions  Settler
	publisher messaging.Publisher
	now       func() time.Time

	mu sync.Mutex // serialises stock updates
}

// NewService creates a checkout service
func NewService(products repository.CatalogDB, orders repository.OrderDB, carts Carts, auctions Settler, publisher messaging.Publisher) *Service {
	if publisher == nil {
		publisher = messaging.NewLogPublisher()
	}
	return &Service{
		products:  products,
		orders:    orders,
		carts:     carts,
		auctions:  auctions,
		publisher: publisher,
		now:       time.Now,
	}
}

// Quote prices quantity units of a product for user. Auctions can only be
// quoted to their winner once closed, at the winning bid.
func (s *Service) Quote(userID, productID string, quantity int) (Quote, error) {
	if userID == "" {
		return Quote{}, fmt.Errorf("checkout: %w", biddingerrors.ErrUnauthorized)
	}
	product, err := s.products.GetProduct(productID)
	if err != nil {
		return Quote{}, fmt.Errorf("checkout: %w", err)
	}

	q := Quote{
		ProductID:   product.ProductID,
		ProductName: product.Name,
		Type:        product.Type,
		IsAuction:   product.IsAuction(),
	}

	if product.IsAuction() {
		settlement, err := s.auctions.Settlement(productID, userID)
		if err != nil {
			return Quote{}, fmt.Errorf("checkout: %w", err)
		}
		q.Quantity = 1
		q.UnitPrice = settlement.AmountDue
		q.TotalAmount = settlement.AmountDue
		return q, nil
	}

	if quantity <= 0 {
		quantity = 1
	}
	q.Quantity = quantity
	q.UnitPrice = product.Price
	q.TotalAmount = product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	return q, nil
}

// PlaceOrder buys a single product
func (s *Service) PlaceOrder(userID, productID string, quantity int, customizations map[string]string) (models.Order, error) {
	q, err := s.Quote(userID, productID, quantity)
	if err != nil {
		return models.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if q.IsAuction {
		if err := s.ensureUnpaid(userID, productID); err != nil {
			return models.Order{}, err
		}
	}
	order, err := s.place(userID, productID, q.Quantity, q.TotalAmount, customizations)
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// CheckoutCart places one order per cart line and empties the cart. Lines are
// charged at the product's current price, not the price when they were added.
func (s *Service) CheckoutCart(userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("checkout: %w", biddingerrors.ErrUnauthorized)
	}
	c, err := s.carts.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("checkout: %w", biddingerrors.ErrCartEmpty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// check every line before placing anything
	prices := make(map[string]decimal.Decimal, len(c.Items))
	for _, item := range c.Items {
		product, err := s.products.GetProduct(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
		if product.IsAuction() {
			return nil, fmt.Errorf("checkout: %w - product %s", biddingerrors.ErrNotPurchasable, item.ProductID)
		}
		if product.Type == models.ProductPhysical && product.Stock > 0 && item.Quantity > product.Stock {
			return nil, fmt.Errorf("checkout: %w - product %s", biddingerrors.ErrOutOfStock, item.ProductID)
		}
		prices[item.ProductID] = product.Price
	}

	orders := make([]models.Order, 0, len(c.Items))
	for _, item := range c.Items {
		total := prices[item.ProductID].Mul(decimal.NewFromInt(int64(item.Quantity)))
		order, err := s.place(userID, item.ProductID, item.Quantity, total, item.Customizations)
		if err != nil {
			return orders, err
		}
		orders = append(orders, order)
	}

	if err := s.carts.Clear(userID); err != nil {
		utils.Warn("checkout: failed to clear cart", map[string]any{"user_id": userID, "error": err.Error()})
	}
	return orders, nil
}

// Orders returns a user's order history, newest first
func (s *Service) Orders(userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("checkout: %w", biddingerrors.ErrUnauthorized)
	}
	orders, err := s.orders.ListOrdersByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *Service) ensureUnpaid(userID, productID string) error {
	orders, err := s.orders.ListOrdersByUser(userID)
	if err != nil {
		return fmt.Errorf("checkout: failed to list orders: %w", err)
	}
	for _, o := range orders {
		if o.ProductID == productID && o.Status != models.OrderAuctionWon {
			return fmt.Errorf("checkout: %w - order %s", biddingerrors.ErrAlreadyPaid, o.OrderID)
		}
	}
	return nil
}

// place records an order and takes physical stock; callers hold s.mu
func (s *Service) place(userID, productID string, quantity int, total decimal.Decimal, customizations map[string]string) (models.Order, error) {
	product, err := s.products.GetProduct(productID)
	if err != nil {
		return models.Order{}, fmt.Errorf("checkout: %w", err)
	}

	if product.Type == models.ProductPhysical && product.Stock > 0 {
		if quantity > product.Stock {
			return models.Order{}, fmt.Errorf("checkout: %w - product %s", biddingerrors.ErrOutOfStock, productID)
		}
		product.Stock -= quantity
		if err := s.products.SaveProduct(product); err != nil {
			return models.Order{}, fmt.Errorf("checkout: failed to update stock: %w", err)
		}
	}

	order := models.Order{
		OrderID:        utils.GeneratePrefixedID("order"),
		UserID:         userID,
		ProductID:      productID,
		ProductName:    product.Name,
		SellerID:       product.SellerID,
		Quantity:       quantity,
		Status:         models.OrderPlaced,
		TotalAmount:    total,
		Customizations: customizations,
		PurchasedAt:    s.now().UTC(),
	}
	if product.Type == models.ProductDigital {
		order.IsDigitalDownloadReady = true
		order.DigitalFileURL = product.DigitalFileURL
	}

	if err := s.orders.CreateOrder(order); err != nil {
		return models.Order{}, fmt.Errorf("checkout: failed to record order: %w", err)
	}

	utils.Info("order placed", map[string]any{
		"order_id":   order.OrderID,
		"user_id":    userID,
		"product_id": productID,
		"total":      total.StringFixed(2),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrderPlaced, order.OrderID, messaging.OrderPlaced{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		ProductID:   order.ProductID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.InexactFloat64(),
		PlacedAt:    order.PurchasedAt,
	}); err != nil {
		utils.Warn("failed to publish event", map[string]any{"topic": messaging.TopicOrderPlaced, "error": err.Error()})
	}
	return order, nil
}
