package cart

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/kvstore"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const keyPrefix = "cart:"

// Cart is a user's cart with its totals
type Cart struct {
	UserID     string            `json:"user_id"`
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
}

// ItemID derives a cart line ID: the product ID, suffixed with the chosen
// customizations sorted by key so equal choices land on the same line.
func ItemID(productID string, customizations map[string]string) string {
	if len(customizations) == 0 {
		return productID
	}
	keys := make([]string, 0, len(customizations))
	for k := range customizations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+customizations[k])
	}
	return productID + "-" + strings.Join(parts, "|")
}

// Service keeps carts in a key-value store
type Service struct {
	store    kvstore.Store
	products repository.CatalogDB

	mu sync.Mutex
}

// NewService creates a cart service
func NewService(store kvstore.Store, products repository.CatalogDB) *Service {
	return &Service{store: store, products: products}
}

func (s *Service) load(userID string) ([]models.CartItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("cart: %w - empty user ID", biddingerrors.ErrInvalidArgument)
	}
	var items []models.CartItem
	if err := s.store.Load(keyPrefix+userID, &items); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []models.CartItem{}, nil
		}
		return nil, fmt.Errorf("cart: failed to load cart: %w", err)
	}
	return items, nil
}

func (s *Service) save(userID string, items []models.CartItem) (Cart, error) {
	if err := s.store.Save(keyPrefix+userID, items); err != nil {
		return Cart{}, fmt.Errorf("cart: failed to save cart: %w", err)
	}
	return summarize(userID, items), nil
}

func summarize(userID string, items []models.CartItem) Cart {
	c := Cart{UserID: userID, Items: items, TotalPrice: decimal.Zero}
	for _, it := range items {
		c.TotalItems += it.Quantity
		c.TotalPrice = c.TotalPrice.Add(it.TotalPrice)
	}
	return c
}

func lineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Get returns the user's cart; a user who never added anything has an empty cart
func (s *Service) Get(userID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(userID)
	if err != nil {
		return Cart{}, err
	}
	return summarize(userID, items), nil
}

// Add puts quantity units of a product in the cart, merging with an
// existing line that has the same customizations. Auctions are sold by
// bidding and cannot be added.
func (s *Service) Add(userID, productID string, quantity int, customizations map[string]string) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, fmt.Errorf("cart: %w - quantity must be positive", biddingerrors.ErrInvalidQuantity)
	}
	product, err := s.products.GetProduct(productID)
	if err != nil {
		return Cart{}, fmt.Errorf("cart: %w", err)
	}
	if product.IsAuction() {
		return Cart{}, fmt.Errorf("cart: %w - product %s is sold at auction", biddingerrors.ErrNotPurchasable, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(userID)
	if err != nil {
		return Cart{}, err
	}

	id := ItemID(productID, customizations)
	merged := false
	for i := range items {
		if items[i].ItemID == id {
			items[i].Quantity += quantity
			items[i].TotalPrice = lineTotal(items[i].UnitPrice, items[i].Quantity)
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, models.CartItem{
			ItemID:         id,
			ProductID:      productID,
			Name:           product.Name,
			Quantity:       quantity,
			Customizations: customizations,
			UnitPrice:      product.Price,
			TotalPrice:     lineTotal(product.Price, quantity),
		})
	}
	return s.save(userID, items)
}

// Remove drops a cart line
func (s *Service) Remove(userID, itemID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(userID)
	if err != nil {
		return Cart{}, err
	}
	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ItemID == itemID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return Cart{}, fmt.Errorf("cart: %w - cart item %s", biddingerrors.ErrItemNotFound, itemID)
	}
	return s.save(userID, kept)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *Service) UpdateQuantity(userID, itemID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return s.Remove(userID, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(userID)
	if err != nil {
		return Cart{}, err
	}
	for i := range items {
		if items[i].ItemID == itemID {
			items[i].Quantity = quantity
			items[i].TotalPrice = lineTotal(items[i].UnitPrice, quantity)
			return s.save(userID, items)
		}
	}
	return Cart{}, fmt.Errorf("cart: %w - cart item %s", biddingerrors.ErrItemNotFound, itemID)
}

// Clear empties the cart
func (s *Service) Clear(userID string) error {
	if userID == "" {
		return fmt.Errorf("cart: %w - empty user ID", biddingerrors.ErrInvalidArgument)
	}
	if err := s.store.Clear(keyPrefix + userID); err != nil {
		return fmt.Errorf("cart: failed to clear cart: %w", err)
	}
	return nil
}
